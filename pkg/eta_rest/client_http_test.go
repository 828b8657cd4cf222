package eta_rest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func valueXML(uri, strValue string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<eta version="1.0" xmlns="%s"><value uri="/user/var%s" strValue="%s" unit="" decPlaces="0" scaleFactor="1" advTextOffset="0">0</value></eta>`,
		ETA_NAMESPACE, uri, strValue)
}

func newFakeController(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc(MENU_PATH, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testMenuXML)
	})
	mux.HandleFunc(VAR_PATH+SERIAL1_URI, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, valueXML(SERIAL1_URI, "11.123488"))
	})
	mux.HandleFunc(VAR_PATH+SERIAL2_URI, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, valueXML(SERIAL2_URI, "42"))
	})
	mux.HandleFunc(VAR_PATH+"/120/10601/0/0/12197", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, valueXML("/120/10601/0/0/12197", "12,5"))
	})
	mux.HandleFunc(VAR_PATH+"/120/10601/0/0/99999", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<eta xmlns="%s"><error>Invalid URI</error></eta>`, ETA_NAMESPACE)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func openReader(t *testing.T, srv *httptest.Server, instrument []Instrument) *HTTPRestReader {
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.ParseUint(u.Port(), 10, 16)
	require.NoError(t, err)

	reader, err := CreateHTTPRestReader(u.Hostname(), uint(port), 2*time.Second, zap.NewNop(), instrument)
	require.NoError(t, err)
	require.NoError(t, reader.Open())
	t.Cleanup(func() { reader.Close() })
	return reader
}

func TestHTTPRestReaderGetValue(t *testing.T) {

	reader := openReader(t, newFakeController(t), nil)

	v, err := reader.GetValue(context.Background(), "/120/10601/0/0/12197")
	require.NoError(t, err)
	f, err := v.Float()
	require.NoError(t, err)
	assert.InDelta(t, 12.5, f, 1e-9)
}

func TestHTTPRestReaderErrors(t *testing.T) {

	assert := assert.New(t)
	reader := openReader(t, newFakeController(t), nil)

	_, err := reader.GetValue(context.Background(), "/120/10601/0/0/99999")
	assert.ErrorIs(err, ErrControllerError)

	// unknown path: 404 from the mux
	_, err = reader.GetValue(context.Background(), "/1/2/3")
	assert.ErrorContains(err, "status 404")
}

func TestHTTPRestReaderInfoAndMenu(t *testing.T) {

	var mu sync.Mutex
	calls := map[string]int{}
	instrument := []Instrument{{
		RecordTime: func(fnName string, _ time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			calls[fnName]++
		},
	}}

	reader := openReader(t, newFakeController(t), instrument)

	info, err := reader.GetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "11.123488", info.Serial1)
	assert.Equal(t, "42", info.Serial2)

	menu, err := reader.GetMenu(context.Background())
	require.NoError(t, err)
	assert.Len(t, menu.Groups, 2)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls["GetValue"])
	assert.Equal(t, 1, calls["GetMenu"])
}

func TestHTTPRestReaderNotOpen(t *testing.T) {
	reader, err := CreateHTTPRestReader("localhost", 8080, time.Second, nil, nil)
	require.NoError(t, err)
	_, err = reader.GetValue(context.Background(), "/1")
	assert.Error(t, err)
}

func TestCreateHTTPRestReaderValidation(t *testing.T) {
	_, err := CreateHTTPRestReader("", 8080, time.Second, nil, nil)
	assert.Error(t, err)
	_, err = CreateHTTPRestReader("eta.local", 0, time.Second, nil, nil)
	assert.Error(t, err)
	assert.Equal(t, "http://192.168.178.75:8080", BaseURL("192.168.178.75", 8080))
}
