package eta_rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type HTTPRestReader struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	instrument []Instrument
	logger     *zap.Logger
}

func CreateHTTPRestReader(host string, port uint, timeout time.Duration, logger *zap.Logger, instrument []Instrument) (*HTTPRestReader, error) {
	if strings.TrimSpace(host) == "" {
		return nil, errors.New("eta: host is required")
	}
	if port == 0 || port > 65535 {
		return nil, fmt.Errorf("eta: invalid port %d", port)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPRestReader{
		baseURL:    BaseURL(host, port),
		timeout:    timeout,
		instrument: instrument,
		logger:     logger,
	}, nil
}

// BaseURL builds the controller root, e.g. http://192.168.178.75:8080
func BaseURL(host string, port uint) string {
	return fmt.Sprintf("http://%s:%d", host, port)
}

func (r *HTTPRestReader) Open() error {
	r.httpClient = &http.Client{
		Timeout: r.timeout,
	}
	return nil
}

func (r *HTTPRestReader) Close() error {
	if r.httpClient != nil {
		r.httpClient.CloseIdleConnections()
	}
	return nil
}

func (r *HTTPRestReader) GetInfo(ctx context.Context) (*ControllerInfo, error) {
	serial1, err := r.GetValue(ctx, SERIAL1_URI)
	if err != nil {
		return nil, fmt.Errorf("eta: read serial 1: %w", err)
	}
	serial2, err := r.GetValue(ctx, SERIAL2_URI)
	if err != nil {
		return nil, fmt.Errorf("eta: read serial 2: %w", err)
	}
	return &ControllerInfo{
		Serial1: serial1.StrValue,
		Serial2: serial2.StrValue,
	}, nil
}

func (r *HTTPRestReader) GetMenu(ctx context.Context) (*Menu, error) {
	defer RecordTimer("GetMenu", r.instrument)()
	body, err := r.get(ctx, MENU_PATH)
	if err != nil {
		return nil, err
	}
	return ParseMenu(body)
}

func (r *HTTPRestReader) GetValue(ctx context.Context, uri string) (*Value, error) {
	defer RecordTimer("GetValue", r.instrument)()
	body, err := r.get(ctx, VAR_PATH+uri)
	if err != nil {
		return nil, err
	}
	value, err := ParseValue(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return value, nil
}

func (r *HTTPRestReader) get(ctx context.Context, path string) ([]byte, error) {
	if r.httpClient == nil {
		return nil, errors.New("eta: reader is not open")
	}
	endpoint := r.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("eta: build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eta: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("eta: read %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Debug("eta: unexpected status", zap.String("url", endpoint), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("eta: request %s: status %d", endpoint, resp.StatusCode)
	}

	return payload, nil
}

// ensure interface compliance
var _ RestReader = (*HTTPRestReader)(nil)
