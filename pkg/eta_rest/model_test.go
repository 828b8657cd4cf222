package eta_rest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMenuXML = `<?xml version="1.0" encoding="utf-8"?>
<eta version="1.0" xmlns="http://www.eta.co.at/rest/v1">
  <menu>
    <fub uri="/120/10601" name="Puffer">
      <object uri="/120/10601/0/0/12197" name="Außentemperatur"/>
    </fub>
    <fub uri="/264/10891" name="Kessel">
      <object uri="/264/10891/0/0/12077" name="Leistung"/>
      <object uri="/264/10891/0/11109" name="Kessel">
        <object uri="/264/10891/0/11109/0" name="Kesseltemperatur"/>
      </object>
    </fub>
  </menu>
</eta>`

func TestParseDecimalComma(t *testing.T) {

	assert := assert.New(t)

	cases := map[string]float64{
		"12,5":    12.5,
		"-3,25":   -3.25,
		"0":       0,
		"7.5":     7.5,
		" 42,0 ":  42,
		"1.234,5": 1234.5,
		"100":     100,
		"0,001":   0.001,
	}
	for in, expected := range cases {
		v, err := ParseDecimalComma(in)
		if assert.NoError(err, in) {
			assert.InDelta(expected, v, 1e-9, in)
		}
	}

	_, err := ParseDecimalComma("Aus")
	assert.Error(err)
	_, err = ParseDecimalComma("")
	assert.Error(err)
}

func TestParseValue(t *testing.T) {

	require := require.New(t)

	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
<eta version="1.0" xmlns="http://www.eta.co.at/rest/v1">
  <value uri="/user/var/120/10601/0/0/12197" strValue="12,5" unit="°C" decPlaces="1" scaleFactor="10" advTextOffset="0">125</value>
</eta>`)

	v, err := ParseValue(body)
	require.NoError(err)
	require.Equal("12,5", v.StrValue)
	require.Equal("°C", v.Unit)
	require.Equal(1, v.DecPlaces)
	require.Equal(10, v.ScaleFactor)
	require.Equal("125", v.Raw)

	f, err := v.Float()
	require.NoError(err)
	require.InDelta(12.5, f, 1e-9)
	require.Equal(1, v.Precision())
}

func TestValuePrecision(t *testing.T) {

	require := require.New(t)

	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
<eta version="1.0" xmlns="http://www.eta.co.at/rest/v1">
  <value uri="/user/var/120/10601/0/0/12197" strValue="12,5" unit="°C">125</value>
</eta>`)

	v, err := ParseValue(body)
	require.NoError(err)
	require.Equal(0, v.DecPlaces)
	require.Equal(1, v.Precision())

	cases := map[Value]int{
		{StrValue: "1.234,56"}:             2,
		{StrValue: "71"}:                   0,
		{StrValue: "71", DecPlaces: 1}:     1,
		{StrValue: "3,5 kW", DecPlaces: 0}: 1,
		{StrValue: "0,25", DecPlaces: 1}:   2,
		{StrValue: "Aus"}:                  0,
	}
	for in, want := range cases {
		require.Equal(want, in.Precision(), in.StrValue)
	}
}

func TestParseValueErrors(t *testing.T) {

	assert := assert.New(t)

	_, err := ParseValue([]byte(`<eta xmlns="http://www.eta.co.at/rest/v1"><error>Invalid URI</error></eta>`))
	assert.True(errors.Is(err, ErrControllerError))
	assert.Contains(err.Error(), "Invalid URI")

	_, err = ParseValue([]byte(`<eta xmlns="http://www.eta.co.at/rest/v1"></eta>`))
	assert.ErrorIs(err, ErrNoValue)

	_, err = ParseValue([]byte(`<eta><value uri="/x">1</value></eta>`))
	assert.ErrorIs(err, ErrNoValue)

	_, err = ParseValue([]byte(`<eta><value`))
	assert.Error(err)
}

func TestParseMenu(t *testing.T) {

	require := require.New(t)

	menu, err := ParseMenu([]byte(testMenuXML))
	require.NoError(err)
	require.Len(menu.Groups, 2)
	require.Equal("Puffer", menu.Groups[0].Name)

	var visited []string
	parents := map[string]string{}
	menu.Walk(func(node, parent *MenuNode) bool {
		visited = append(visited, node.URI)
		parents[node.URI] = parent.Name
		return true
	})
	require.Equal([]string{
		"/120/10601/0/0/12197",
		"/264/10891/0/0/12077",
		"/264/10891/0/11109",
		"/264/10891/0/11109/0",
	}, visited)
	require.Equal("Kessel", parents["/264/10891/0/11109/0"])
	require.Equal("Puffer", parents["/120/10601/0/0/12197"])
}

func TestMenuWalkStops(t *testing.T) {

	menu, err := ParseMenu([]byte(testMenuXML))
	require.NoError(t, err)

	count := 0
	menu.Walk(func(node, parent *MenuNode) bool {
		count++
		return node.URI != "/264/10891/0/0/12077"
	})
	assert.Equal(t, 2, count)
}
