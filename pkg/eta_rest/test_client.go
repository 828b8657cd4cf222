package eta_rest

import (
	"context"
	"fmt"
)

func CreateTestRestReader() (RestReader, error) {
	return &TestRestReader{}, nil
}

// TestRestReader serves a fixed controller: a buffer group and a boiler group
// with a handful of values.
type TestRestReader struct {
	// Failing lists URIs that return an error on GetValue
	Failing map[string]bool
}

func (r *TestRestReader) Open() error {
	return nil
}

func (r *TestRestReader) Close() error {
	return nil
}

func (r *TestRestReader) GetInfo(ctx context.Context) (*ControllerInfo, error) {
	if r.Failing[SERIAL1_URI] {
		return nil, fmt.Errorf("%s: %w: test failure", SERIAL1_URI, ErrControllerError)
	}
	return &ControllerInfo{
		Serial1: "11.123488",
		Serial2: "42",
	}, nil
}

func (r *TestRestReader) GetMenu(ctx context.Context) (*Menu, error) {
	return &Menu{
		Groups: []MenuNode{
			{
				URI:  "/120/10601",
				Name: "Puffer",
				Children: []MenuNode{
					{URI: "/120/10601/0/0/12197", Name: "Außentemperatur"},
				},
			},
			{
				URI:  "/264/10891",
				Name: "Kessel",
				Children: []MenuNode{
					{URI: "/264/10891/0/0/12077", Name: "Leistung"},
					{
						URI:  "/264/10891/0/11109",
						Name: "Kessel",
						Children: []MenuNode{
							{URI: "/264/10891/0/11109/0", Name: "Kesseltemperatur"},
						},
					},
				},
			},
		},
	}, nil
}

var testValues = map[string]string{
	SERIAL1_URI:            "11.123488",
	SERIAL2_URI:            "42",
	"/120/10601/0/0/12197": "7,5",
	"/264/10891/0/0/12077": "12,3",
	"/264/10891/0/11109/0": "71,0",
}

func (r *TestRestReader) GetValue(ctx context.Context, uri string) (*Value, error) {
	if r.Failing[uri] {
		return nil, fmt.Errorf("%s: %w: test failure", uri, ErrControllerError)
	}
	str, ok := testValues[uri]
	if !ok {
		return nil, fmt.Errorf("%s: %w", uri, ErrNoValue)
	}
	// no decPlaces, like older controller firmware
	return &Value{
		URI:      uri,
		StrValue: str,
	}, nil
}
