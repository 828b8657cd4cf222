package eta_rest

import (
	"context"
	"time"
)

const (
	VAR_PATH    = "/user/var"
	MENU_PATH   = "/user/menu"
	SERIAL1_URI = "/264/10891/0/0/12489"
	SERIAL2_URI = "/264/10891/0/0/12490"
)

type RestReader interface {
	Open() error
	Close() error
	GetInfo(ctx context.Context) (*ControllerInfo, error)
	GetMenu(ctx context.Context) (*Menu, error)
	GetValue(ctx context.Context, uri string) (*Value, error)
}

type Instrument struct {
	RecordTime func(fnName string, readTime time.Duration)
}

func RecordTimer(name string, instrument []Instrument) func() {
	if instrument == nil {
		return func() {}
	}

	start := time.Now()
	return func() {
		duration := time.Since(start)
		for i := range instrument {
			instrument[i].RecordTime(name, duration)
		}
	}
}
