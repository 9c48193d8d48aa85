package telemetry

import (
	"bytes"
	"context"
	"log"
	"testing"

	"rtscore/logging"
)

func TestWrapLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		logger := WrapLogger(nil)
		logger.Printf("ignored %d", 42)
	})

	t.Run("forwards to logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := log.New(&buf, "", 0)
		logger := WrapLogger(base)
		logger.Printf("hello %s", "world")
		if got := buf.String(); got != "hello world\n" {
			t.Fatalf("unexpected log output: %q", got)
		}
	})
}

type fakeMetrics struct {
	stored map[string]uint64
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{stored: make(map[string]uint64)}
}

func (f *fakeMetrics) Add(key string, delta uint64) {
	f.stored[key] += delta
}

func (f *fakeMetrics) Store(key string, value uint64) {
	f.stored[key] = value
}

func TestObserveRouter(t *testing.T) {
	router, err := logging.NewRouter(nil, logging.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	router.Publish(context.Background(), logging.Event{Type: "test.event", Severity: logging.SeverityInfo})
	// Close drains the queue synchronously, so Stats() is settled once it
	// returns.
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	metrics := newFakeMetrics()
	ObserveRouter(router, metrics)

	if metrics.stored["logging.events_total"] != 1 {
		t.Fatalf("unexpected events_total: %d", metrics.stored["logging.events_total"])
	}

	// Nil router/metrics must not panic.
	ObserveRouter(nil, metrics)
	ObserveRouter(router, nil)
}
