package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestInitDisabledReturnsNoopProvider(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: false, ServiceName: "cyclicexec-test"})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if p.tp != nil {
		t.Error("disabled Init should not construct a TracerProvider")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() on noop provider should be nil, got %v", err)
	}
}

func TestStartSolveSpanDoesNotPanic(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: false, ServiceName: "cyclicexec-test"})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	_, span := p.StartSolveSpan(context.Background(), "flow")
	defer span.End()
	SetSolveResult(span, "flow", 3, 12.5)
	SetSpanError(span, errors.New("boom"))
}
