package context

import (
	"context"
	"testing"
)

func TestTraceRoundTrip(t *testing.T) {
	trace := &TraceContext{TraceID: "trace-1", RequestID: "req-1"}
	ctx := WithTrace(context.Background(), trace)

	got := GetTrace(ctx)
	if got == nil {
		t.Fatalf("trace missing from context")
	}
	if got.TraceID != "trace-1" || got.RequestID != "req-1" {
		t.Errorf("unexpected trace %+v", got)
	}
}

func TestGetTrace_Absent(t *testing.T) {
	if got := GetTrace(context.Background()); got != nil {
		t.Errorf("expected nil outside a request, got %+v", got)
	}
}
