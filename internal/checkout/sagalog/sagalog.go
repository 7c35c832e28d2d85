// Package sagalog keeps a durable audit trail of every transition the
// checkout saga goes through. Each row is an immutable fact; the latest row
// per saga id is its current state. The trace_id column lets an operator
// jump from a stuck checkout straight to its distributed trace.
package sagalog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Status is the lifecycle state of a saga execution.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is a single row of the checkout saga log.
type Entry struct {
	// SagaID is the order id, so log rows join directly with business data.
	SagaID string
	// CartID is the source cart, recorded so a failed checkout can be
	// retried against the same cart.
	CartID string
	Status Status
	// Step is the name of the step that just executed or failed.
	Step string
	// Detail carries the failure message on FAILED/COMPENSATING rows.
	Detail    string
	TraceID   string
	SpanID    string
	CreatedAt time.Time
}

// Repository is the port for persisting saga log entries. The table is
// append-only: Save always inserts.
type Repository interface {
	Save(ctx context.Context, e *Entry) error
}

// NewEntry builds an entry with the trace and span ids of the active
// OpenTelemetry span in ctx, empty when no span is recording.
func NewEntry(ctx context.Context, sagaID, cartID string, status Status, step, detail string) *Entry {
	e := &Entry{
		SagaID:    sagaID,
		CartID:    cartID,
		Status:    status,
		Step:      step,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}
	return e
}
