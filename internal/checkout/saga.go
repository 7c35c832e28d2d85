package checkout

import (
	"context"
	"log/slog"

	"github.com/OlegStrokan/free-ebay-sub000/internal/checkout/sagalog"
)

// Step is a single unit of work in the checkout saga. Compensate undoes the
// step's externally visible effects where undoing makes sense; steps whose
// records must stay persisted as evidence of the attempt compensate by
// marking, not deleting.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator runs the saga steps sequentially and writes every transition
// to the saga log. On a step failure it compensates previously successful
// steps in LIFO order and returns the step's error unchanged.
type Orchestrator struct {
	sagaID string
	cartID string
	steps  []Step
	log    sagalog.Repository // nil-safe: logging skipped if nil
	logger *slog.Logger
}

func NewOrchestrator(sagaID, cartID string, steps []Step, log sagalog.Repository, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{sagaID: sagaID, cartID: cartID, steps: steps, log: log, logger: logger}
}

func (o *Orchestrator) Start(ctx context.Context) error {
	o.record(ctx, sagalog.StatusStarted, "", "")

	var done []Step
	for _, step := range o.steps {
		o.logger.InfoContext(ctx, "executing saga step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			o.logger.ErrorContext(ctx, "saga step failed",
				"saga_id", o.sagaID, "step", step.Name(), "error", err)
			o.record(ctx, sagalog.StatusCompensating, step.Name(), err.Error())
			o.rollback(ctx, done)
			o.record(ctx, sagalog.StatusFailed, step.Name(), err.Error())
			return err
		}
		done = append(done, step)
		o.record(ctx, sagalog.StatusStepDone, step.Name(), "")
	}

	o.record(ctx, sagalog.StatusCompleted, "", "")
	return nil
}

func (o *Orchestrator) rollback(ctx context.Context, steps []Step) {
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		o.logger.InfoContext(ctx, "compensating saga step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			o.logger.ErrorContext(ctx, "saga compensation failed",
				"saga_id", o.sagaID, "step", step.Name(), "error", err)
		}
	}
}

func (o *Orchestrator) record(ctx context.Context, status sagalog.Status, step, detail string) {
	if o.log == nil {
		return
	}
	entry := sagalog.NewEntry(ctx, o.sagaID, o.cartID, status, step, detail)
	if err := o.log.Save(ctx, entry); err != nil {
		o.logger.ErrorContext(ctx, "saga log write failed", "saga_id", o.sagaID, "error", err)
	}
}
