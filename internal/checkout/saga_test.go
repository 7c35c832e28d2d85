package checkout

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedStep struct {
	name    string
	err     error
	journal *[]string
}

func (s *recordedStep) Name() string { return s.name }

func (s *recordedStep) Execute(context.Context) error {
	*s.journal = append(*s.journal, "exec:"+s.name)
	return s.err
}

func (s *recordedStep) Compensate(context.Context) error {
	*s.journal = append(*s.journal, "comp:"+s.name)
	return nil
}

func TestOrchestrator_RunsStepsInOrder(t *testing.T) {
	var journal []string
	steps := []Step{
		&recordedStep{name: "a", journal: &journal},
		&recordedStep{name: "b", journal: &journal},
	}

	saga := NewOrchestrator("saga-1", "cart-1", steps, nil, slog.New(slog.DiscardHandler))
	require.NoError(t, saga.Start(context.Background()))

	assert.Equal(t, []string{"exec:a", "exec:b"}, journal)
}

func TestOrchestrator_CompensatesDoneStepsLIFO(t *testing.T) {
	var journal []string
	boom := errors.New("boom")
	steps := []Step{
		&recordedStep{name: "a", journal: &journal},
		&recordedStep{name: "b", journal: &journal},
		&recordedStep{name: "c", err: boom, journal: &journal},
		&recordedStep{name: "d", journal: &journal},
	}

	saga := NewOrchestrator("saga-1", "cart-1", steps, nil, slog.New(slog.DiscardHandler))
	err := saga.Start(context.Background())

	// The step's error surfaces unchanged; the failing step itself is not
	// compensated and later steps never ran.
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"exec:a", "exec:b", "exec:c", "comp:b", "comp:a"}, journal)
}
