package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAppliesInOrder(t *testing.T) {
	var order []string
	s := New("ok",
		Step{Name: "one", Apply: func(context.Context) error {
			order = append(order, "one")
			return nil
		}},
		Step{Name: "two", Apply: func(context.Context) error {
			order = append(order, "two")
			return nil
		}},
	)
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"one", "two"}, order)
}

func TestRunCompensatesInReverse(t *testing.T) {
	var events []string
	boom := errors.New("boom")

	s := New("rollback",
		Step{
			Name:       "first",
			Apply:      func(context.Context) error { events = append(events, "apply-first"); return nil },
			Compensate: func(context.Context) error { events = append(events, "undo-first"); return nil },
		},
		Step{
			Name:       "second",
			Apply:      func(context.Context) error { events = append(events, "apply-second"); return nil },
			Compensate: func(context.Context) error { events = append(events, "undo-second"); return nil },
		},
		Step{
			Name:  "third",
			Apply: func(context.Context) error { return boom },
		},
	)

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"apply-first", "apply-second", "undo-second", "undo-first"}, events)
}

func TestRunSkipsNilCompensations(t *testing.T) {
	var undone []string
	s := New("partial",
		Step{
			Name:  "uncompensated",
			Apply: func(context.Context) error { return nil },
		},
		Step{
			Name:       "compensated",
			Apply:      func(context.Context) error { return nil },
			Compensate: func(context.Context) error { undone = append(undone, "compensated"); return nil },
		},
		Step{
			Name:  "failing",
			Apply: func(context.Context) error { return errors.New("nope") },
		},
	)

	require.Error(t, s.Run(context.Background()))
	assert.Equal(t, []string{"compensated"}, undone)
}

func TestStepErrorNamesFailedStep(t *testing.T) {
	cause := errors.New("insert failed")
	s := New("create-topic",
		Step{Name: "insert-topic", Apply: func(context.Context) error { return nil }},
		Step{Name: "owner-subscription", Apply: func(context.Context) error { return cause }},
	)

	err := s.Run(context.Background())
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "create-topic", stepErr.Saga)
	assert.Equal(t, "owner-subscription", stepErr.Step)
	assert.ErrorIs(t, err, cause)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	applied := 0
	s := New("stop",
		Step{Name: "a", Apply: func(context.Context) error { applied++; return nil }},
		Step{Name: "b", Apply: func(context.Context) error { return errors.New("fail") }},
		Step{Name: "c", Apply: func(context.Context) error { applied++; return nil }},
	)

	require.Error(t, s.Run(context.Background()))
	assert.Equal(t, 1, applied)
}
