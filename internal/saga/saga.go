// Package saga runs ordered multi-statement writes as named steps with
// optional compensations. The store guarantees per-row atomicity only, so
// composite operations (topic creation plus owner subscription, cascading
// deletes across five tables) can fail partway. Steps with a compensation
// are rolled back in reverse order when a later step fails; steps without
// one are accepted as permanently applied, and the returned error names
// the step that failed.
package saga

import (
	"context"
	"fmt"
	"log"
)

// Step is one unit of a saga. Apply performs the write. Compensate, when
// non-nil, undoes it if a later step fails; deletions typically leave it
// nil because removed rows cannot be restored.
type Step struct {
	Name       string
	Apply      func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// StepError reports which step of a saga failed.
type StepError struct {
	Saga string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %s: %v", e.Saga, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Saga is an ordered list of steps executed front to back.
type Saga struct {
	Name  string
	Steps []Step
}

// New returns a saga with the given name and steps.
func New(name string, steps ...Step) *Saga {
	return &Saga{Name: name, Steps: steps}
}

// Run applies each step in order. On the first Apply failure it runs the
// compensations of all previously completed steps in reverse and returns a
// StepError for the failed step. Compensation failures cannot be recovered
// from; they are logged and the original error is still returned, leaving
// whatever partial state remains as the documented weakness of the store.
func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.Steps {
		if err := step.Apply(ctx); err != nil {
			s.compensate(ctx, i-1)
			return &StepError{Saga: s.Name, Step: step.Name, Err: err}
		}
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, from int) {
	for i := from; i >= 0; i-- {
		step := s.Steps[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			log.Printf("saga %s: compensation for step %s failed: %v", s.Name, step.Name, err)
		}
	}
}
