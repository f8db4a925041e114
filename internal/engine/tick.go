// Package engine provides the step loop and the per-step state transition of
// the token economy.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
)

var ErrAlreadyStarted = errors.New("engine already started")

// State is the lifecycle of one run.
type State uint8

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateFailed // a step returned an error; the run is abandoned
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Engine drives a fixed number of steps synchronously. There is no pause and
// no cancellation: a run either completes every step or fails.
type Engine struct {
	Step  int // Step being (or last) processed, counted from 0
	Steps int // Total steps to run
	State State

	// OnStep runs once per step; populated during setup.
	OnStep func(step int) error

	log *slog.Logger
}

// NewEngine creates an engine that will run the given number of steps.
func NewEngine(steps int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Steps: steps,
		State: StateNotStarted,
		log:   logger,
	}
}

// Run executes every step in order. It can only be called once.
func (e *Engine) Run() error {
	if e.State != StateNotStarted {
		return fmt.Errorf("%w (state %s)", ErrAlreadyStarted, e.State)
	}
	e.State = StateRunning
	e.log.Debug("engine started", "steps", e.Steps)

	for e.Step = 0; e.Step < e.Steps; e.Step++ {
		if e.OnStep == nil {
			continue
		}
		if err := e.OnStep(e.Step); err != nil {
			e.State = StateFailed
			return fmt.Errorf("step %d: %w", e.Step, err)
		}
	}

	e.State = StateCompleted
	e.log.Debug("engine stopped", "steps", e.Steps)
	return nil
}
