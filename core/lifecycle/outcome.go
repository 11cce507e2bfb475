package lifecycle

import (
	"time"

	"github.com/dmitrymomot/certkeeper/core/renewal"
)

// State is a step of a coordinator run.
type State int

const (
	StateStart State = iota
	StateEvaluating
	StateCreating
	StateRenewing
	StateIdle
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateEvaluating:
		return "evaluating"
	case StateCreating:
		return "creating"
	case StateRenewing:
		return "renewing"
	case StateIdle:
		return "idle"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Outcome summarizes a single run. Run returns it on failure too.
type Outcome struct {
	RunID    string
	Decision renewal.Decision

	// Path is the branch taken after evaluation: StateCreating, StateRenewing
	// or StateIdle. It stays StateEvaluating when the lookup failed.
	Path State

	// Issued is true when a new certificate was obtained and fully written.
	Issued bool

	// Written lists the secret names updated by this run.
	Written []string

	Duration time.Duration
}
