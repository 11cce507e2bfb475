package renewal

import (
	"errors"
	"fmt"
)

// Action is the outcome class of an evaluation.
type Action int

const (
	ActionCreate Action = iota + 1
	ActionRenewSoon
	ActionNoActionNeeded
	ActionLookupFailed
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionRenewSoon:
		return "renew_soon"
	case ActionNoActionNeeded:
		return "no_action_needed"
	case ActionLookupFailed:
		return "lookup_failed"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Decision is the result of Evaluate.
type Decision struct {
	Action Action

	// DaysLeft is set for ActionRenewSoon, ActionNoActionNeeded and for
	// ActionCreate when the secret exists but is expired.
	DaysLeft int

	// Exists reports whether the secret was found.
	Exists bool

	// Err is set only for ActionLookupFailed.
	Err error
}

// NeedsIssuance reports whether a certificate should be provisioned.
func (d Decision) NeedsIssuance() bool {
	return d.Action == ActionCreate || d.Action == ActionRenewSoon
}

func (d Decision) String() string {
	switch d.Action {
	case ActionRenewSoon, ActionNoActionNeeded:
		return fmt.Sprintf("%s(%d)", d.Action, d.DaysLeft)
	case ActionLookupFailed:
		return fmt.Sprintf("%s: %v", d.Action, d.Err)
	default:
		return d.Action.String()
	}
}

// Policy holds the validity window and renewal threshold, in days.
type Policy struct {
	ValidityDays       int
	RenewThresholdDays int
}

// DefaultPolicy matches Let's Encrypt's 90 day certificates renewed three weeks ahead.
var DefaultPolicy = Policy{
	ValidityDays:       90,
	RenewThresholdDays: 21,
}

// MaxValidityDays bounds Policy.ValidityDays so the validity window fits in a time.Duration.
const MaxValidityDays = 3650

// ErrInvalidPolicy is returned by Policy.Validate.
var ErrInvalidPolicy = errors.New("invalid renewal policy")

// Validate checks 0 < validity <= MaxValidityDays and 0 <= threshold <= validity.
func (p Policy) Validate() error {
	if p.ValidityDays <= 0 || p.ValidityDays > MaxValidityDays {
		return fmt.Errorf("%w: validity must be within [1, %d], got %d",
			ErrInvalidPolicy, MaxValidityDays, p.ValidityDays)
	}
	if p.RenewThresholdDays < 0 || p.RenewThresholdDays > p.ValidityDays {
		return fmt.Errorf("%w: threshold must be within [0, %d], got %d",
			ErrInvalidPolicy, p.ValidityDays, p.RenewThresholdDays)
	}
	return nil
}
