package renewal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/certkeeper/core/secretstore"
)

const day = 24 * time.Hour

// MetadataReader is the read-only lookup the evaluator needs.
type MetadataReader interface {
	GetMetadata(ctx context.Context, name string) (*secretstore.Metadata, error)
}

// Evaluator classifies the state of a certificate secret.
type Evaluator struct {
	store  MetadataReader
	policy Policy
}

// NewEvaluator creates an Evaluator. The policy is validated up front.
func NewEvaluator(store MetadataReader, policy Policy) (*Evaluator, error) {
	if store == nil {
		return nil, errors.New("renewal: metadata reader is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{store: store, policy: policy}, nil
}

// Policy returns the evaluator's policy.
func (e *Evaluator) Policy() Policy {
	return e.policy
}

// Evaluate looks up secretName and classifies it against now.
// The only side effect is the metadata read.
func (e *Evaluator) Evaluate(ctx context.Context, secretName string, now time.Time) Decision {
	meta, err := e.store.GetMetadata(ctx, secretName)
	if errors.Is(err, secretstore.ErrNotFound) {
		return Decision{Action: ActionCreate}
	}
	if err != nil {
		return Decision{
			Action: ActionLookupFailed,
			Err:    fmt.Errorf("lookup %s: %w", secretName, err),
		}
	}

	written := meta.VersionCreatedAt
	if written.IsZero() {
		written = meta.CreatedAt
	}

	days := DaysLeft(written, now, e.policy.ValidityDays)
	return Decision{
		Action:   Classify(days, e.policy),
		DaysLeft: days,
		Exists:   true,
	}
}

// DaysLeft returns the whole days until writtenAt+validityDays, rounded down.
// Negative once the window has passed.
func DaysLeft(writtenAt, now time.Time, validityDays int) int {
	expires := writtenAt.Add(time.Duration(validityDays) * day)
	remaining := expires.Sub(now)

	days := remaining / day
	if remaining%day != 0 && remaining < 0 {
		days--
	}
	return int(days)
}

// Classify maps a day count onto an action. It never returns ActionLookupFailed.
func Classify(daysLeft int, p Policy) Action {
	switch {
	case daysLeft < 0:
		return ActionCreate
	case daysLeft < p.RenewThresholdDays:
		return ActionRenewSoon
	default:
		return ActionNoActionNeeded
	}
}
