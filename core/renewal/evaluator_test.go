package renewal_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certkeeper/core/renewal"
	"github.com/dmitrymomot/certkeeper/core/secretstore"
)

const day = 24 * time.Hour

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type failingReader struct{ err error }

func (f failingReader) GetMetadata(context.Context, string) (*secretstore.Metadata, error) {
	return nil, f.err
}

func newEvaluator(t *testing.T, store renewal.MetadataReader) *renewal.Evaluator {
	t.Helper()
	e, err := renewal.NewEvaluator(store, renewal.DefaultPolicy)
	require.NoError(t, err)
	return e
}

func TestEvaluateScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		age      time.Duration
		seed     bool
		want     renewal.Action
		wantDays int
	}{
		{name: "absent secret", seed: false, want: renewal.ActionCreate},
		{name: "created 75 days ago", seed: true, age: 75 * day, want: renewal.ActionRenewSoon, wantDays: 15},
		{name: "created 10 days ago", seed: true, age: 10 * day, want: renewal.ActionNoActionNeeded, wantDays: 80},
		{name: "created just now", seed: true, age: 0, want: renewal.ActionNoActionNeeded, wantDays: 90},
		{name: "threshold boundary", seed: true, age: 69 * day, want: renewal.ActionNoActionNeeded, wantDays: 21},
		{name: "one day inside threshold", seed: true, age: 70 * day, want: renewal.ActionRenewSoon, wantDays: 20},
		{name: "expires today", seed: true, age: 90 * day, want: renewal.ActionRenewSoon, wantDays: 0},
		{name: "expired", seed: true, age: 91 * day, want: renewal.ActionCreate, wantDays: -1},
		{name: "long expired", seed: true, age: 400 * day, want: renewal.ActionCreate, wantDays: -310},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := secretstore.NewMemoryStore()
			if tt.seed {
				store.Seed("cert", "pem", now.Add(-tt.age))
			}

			d := newEvaluator(t, store).Evaluate(context.Background(), "cert", now)
			assert.Equal(t, tt.want, d.Action)
			assert.Equal(t, tt.seed, d.Exists)
			assert.NoError(t, d.Err)
			if tt.seed {
				assert.Equal(t, tt.wantDays, d.DaysLeft)
			}
		})
	}
}

func TestEvaluateAbsentIgnoresNow(t *testing.T) {
	t.Parallel()

	e := newEvaluator(t, secretstore.NewMemoryStore())
	for _, at := range []time.Time{{}, now, now.AddDate(50, 0, 0), now.AddDate(-50, 0, 0)} {
		d := e.Evaluate(context.Background(), "missing", at)
		assert.Equal(t, renewal.ActionCreate, d.Action)
		assert.True(t, d.NeedsIssuance())
	}
}

func TestEvaluateLookupFailed(t *testing.T) {
	t.Parallel()

	cause := errors.Join(secretstore.ErrTransient, errors.New("throttled"))
	d := newEvaluator(t, failingReader{err: cause}).Evaluate(context.Background(), "cert", now)

	assert.Equal(t, renewal.ActionLookupFailed, d.Action)
	assert.False(t, d.NeedsIssuance())
	assert.ErrorIs(t, d.Err, secretstore.ErrTransient)
}

func TestEvaluateUsesLatestVersion(t *testing.T) {
	t.Parallel()

	clock := now.Add(-80 * day)
	store := secretstore.NewMemoryStore(secretstore.WithClock(func() time.Time { return clock }))
	require.NoError(t, store.Create(context.Background(), "cert", "old"))

	e := newEvaluator(t, store)
	assert.Equal(t, renewal.ActionRenewSoon, e.Evaluate(context.Background(), "cert", now).Action)

	clock = now
	require.NoError(t, store.Update(context.Background(), "cert", "new"))
	assert.Equal(t, renewal.ActionNoActionNeeded, e.Evaluate(context.Background(), "cert", now).Action)
}

// Every whole-hour age over a year must agree with the closed-form rule.
func TestEvaluateProperty(t *testing.T) {
	t.Parallel()

	store := secretstore.NewMemoryStore()
	e := newEvaluator(t, store)

	for age := time.Duration(0); age <= 365*day; age += time.Hour {
		store.Seed("cert", "pem", now.Add(-age))
		d := e.Evaluate(context.Background(), "cert", now)

		expected := int(math.Floor((90*day - age).Hours() / 24))
		require.Equal(t, expected, d.DaysLeft, "age %s", age)

		switch {
		case expected < 0:
			require.Equal(t, renewal.ActionCreate, d.Action, "age %s", age)
		case expected < 21:
			require.Equal(t, renewal.ActionRenewSoon, d.Action, "age %s", age)
		default:
			require.Equal(t, renewal.ActionNoActionNeeded, d.Action, "age %s", age)
		}
	}
}

func TestDaysLeftFloors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		age  time.Duration
		want int
	}{
		{"exact days", 75 * day, 15},
		{"half a day into the window", 75*day + 12*time.Hour, 14},
		{"one second past expiry", 90*day + time.Second, -1},
		{"exactly at expiry", 90 * day, 0},
		{"written in the future", -2 * day, 92},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renewal.DaysLeft(now.Add(-tt.age), now, 90))
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	p := renewal.DefaultPolicy
	assert.Equal(t, renewal.ActionCreate, renewal.Classify(-1, p))
	assert.Equal(t, renewal.ActionRenewSoon, renewal.Classify(0, p))
	assert.Equal(t, renewal.ActionRenewSoon, renewal.Classify(20, p))
	assert.Equal(t, renewal.ActionNoActionNeeded, renewal.Classify(21, p))
	assert.Equal(t, renewal.ActionNoActionNeeded, renewal.Classify(90, p))
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		policy  renewal.Policy
		wantErr bool
	}{
		{"default", renewal.DefaultPolicy, false},
		{"zero threshold", renewal.Policy{ValidityDays: 90}, false},
		{"threshold equals validity", renewal.Policy{ValidityDays: 30, RenewThresholdDays: 30}, false},
		{"zero validity", renewal.Policy{RenewThresholdDays: 1}, true},
		{"max validity", renewal.Policy{ValidityDays: renewal.MaxValidityDays, RenewThresholdDays: 21}, false},
		{"validity overflowing duration", renewal.Policy{ValidityDays: 200000, RenewThresholdDays: 21}, true},
		{"negative threshold", renewal.Policy{ValidityDays: 90, RenewThresholdDays: -1}, true},
		{"threshold beyond validity", renewal.Policy{ValidityDays: 10, RenewThresholdDays: 11}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, renewal.ErrInvalidPolicy)
				_, nerr := renewal.NewEvaluator(secretstore.NewMemoryStore(), tt.policy)
				assert.ErrorIs(t, nerr, renewal.ErrInvalidPolicy)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecisionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "create", renewal.Decision{Action: renewal.ActionCreate}.String())
	assert.Equal(t, "renew_soon(15)", renewal.Decision{Action: renewal.ActionRenewSoon, DaysLeft: 15}.String())
	assert.Equal(t, "no_action_needed(80)", renewal.Decision{Action: renewal.ActionNoActionNeeded, DaysLeft: 80}.String())
}
