package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certkeeper/core/logger"
)

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestDuration(t *testing.T) {
	t.Parallel()
	d := 5 * time.Second
	attr := logger.Duration(d)
	require.Equal(t, "duration", attr.Key)
	assert.Equal(t, d, attr.Value.Duration())
}

// ============================================================================
// Certificate Attribute Tests
// ============================================================================

func TestCertificateAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		attr  slog.Attr
		key   string
		value any
	}{
		{"domain", logger.Domain("example.com"), "domain", "example.com"},
		{"secret", logger.Secret("example.com/cert"), "secret", "example.com/cert"},
		{"days left", logger.DaysLeft(-3), "days_left", int64(-3)},
		{"run id", logger.RunID("8c1f"), "run_id", "8c1f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.value, tt.attr.Value.Any())
		})
	}
}

func TestCertificateAttrsEmpty(t *testing.T) {
	t.Parallel()
	assert.True(t, logger.Domain("").Equal(slog.Attr{}))
	assert.True(t, logger.Secret("").Equal(slog.Attr{}))
	assert.True(t, logger.RunID("").Equal(slog.Attr{}))
}

// ============================================================================
// Generic Metadata Tests
// ============================================================================

func TestComponent(t *testing.T) {
	t.Parallel()
	attr := logger.Component("letsencrypt")
	require.Equal(t, "component", attr.Key)
	assert.Equal(t, "letsencrypt", attr.Value.String())
}

func TestAction(t *testing.T) {
	t.Parallel()
	attr := logger.Action("renew_soon")
	require.Equal(t, "action", attr.Key)
	assert.Equal(t, "renew_soon", attr.Value.String())
}

func TestRetryCount(t *testing.T) {
	t.Parallel()
	attr := logger.RetryCount(5)
	require.Equal(t, "retry_count", attr.Key)
	assert.Equal(t, int64(5), attr.Value.Int64())
}
