package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certkeeper/core/email"
	"github.com/dmitrymomot/certkeeper/core/notify"
)

type captureSender struct {
	sent []email.SendEmailParams
	err  error
}

func (s *captureSender) SendEmail(_ context.Context, p email.SendEmailParams) error {
	s.sent = append(s.sent, p)
	return s.err
}

func TestEmailNotifier(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	n, err := notify.NewEmailNotifier(sender, "ops@example.com")
	require.NoError(t, err)

	err = n.NotifyFailure(context.Background(), notify.Failure{
		Domain:     "example.com",
		RunID:      "run-1",
		Stage:      "provision",
		Err:        errors.New("acme: <rateLimited>"),
		OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "ops@example.com", msg.SendTo)
	assert.Equal(t, "Certificate renewal failed for example.com", msg.Subject)
	assert.Equal(t, "renewal-failure", msg.Tag)
	assert.Contains(t, msg.BodyHTML, "provision")
	assert.Contains(t, msg.BodyHTML, "2026-03-01T10:00:00Z")
	assert.Contains(t, msg.BodyHTML, "acme: &lt;rateLimited&gt;")
}

func TestEmailNotifierErrors(t *testing.T) {
	t.Parallel()

	_, err := notify.NewEmailNotifier(nil, "ops@example.com")
	require.ErrorIs(t, err, email.ErrInvalidConfig)

	_, err = notify.NewEmailNotifier(&captureSender{}, "")
	require.ErrorIs(t, err, notify.ErrNoRecipient)

	sender := &captureSender{err: email.ErrFailedToSendEmail}
	n, err := notify.NewEmailNotifier(sender, "ops@example.com")
	require.NoError(t, err)

	err = n.NotifyFailure(context.Background(), notify.Failure{Domain: "example.com"})
	require.ErrorIs(t, err, email.ErrFailedToSendEmail)
	assert.Contains(t, sender.sent[0].BodyHTML, "unknown error")
}
