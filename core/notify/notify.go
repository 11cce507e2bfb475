package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/dmitrymomot/certkeeper/core/email"
)

// ErrNoRecipient is returned by NewEmailNotifier when no recipient is given.
var ErrNoRecipient = errors.New("notification recipient is required")

// Failure describes a failed run.
type Failure struct {
	Domain     string
	RunID      string
	Stage      string
	Err        error
	OccurredAt time.Time
}

// Notifier delivers failure alerts.
type Notifier interface {
	NotifyFailure(ctx context.Context, f Failure) error
}

// EmailNotifier sends failure alerts through an email.EmailSender.
type EmailNotifier struct {
	sender    email.EmailSender
	recipient string
}

var _ Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates an EmailNotifier sending to recipient.
func NewEmailNotifier(sender email.EmailSender, recipient string) (*EmailNotifier, error) {
	if sender == nil {
		return nil, fmt.Errorf("%w: sender is nil", email.ErrInvalidConfig)
	}
	if recipient == "" {
		return nil, ErrNoRecipient
	}
	return &EmailNotifier{sender: sender, recipient: recipient}, nil
}

var failureTemplate = template.Must(template.New("failure").Parse(`<h2>Certificate renewal failed for {{.Domain}}</h2>
<table>
<tr><td>Stage</td><td>{{.Stage}}</td></tr>
<tr><td>Run</td><td>{{.RunID}}</td></tr>
<tr><td>Time</td><td>{{.OccurredAt}}</td></tr>
<tr><td>Error</td><td><pre>{{.Error}}</pre></td></tr>
</table>
`))

// NotifyFailure renders f and sends it.
func (n *EmailNotifier) NotifyFailure(ctx context.Context, f Failure) error {
	errText := "unknown error"
	if f.Err != nil {
		errText = f.Err.Error()
	}

	var body bytes.Buffer
	err := failureTemplate.Execute(&body, map[string]string{
		"Domain":     f.Domain,
		"Stage":      f.Stage,
		"RunID":      f.RunID,
		"OccurredAt": f.OccurredAt.UTC().Format(time.RFC3339),
		"Error":      errText,
	})
	if err != nil {
		return fmt.Errorf("render failure alert: %w", err)
	}

	return n.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   n.recipient,
		Subject:  fmt.Sprintf("Certificate renewal failed for %s", f.Domain),
		BodyHTML: body.String(),
		Tag:      "renewal-failure",
	})
}
