// Package email defines the EmailSender contract used for operator alerts,
// plus a DevSender that writes messages to disk instead of sending them.
//
//	sender := email.NewDevSender("./tmp/emails")
//	err := sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "ops@example.com",
//		Subject:  "Certificate renewal failed for example.com",
//		BodyHTML: "<p>...</p>",
//		Tag:      "renewal-failure",
//	})
//
// Production senders live under integration/email.
package email
