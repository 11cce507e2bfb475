// Package postmark implements email.EmailSender on top of the Postmark
// transactional email API. certkeeper uses it to deliver renewal failure
// alerts.
//
//	sender, err := postmark.New(postmark.Config{
//		PostmarkServerToken:  "server-token",
//		PostmarkAccountToken: "account-token",
//		SenderEmail:          "certkeeper@example.com",
//	})
//
// Configuration errors wrap email.ErrInvalidConfig. Delivery failures,
// including non-zero Postmark error codes, wrap email.ErrFailedToSendEmail.
package postmark
