package ports

import "context"

// MailMessage is a one-shot HTML email.
type MailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer delivers mail out of band. Failures are not retried.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
