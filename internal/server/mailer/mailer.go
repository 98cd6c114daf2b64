// Package mailer sends account notification emails. Bodies are rendered from
// embedded text templates; delivery goes through SMTP or, in development,
// through the structured logger.
package mailer

import (
	"context"
)

type Message struct {
	To      []string
	Subject string
	Text    string
}

// Mailer delivers a single message. A nil error means the message was handed
// off successfully.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
