package mailer

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
)

// LogMailer writes messages to the logger instead of delivering them.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info(ctx, "mail", "to", msg.To, "subject", msg.Subject, "text", msg.Text)
	return nil
}
