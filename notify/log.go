package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer writes mails to the log instead of delivering them. It is the default
// transport for local development.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (l *LogMailer) Send(_ context.Context, m Mail) error {
	l.logger.Info("mail",
		zap.String("from", m.From),
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("text", m.Text),
	)
	return nil
}
