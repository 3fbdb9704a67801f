// Package notify sends account and restaurant emails in the background. Delivery is
// best-effort: failures are logged and never reach the request that caused them.
package notify

import "context"

//go:generate mockgen -destination=mock/mock_mailer.go -package=mock tomato-api/notify Mailer

type Mail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Mailer delivers one message.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}
