package email

import "context"

// Provider is the outgoing mail transport. Send failures are caught and
// logged by the notifier; they are never retried.
type Provider interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// NoOpProvider drops all mail. Used when no SMTP transport is configured.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to string, subject string, body string) error {
	return nil
}
