package ports

import (
	"context"
)

// MailSender defines the interface for delivering the digest email
type MailSender interface {
	// Send delivers a plain-text email to the recipient
	Send(ctx context.Context, subject, body, recipient string) error
}
