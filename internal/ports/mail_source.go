package ports

import (
	"context"

	"github.com/mikey/mail-digest/internal/core"
)

// MailSource defines the interface for retrieving emails from a mailbox
type MailSource interface {
	// ListRecent returns up to count of the most recent emails
	ListRecent(ctx context.Context, count int) ([]*core.Email, error)
}
