package ports

import (
	"context"
	"errors"
)

// ErrAuthorizationIncomplete is returned when the account handshake has
// not reached completed status before mailbox calls are attempted
var ErrAuthorizationIncomplete = errors.New("authorization handshake not completed")

// AuthStatus is the state of the account authorization handshake
type AuthStatus string

const (
	AuthPending   AuthStatus = "pending"
	AuthCompleted AuthStatus = "completed"
)

// Authorizer defines the interface for the mailbox authorization handshake.
// It must report AuthCompleted before any MailSource or MailSender call.
type Authorizer interface {
	// Status reports whether the handshake has completed
	Status(ctx context.Context) (AuthStatus, error)

	// AuthorizationURL returns the user-facing URL to visit while the
	// handshake is pending
	AuthorizationURL() string

	// Authorize completes the handshake with the code the user obtained
	// from the authorization URL
	Authorize(ctx context.Context, code string) error
}
