package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"
	gmailapi "google.golang.org/api/gmail/v1"
)

// Sender is a Gmail API implementation of the MailSender interface
type Sender struct {
	svc    *gmailapi.Service
	logger *zap.Logger
}

// NewSender creates a new Gmail mail sender
func NewSender(svc *gmailapi.Service, logger *zap.Logger) *Sender {
	return &Sender{
		svc:    svc,
		logger: logger,
	}
}

// Send delivers a plain-text email to the recipient from the authorized
// account
func (s *Sender) Send(ctx context.Context, subject, body, recipient string) error {
	raw := fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		recipient, subject, body)

	msg := &gmailapi.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	if _, err := s.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Digest email sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject))
	return nil
}
