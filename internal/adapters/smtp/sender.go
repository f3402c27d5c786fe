package smtp

import (
	"context"
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

// Sender is an SMTP implementation of the MailSender interface
type Sender struct {
	addr     string
	username string
	password string
	from     string
	tls      bool
	logger   *zap.Logger
}

// NewSender creates a new SMTP mail sender. addr is host:port; tls
// selects implicit TLS instead of STARTTLS.
func NewSender(addr, username, password, from string, useTLS bool, logger *zap.Logger) *Sender {
	return &Sender{
		addr:     addr,
		username: username,
		password: password,
		from:     from,
		tls:      useTLS,
		logger:   logger,
	}
}

// Send delivers a plain-text email to the recipient
func (s *Sender) Send(ctx context.Context, subject, body, recipient string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		s.from, recipient, subject, body)

	auth := sasl.NewPlainClient("", s.username, s.password)

	var err error
	if s.tls {
		err = smtp.SendMailTLS(s.addr, auth, s.from, []string{recipient}, strings.NewReader(msg))
	} else {
		err = smtp.SendMail(s.addr, auth, s.from, []string{recipient}, strings.NewReader(msg))
	}
	if err != nil {
		return fmt.Errorf("failed to send email via %s: %w", s.addr, err)
	}

	s.logger.Info("Digest email sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject))
	return nil
}
