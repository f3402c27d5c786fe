package factory

import (
	"context"
	"fmt"

	"github.com/mikey/mail-digest/internal/adapters/gmail"
	"github.com/mikey/mail-digest/internal/adapters/imap"
	"github.com/mikey/mail-digest/internal/adapters/smtp"
	"github.com/mikey/mail-digest/internal/config"
	"github.com/mikey/mail-digest/internal/ports"
	"go.uber.org/zap"
	gmailapi "google.golang.org/api/gmail/v1"
)

// MailFactory creates mail sources, senders and the authorizer based on
// configuration. The Gmail API service is built once and shared between
// the source and sender.
type MailFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	gmailSvc *gmailapi.Service
}

// NewMailFactory creates a new mail factory
func NewMailFactory(cfg *config.Config, logger *zap.Logger) *MailFactory {
	return &MailFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateAuthorizer creates the mailbox authorizer
func (f *MailFactory) CreateAuthorizer() *gmail.Authorizer {
	gmailCfg := f.cfg.GetGmail()
	return gmail.NewAuthorizer(
		gmailCfg.ClientID,
		gmailCfg.ClientSecret,
		gmailCfg.RedirectURL,
		gmailCfg.TokenPath,
		f.logger,
	)
}

// CreateMailSource creates a mail source based on the configuration
func (f *MailFactory) CreateMailSource(ctx context.Context, authorizer *gmail.Authorizer) (ports.MailSource, error) {
	switch f.cfg.GetMail().Source {
	case "gmail":
		svc, err := f.gmailService(ctx, authorizer)
		if err != nil {
			return nil, err
		}
		return gmail.NewSource(svc, f.logger), nil
	case "imap":
		imapCfg := f.cfg.GetIMAP()
		return imap.NewSource(
			imapCfg.Host,
			imapCfg.Port,
			imapCfg.Username,
			imapCfg.Password,
			imapCfg.TLS,
			f.logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported mail source: %s", f.cfg.GetMail().Source)
	}
}

// CreateMailSender creates a mail sender based on the configuration
func (f *MailFactory) CreateMailSender(ctx context.Context, authorizer *gmail.Authorizer) (ports.MailSender, error) {
	switch f.cfg.GetMail().Sender {
	case "gmail":
		svc, err := f.gmailService(ctx, authorizer)
		if err != nil {
			return nil, err
		}
		return gmail.NewSender(svc, f.logger), nil
	case "smtp":
		smtpCfg := f.cfg.GetSMTP()
		return smtp.NewSender(
			smtpCfg.Addr,
			smtpCfg.Username,
			smtpCfg.Password,
			smtpCfg.From,
			smtpCfg.TLS,
			f.logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported mail sender: %s", f.cfg.GetMail().Sender)
	}
}

func (f *MailFactory) gmailService(ctx context.Context, authorizer *gmail.Authorizer) (*gmailapi.Service, error) {
	if f.gmailSvc != nil {
		return f.gmailSvc, nil
	}

	svc, err := gmail.NewService(ctx, authorizer)
	if err != nil {
		return nil, err
	}
	f.gmailSvc = svc
	return svc, nil
}
