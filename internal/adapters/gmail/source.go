package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mikey/mail-digest/internal/core"
	"go.uber.org/zap"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// NewService builds a Gmail API service from a completed authorization
func NewService(ctx context.Context, authorizer *Authorizer) (*gmailapi.Service, error) {
	client, err := authorizer.Client(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return svc, nil
}

// Source is a Gmail API implementation of the MailSource interface
type Source struct {
	svc    *gmailapi.Service
	logger *zap.Logger
}

// NewSource creates a new Gmail mail source
func NewSource(svc *gmailapi.Service, logger *zap.Logger) *Source {
	return &Source{
		svc:    svc,
		logger: logger,
	}
}

// ListRecent returns up to count of the most recent inbox emails
func (s *Source) ListRecent(ctx context.Context, count int) ([]*core.Email, error) {
	list, err := s.svc.Users.Messages.List("me").
		LabelIds("INBOX").
		MaxResults(int64(count)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	emails := make([]*core.Email, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := s.svc.Users.Messages.Get("me", ref.Id).
			Format("full").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch message %s: %w", ref.Id, err)
		}
		emails = append(emails, messageToEmail(msg))
	}

	s.logger.Debug("Listed recent emails", zap.Int("count", len(emails)))
	return emails, nil
}

func messageToEmail(msg *gmailapi.Message) *core.Email {
	email := &core.Email{
		ID:      msg.Id,
		Snippet: msg.Snippet,
		Headers: make(map[string][]string),
	}

	if msg.Payload == nil {
		return email
	}

	for _, header := range msg.Payload.Headers {
		email.Headers[header.Name] = append(email.Headers[header.Name], header.Value)
		switch header.Name {
		case "From":
			email.From = header.Value
		case "To":
			email.To = append(email.To, header.Value)
		case "Subject":
			email.Subject = header.Value
		case "Date":
			email.Date = header.Value
		}
	}

	email.Body = extractBody(msg.Payload)
	if email.Body == "" {
		email.Body = msg.Snippet
	}
	return email
}

// extractBody walks the MIME tree for the first text/plain part
func extractBody(part *gmailapi.MessagePart) string {
	if part == nil {
		return ""
	}

	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}

	for _, child := range part.Parts {
		if body := extractBody(child); body != "" {
			return body
		}
	}

	// Single-part messages carry the body on the root part
	if part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	return ""
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		if decoded, err = base64.RawURLEncoding.DecodeString(data); err != nil {
			return ""
		}
	}
	return string(decoded)
}
