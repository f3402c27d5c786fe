package imap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/mail-digest/internal/core"
	"go.uber.org/zap"
)

// Source is an IMAP implementation of the MailSource interface for
// mailboxes that are not reachable through the Gmail API
type Source struct {
	host     string
	port     string
	username string
	password string
	tls      bool
	logger   *zap.Logger
}

// NewSource creates a new IMAP mail source
func NewSource(host, port, username, password string, useTLS bool, logger *zap.Logger) *Source {
	return &Source{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      useTLS,
		logger:   logger,
	}
}

func (s *Source) connect() (*imapclient.Client, error) {
	addr := s.host + ":" + s.port

	var client *imapclient.Client
	var err error
	if s.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP %s: %w", addr, err)
	}

	if err := client.Login(s.username, s.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("IMAP authentication failed for %s: %w", s.username, err)
	}

	return client, nil
}

// ListRecent returns up to count of the most recent inbox emails
func (s *Source) ListRecent(ctx context.Context, count int) ([]*core.Email, error) {
	client, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	// Search the last 30 days and keep the most recent UIDs
	criteria := &imap.SearchCriteria{
		Since: time.Now().AddDate(0, 0, -30),
	}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if count > 0 && len(uids) > count {
		uids = uids[len(uids)-count:]
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), fetchOpts)
	defer fetchCmd.Close()

	var emails []*core.Email
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			s.logger.Warn("Failed to collect message data", zap.Error(err))
			continue
		}

		emails = append(emails, emailFromBuffer(buf, bodySection))
	}

	if err := fetchCmd.Close(); err != nil {
		return emails, fmt.Errorf("failed to fetch messages: %w", err)
	}

	// Newest first, matching the Gmail source
	for i, j := 0, len(emails)-1; i < j; i, j = i+1, j-1 {
		emails[i], emails[j] = emails[j], emails[i]
	}

	s.logger.Debug("Listed recent emails", zap.Int("count", len(emails)))
	return emails, nil
}

func emailFromBuffer(buf *imapclient.FetchMessageBuffer, bodySection *imap.FetchItemBodySection) *core.Email {
	email := &core.Email{
		ID:      fmt.Sprintf("imap-%d", buf.UID),
		Headers: make(map[string][]string),
	}

	if buf.Envelope != nil {
		if buf.Envelope.MessageID != "" {
			email.ID = buf.Envelope.MessageID
		}
		email.Subject = buf.Envelope.Subject
		email.Date = buf.Envelope.Date.Format(time.RFC1123Z)
		if len(buf.Envelope.From) > 0 {
			email.From = buf.Envelope.From[0].Addr()
		}
		for _, to := range buf.Envelope.To {
			email.To = append(email.To, to.Addr())
		}
	}

	if raw := buf.FindBodySection(bodySection); raw != nil {
		email.Body = extractTextBody(raw)
	}

	return email
}

// extractTextBody parses a raw RFC 822 message and returns its first
// text/plain part, falling back to the raw bytes when parsing fails
func extractTextBody(raw []byte) string {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		if header, ok := part.Header.(*mail.InlineHeader); ok {
			contentType, _, _ := header.ContentType()
			if contentType == "text/plain" {
				body, err := io.ReadAll(part.Body)
				if err == nil {
					return string(body)
				}
			}
		}
	}
	return ""
}
