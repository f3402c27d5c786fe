package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mikey/mail-digest/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
)

// Authorizer implements the mailbox authorization handshake with OAuth2.
// The handshake is completed when a usable token sits at tokenPath;
// until then callers get a user-facing authorization URL.
type Authorizer struct {
	config    *oauth2.Config
	tokenPath string
	logger    *zap.Logger
}

// NewAuthorizer creates a new OAuth2 authorizer for the Gmail scopes the
// digest needs (read mailbox, send digest)
func NewAuthorizer(clientID, clientSecret, redirectURL, tokenPath string, logger *zap.Logger) *Authorizer {
	return &Authorizer{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				gmailapi.GmailReadonlyScope,
				gmailapi.GmailSendScope,
			},
		},
		tokenPath: tokenPath,
		logger:    logger,
	}
}

// Status reports whether the handshake has completed
func (a *Authorizer) Status(ctx context.Context) (ports.AuthStatus, error) {
	token, err := a.loadToken()
	if err != nil {
		if os.IsNotExist(err) {
			return ports.AuthPending, nil
		}
		return ports.AuthPending, fmt.Errorf("failed to load OAuth token: %w", err)
	}

	// An expired token with a refresh token still completes the
	// handshake; the HTTP client refreshes transparently.
	if token.Valid() || token.RefreshToken != "" {
		return ports.AuthCompleted, nil
	}
	return ports.AuthPending, nil
}

// AuthorizationURL returns the URL the user must visit to grant access
func (a *Authorizer) AuthorizationURL() string {
	return a.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

// Authorize exchanges the code obtained from the authorization URL for a
// token and persists it
func (a *Authorizer) Authorize(ctx context.Context, code string) error {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if err := a.saveToken(token); err != nil {
		return err
	}

	a.logger.Info("Authorization completed", zap.String("token_path", a.tokenPath))
	return nil
}

// Client returns an HTTP client that authenticates requests with the
// stored token, refreshing it as needed
func (a *Authorizer) Client(ctx context.Context) (*http.Client, error) {
	token, err := a.loadToken()
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth token: %w", err)
	}
	return a.config.Client(ctx, token), nil
}

func (a *Authorizer) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(a.tokenPath)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return &token, nil
}

func (a *Authorizer) saveToken(token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(a.tokenPath), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	// Token grants mailbox access, keep it private
	if err := os.WriteFile(a.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
