// Package auth provides OAuth token management for API connectors.
// Tokens live in a CredentialsStore and are refreshed through
// golang.org/x/oauth2; refreshed tokens are written back so a restart
// never repeats the consent flow.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
	"github.com/orderlens/orderlens/internal/logger"
)

// GoogleProvider is the credentials store key for Google tokens.
const GoogleProvider = "google"

// GmailScopes are the OAuth scopes the Gmail connector needs: read
// access for syncing and modify access for labelling.
var GmailScopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
}

// GoogleOAuthConfig builds the oauth2 config for the Google consent flow.
func GoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       GmailScopes,
		Endpoint:     googleoauth.Endpoint,
	}
}

// Ensure TokenProvider implements the interface.
var _ driven.TokenProvider = (*TokenProvider)(nil)

// TokenProvider supplies valid Google access tokens, refreshing
// expired ones and persisting the result.
type TokenProvider struct {
	provider string
	config   *oauth2.Config
	store    driven.CredentialsStore

	mu sync.Mutex
}

// NewTokenProvider creates a token provider backed by the credentials store.
func NewTokenProvider(config *oauth2.Config, store driven.CredentialsStore) *TokenProvider {
	return &TokenProvider{
		provider: GoogleProvider,
		config:   config,
		store:    store,
	}
}

// GetToken returns a valid access token, refreshing if needed.
func (p *TokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.loadToken(ctx)
	if err != nil {
		return "", err
	}

	if stored.Valid() {
		return stored.AccessToken, nil
	}

	if stored.RefreshToken == "" {
		return "", fmt.Errorf("token expired and no refresh token stored: %w", domain.ErrAuthRequired)
	}

	refreshed, err := p.config.TokenSource(ctx, stored).Token()
	if err != nil {
		return "", fmt.Errorf("refresh token: %w: %w", domain.ErrAuthInvalid, err)
	}

	// Google omits the refresh token on refresh responses; carry the
	// old one forward.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = stored.RefreshToken
	}

	if err := p.SaveToken(ctx, refreshed); err != nil {
		logger.Warn("Failed to persist refreshed token: %v", err)
	}

	return refreshed.AccessToken, nil
}

// SaveToken persists a token to the credentials store.
func (p *TokenProvider) SaveToken(ctx context.Context, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	return p.store.SaveToken(ctx, p.provider, data)
}

// HasToken reports whether a token is stored, regardless of validity.
func (p *TokenProvider) HasToken(ctx context.Context) bool {
	_, err := p.store.GetToken(ctx, p.provider)
	return err == nil
}

// ClearToken removes the stored token.
func (p *TokenProvider) ClearToken(ctx context.Context) error {
	return p.store.DeleteToken(ctx, p.provider)
}

// loadToken reads and decodes the stored token.
func (p *TokenProvider) loadToken(ctx context.Context) (*oauth2.Token, error) {
	data, err := p.store.GetToken(ctx, p.provider)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no stored credentials, run auth first: %w", domain.ErrAuthRequired)
		}
		return nil, fmt.Errorf("load token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decode stored token: %w", err)
	}
	return &token, nil
}
