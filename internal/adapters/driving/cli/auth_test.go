package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/orderlens/orderlens/internal/adapters/driven/auth"
	"github.com/orderlens/orderlens/internal/adapters/driven/storage/memory"
)

func setupAuthServices(t *testing.T) *auth.TokenProvider {
	t.Helper()
	resetServices(t)

	config := auth.GoogleOAuthConfig("client-id", "client-secret", "http://localhost/callback")
	provider := auth.NewTokenProvider(config, memory.NewCredentialsStore())

	tokenProvider = provider
	configStore = newTestConfigStore(t)
	return provider
}

func TestAuthStatusCmd_NotAuthenticated(t *testing.T) {
	setupAuthServices(t)

	out, err := runCommand(t, "auth", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Not authenticated")
}

func TestAuthStatusCmd_Authenticated(t *testing.T) {
	provider := setupAuthServices(t)
	require.NoError(t, provider.SaveToken(context.Background(), &oauth2.Token{AccessToken: "tok"}))

	out, err := runCommand(t, "auth", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Authenticated")
}

func TestAuthLogoutCmd(t *testing.T) {
	provider := setupAuthServices(t)
	require.NoError(t, provider.SaveToken(context.Background(), &oauth2.Token{AccessToken: "tok"}))

	out, err := runCommand(t, "auth", "logout")

	require.NoError(t, err)
	assert.Contains(t, out, "removed")
	assert.False(t, provider.HasToken(context.Background()))
}

func TestAuthLoginCmd_MissingClientCredentials(t *testing.T) {
	setupAuthServices(t)

	_, err := runCommand(t, "auth", "login")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "client-id")
}

func TestAuthCmds_RequireServices(t *testing.T) {
	resetServices(t)

	for _, sub := range []string{"login", "status", "logout"} {
		_, err := runCommand(t, "auth", sub)
		require.Error(t, err, sub)
		assert.Contains(t, err.Error(), "not configured")
	}
}

func TestResolveOAuthClient_FallsBackToConfig(t *testing.T) {
	setupAuthServices(t)
	require.NoError(t, configStore.Set("google.client_id", "cfg-id"))
	require.NoError(t, configStore.Set("google.client_secret", "cfg-secret"))

	id, secret, err := resolveOAuthClient()

	require.NoError(t, err)
	assert.Equal(t, "cfg-id", id)
	assert.Equal(t, "cfg-secret", secret)
}
