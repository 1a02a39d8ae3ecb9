package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/orderlens/orderlens/internal/adapters/driven/auth"
	"github.com/orderlens/orderlens/internal/adapters/driving/oauth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Gmail authentication",
	Long: `Authenticate with Google so Gmail sources can be synchronised.

You need an OAuth application in the Google Cloud Console with the
Gmail API enabled. Pass its credentials once with --client-id and
--client-secret; they are stored in the config file for later runs.

Examples:
  orderlens auth login --client-id "xxx" --client-secret "yyy"
  orderlens auth status
  orderlens auth logout`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorise access to a Gmail account",
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE:  runAuthLogout,
}

// Flags for auth login.
var (
	authClientID     string
	authClientSecret string
	authNoBrowser    bool
)

// Callback ports tried for the local redirect server.
const (
	authPortStart = 8484
	authPortEnd   = 8584
)

func init() {
	authLoginCmd.Flags().StringVar(
		&authClientID, "client-id", "", "OAuth client ID (stored in config after first use)")
	authLoginCmd.Flags().StringVar(
		&authClientSecret, "client-secret", "", "OAuth client secret (stored in config after first use)")
	authLoginCmd.Flags().BoolVar(
		&authNoBrowser, "no-browser", false, "Print the authorization URL instead of opening a browser")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if tokenProvider == nil || configStore == nil {
		return errors.New("auth service not configured")
	}

	ctx := context.Background()

	clientID, clientSecret, err := resolveOAuthClient()
	if err != nil {
		return err
	}

	port, err := oauth.FindAvailablePort(authPortStart, authPortEnd)
	if err != nil {
		return fmt.Errorf("no port available for the callback server: %w", err)
	}

	state := oauth.GenerateState()
	server := oauth.NewCallbackServer(port, state)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	defer server.Stop()

	config := auth.GoogleOAuthConfig(clientID, clientSecret, server.RedirectURI())
	verifier := oauth2.GenerateVerifier()
	authURL := config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	if authNoBrowser {
		cmd.Println("Open this URL in your browser to authorise access:")
		cmd.Println()
		cmd.Printf("  %s\n", authURL)
	} else {
		cmd.Println("Opening browser for authorisation...")
		if err := oauth.OpenBrowser(authURL); err != nil {
			cmd.Println("Could not open a browser. Open this URL manually:")
			cmd.Printf("  %s\n", authURL)
		}
	}
	cmd.Println("\nWaiting for authorisation...")

	code, err := server.WaitForCode(5 * time.Minute)
	if err != nil {
		return fmt.Errorf("authorisation failed: %w", err)
	}

	token, err := config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}

	if err := tokenProvider.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	// Persist the client credentials so later syncs can refresh.
	if err := configStore.Set("google.client_id", clientID); err != nil {
		return fmt.Errorf("failed to save client ID: %w", err)
	}
	if err := configStore.Set("google.client_secret", clientSecret); err != nil {
		return fmt.Errorf("failed to save client secret: %w", err)
	}

	cmd.Println("Authentication successful. Gmail sources are ready to sync.")
	return nil
}

// resolveOAuthClient returns the OAuth client credentials from flags,
// falling back to the config file.
func resolveOAuthClient() (clientID, clientSecret string, err error) {
	clientID = authClientID
	if clientID == "" {
		clientID = configStore.GetString("google.client_id")
	}
	clientSecret = authClientSecret
	if clientSecret == "" {
		clientSecret = configStore.GetString("google.client_secret")
	}
	if clientID == "" || clientSecret == "" {
		return "", "", errors.New(
			"missing OAuth client credentials; pass --client-id and --client-secret")
	}
	return clientID, clientSecret, nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if tokenProvider == nil {
		return errors.New("auth service not configured")
	}

	if tokenProvider.HasToken(context.Background()) {
		cmd.Println("Authenticated: a Google token is stored.")
	} else {
		cmd.Println("Not authenticated. Run: orderlens auth login")
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if tokenProvider == nil {
		return errors.New("auth service not configured")
	}

	if err := tokenProvider.ClearToken(context.Background()); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	cmd.Println("Stored credentials removed.")
	return nil
}
