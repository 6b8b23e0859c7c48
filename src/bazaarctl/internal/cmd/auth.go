package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bitswalk/bazaar/src/bazaarctl/internal/config"
	"github.com/bitswalk/bazaar/src/bazaarctl/internal/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with the bazaard server",
	Long:  `Logs in with email and password and stores the access and refresh tokens locally.`,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	Long: `Removes the locally stored tokens. Issued tokens stay valid on the
server until they expire.`,
	RunE: runLogout,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Renew the stored tokens",
	Long:  `Exchanges the stored refresh token for a new refresh token, then for a new access token.`,
	RunE:  runRefresh,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current account information",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringP("email", "e", "", "Account email")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if email == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Email: ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(input)
	}

	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr())
		password = string(bytePassword)
	}

	c := getClient()
	ctx := context.Background()

	resp, err := c.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := config.SaveToken(&config.TokenData{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ServerURL:    c.BaseURL,
		Email:        email,
	}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	c.Token = resp.AccessToken
	c.RefreshToken = resp.RefreshToken

	result := map[string]string{"message": "Login successful", "email": email, "server": c.BaseURL}
	return output.PrintFormatted(getOutputFormat(), result, func() error {
		output.PrintMessage(fmt.Sprintf("Logged in as %s on %s", email, c.BaseURL))
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := config.ClearToken(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	return output.PrintFormatted(getOutputFormat(), map[string]string{"message": "Logged out"}, func() error {
		output.PrintMessage("Logged out successfully.")
		return nil
	})
}

func runRefresh(cmd *cobra.Command, args []string) error {
	tokenData, err := config.LoadToken()
	if err != nil || tokenData.RefreshToken == "" {
		return fmt.Errorf("no stored refresh token, run 'bazaarctl login' first")
	}

	c := getClient()
	resp, err := c.Refresh(context.Background(), tokenData.RefreshToken)
	if err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}

	tokenData.AccessToken = resp.AccessToken
	tokenData.RefreshToken = resp.RefreshToken
	tokenData.SavedAt = time.Now().UTC()
	if err := config.SaveToken(tokenData); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	c.Token = resp.AccessToken
	c.RefreshToken = resp.RefreshToken

	return output.PrintFormatted(getOutputFormat(), map[string]string{"message": "Tokens renewed"}, func() error {
		output.PrintMessage("Tokens renewed.")
		return nil
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	c := getClient()

	account, err := c.Me(context.Background())
	if err != nil {
		return fmt.Errorf("token validation failed: %w", err)
	}

	return output.PrintFormatted(getOutputFormat(), account, func() error {
		output.PrintTable(
			[]string{"FIELD", "VALUE"},
			[][]string{
				{"Email", account.Email},
				{"Role", account.Role},
				{"Account ID", fmt.Sprintf("%d", account.ID)},
				{"Active", fmt.Sprintf("%t", account.IsActive)},
			},
		)
		return nil
	})
}
