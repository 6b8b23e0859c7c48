package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"github.com/bitswalk/bazaar/src/bazaard/auth"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
	Long: `Administrator accounts cannot be created through the API. Use
"bazaard admin create" while the server is stopped to bootstrap one.`,
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		fromStdin, _ := cmd.Flags().GetBool("password-stdin")

		password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), fromStdin)
		if err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() {
			if err := database.Shutdown(); err != nil {
				log.Error("Failed to persist database", "error", err)
			}
		}()

		accounts := auth.NewAccountRepository(database.DB())
		hasher := auth.NewBcryptHasher(viper.GetInt("auth.bcrypt_cost"))
		account, err := createAdmin(cmd.Context(), accounts, hasher, email, password)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created admin account %s (id %d)\n", account.Email, account.ID)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().String("email", "", "Email address of the new administrator")
	adminCreateCmd.Flags().Bool("password-stdin", false, "Read the password from stdin instead of prompting")
	_ = adminCreateCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(adminCreateCmd)
}

// adminCreator is the part of the account store createAdmin needs
type adminCreator interface {
	Create(ctx context.Context, a *auth.Account) error
}

// createAdmin validates the credentials and stores a new admin account
func createAdmin(ctx context.Context, accounts adminCreator, hasher auth.PasswordHasher, email, password string) (*auth.Account, error) {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, fmt.Errorf("invalid email address %q", email)
	}
	if len(password) < 8 || len(password) > 72 {
		return nil, fmt.Errorf("password must be between 8 and 72 bytes")
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	account := auth.NewAccount(email, hash, auth.RoleAdmin)
	if err := accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	log.Info("Admin account created", "account_id", account.ID, "email", account.Email)
	return account, nil
}

// readPassword prompts twice on a terminal, otherwise reads one line from in
func readPassword(in io.Reader, prompt io.Writer, fromStdin bool) (string, error) {
	if f, ok := in.(*os.File); ok && !fromStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprint(prompt, "Confirm password: ")
		second, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if string(first) != string(second) {
			return "", fmt.Errorf("passwords do not match")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
