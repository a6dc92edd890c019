package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igsession/pkg/accounts"
	"igsession/pkg/ui"
)

// accountsCmd represents the accounts command
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage stored login credentials",
	Long: `Manage the stored credential pool.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only, INSTAGRAM_ACCOUNTS)

Never share your credentials or config files!`,
}

// accountsAddCmd stores a new credential
var accountsAddCmd = &cobra.Command{
	Use:   "add [username]",
	Short: "Store a login credential securely",
	Long: `Store a username/password pair in the system keychain or encrypted
file. The password is prompted without echo.`,
	Example: `  # Interactive add
  igsession accounts add

  # Add with username
  igsession accounts add myusername`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAccountsAdd,
}

// accountsListCmd lists stored credentials
var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored accounts with passwords masked.`,
	RunE:  runAccountsList,
}

// accountsRemoveCmd removes a stored credential
var accountsRemoveCmd = &cobra.Command{
	Use:   "remove <username>",
	Short: "Remove a stored account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsRemove,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsAddCmd)
	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsRemoveCmd)
}

func runAccountsAdd(cmd *cobra.Command, args []string) error {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		fmt.Print("Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return fmt.Errorf("password is required")
	}

	manager, err := accounts.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	account := &accounts.StoredAccount{
		Username: username,
		Password: string(password),
	}
	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store account: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Stored account %s", username))
	return nil
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	manager, err := accounts.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	stored, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(stored) == 0 {
		ui.PrintWarning("No accounts stored")
		return nil
	}

	for _, account := range stored {
		sanitized := accounts.SanitizeAccount(account)
		ui.PrintInfo(sanitized.Username, sanitized.Password)
	}
	return nil
}

func runAccountsRemove(cmd *cobra.Command, args []string) error {
	manager, err := accounts.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	username := args[0]
	if err := manager.Delete(username); err != nil {
		return fmt.Errorf("failed to remove account: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Removed account %s", username))
	return nil
}
