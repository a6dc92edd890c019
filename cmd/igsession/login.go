package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"igsession/pkg/accounts"
	"igsession/pkg/browser"
	"igsession/pkg/config"
	"igsession/pkg/logger"
	"igsession/pkg/login"
	"igsession/pkg/ratelimit"
	"igsession/pkg/session"
	"igsession/pkg/ui"
)

var (
	credentialsFlag string
	headlessFlag    bool
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with automatic account failover",
	Long: `Attempt a browser login, rotating through the configured credential
pool until one account authenticates. On success the session cookies are
persisted for reuse.

Credentials come from, in order of precedence:
  - the --accounts flag
  - the INSTAGRAM_ACCOUNTS environment variable or config file
  - accounts stored via "igsession accounts add"`,
	Example: `  # Use the configured credential pool
  igsession login

  # Supply an explicit pool
  igsession login --accounts "primary:pass1,backup:pass2"`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&credentialsFlag, "accounts", "", "comma-delimited username:password pairs")
	loginCmd.Flags().BoolVar(&headlessFlag, "headless", true, "run the browser headless")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = headlessFlag
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	pool, err := buildPool(cfg)
	if err != nil {
		return err
	}

	sessions, err := session.NewFileStore(cfg.Sessions.Directory)
	if err != nil {
		return err
	}

	ui.PrintInfo("Accounts", fmt.Sprintf("%d", pool.Size()))

	driver, err := browser.NewRodDriver(&cfg.Browser)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := driver.Close(); err != nil {
			log.WithError(err).Warn("failed to close browser")
		}
	}()

	limiter := ratelimit.New(cfg.RateLimit.RequestDelay, cfg.RateLimit.LoginDelay)
	orchestrator := login.NewOrchestrator(driver, limiter, sessions, &cfg.Login)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := orchestrator.AttemptLogin(ctx, pool)

	switch result.Status {
	case login.StatusSuccess:
		ui.PrintSuccess("Login successful")
		ui.PrintInfo("Account", result.Username)
		ui.PrintInfo("Cookies", fmt.Sprintf("%d", len(result.Cookies)))
		return nil
	case login.StatusAccountsExhausted:
		ui.PrintError("All accounts failed to login")
		return fmt.Errorf("accounts exhausted")
	case login.StatusCancelled:
		ui.PrintWarning("Login cancelled")
		return result.Err
	default:
		ui.PrintError("Browser driver failed", result.Err)
		return result.Err
	}
}

// buildPool resolves the credential pool from the flag, the
// configuration, or the credential store, in that order
func buildPool(cfg *config.Config) (*accounts.Pool, error) {
	if credentialsFlag != "" {
		return accounts.Load(credentialsFlag)
	}
	if cfg.Accounts.Credentials != "" {
		return accounts.Load(cfg.Accounts.Credentials)
	}

	manager, err := accounts.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	pool, err := accounts.PoolFromStore(manager)
	if err != nil {
		return nil, fmt.Errorf("no credentials configured: set INSTAGRAM_ACCOUNTS, pass --accounts, or run \"igsession accounts add\"")
	}
	return pool, nil
}
