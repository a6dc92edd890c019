package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"igsession/pkg/config"
	"igsession/pkg/session"
	"igsession/pkg/ui"
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and clear persisted login sessions",
}

// sessionsListCmd lists stored session records
var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted sessions",
	RunE:  runSessionsList,
}

// sessionsClearCmd removes a stored session record
var sessionsClearCmd = &cobra.Command{
	Use:   "clear <username>",
	Short: "Clear the persisted session for an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsClear,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
}

func sessionStore() (*session.FileStore, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	return session.NewFileStore(cfg.Sessions.Directory)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}

	records, err := store.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		ui.PrintWarning("No sessions stored")
		return nil
	}

	for _, record := range records {
		ui.PrintInfo(record.Username, fmt.Sprintf("%d cookies, saved %s",
			len(record.Cookies), record.SavedAt.Format("2006-01-02 15:04:05")))
	}
	return nil
}

func runSessionsClear(cmd *cobra.Command, args []string) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}

	username := args[0]
	if err := store.Clear(username); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Cleared session for %s", username))
	return nil
}
