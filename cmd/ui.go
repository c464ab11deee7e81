package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive terminal dashboard",
	Long: `Opens the full-screen dashboard: a live session list, a per-session
detail view with logs and approval, and a new-session form.`,
	RunE: runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, _, err := newClient(cfg)
	if err != nil {
		return err
	}

	if err := tui.NewApp(cfg, client).Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
