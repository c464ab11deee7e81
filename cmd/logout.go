package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/state"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the stored session",
	RunE:  runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, jar, err := newClient(cfg)
	if err != nil {
		return err
	}

	// Best-effort server logout; the local session is cleared either way.
	auth := state.NewAuth(client)
	_ = auth.Logout(ctx)
	if err := jar.Clear(); err != nil {
		return fmt.Errorf("clearing stored session: %w", err)
	}
	fmt.Println("Signed out.")
	return nil
}
