package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, _, err := newClient(cfg)
	if err != nil {
		return err
	}

	user, err := client.Me(ctx)
	if errors.Is(err, api.ErrUnauthenticated) {
		return fmt.Errorf("not signed in")
	}
	if err != nil {
		return err
	}

	return render(cfg.Output.Format, user, func() {
		fmt.Printf("%s", user.Email)
		if user.Name != "" {
			fmt.Printf(" (%s)", user.Name)
		}
		if user.IsAdmin {
			fmt.Printf(" [admin]")
		}
		fmt.Println()
	})
}
