package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginUsername string
	loginPassword string
	loginProvider string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the pilotdeck backend",
	Long: `Authenticates against the backend and stores the session cookie under
~/.pilotdeck/. Username/password login runs interactively unless both
--username and --password are given.

OAuth login happens in the browser; --provider prints the URL to open:

  pilotdeck login --provider github`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prefer the interactive prompt)")
	loginCmd.Flags().StringVar(&loginProvider, "provider", "", "OAuth provider to sign in with (e.g. github)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, jar, err := newClient(cfg)
	if err != nil {
		return err
	}

	if loginProvider != "" {
		// The OAuth dance runs in the browser; the backend sets the cookie on
		// the redirect back, so the terminal cannot capture it directly.
		providers, err := client.EnabledProviders(ctx)
		if err != nil {
			return fmt.Errorf("listing providers: %w", err)
		}
		for _, p := range providers {
			if p.Name == loginProvider {
				fmt.Printf("Open in your browser to sign in with %s:\n\n  %s/auth/login/%s\n",
					p.DisplayName, cfg.Server.URL, p.Name)
				return nil
			}
		}
		return fmt.Errorf("provider %q is not enabled on this server", loginProvider)
	}

	username, password := loginUsername, loginPassword
	if username == "" || password == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("no terminal available — pass --username and --password")
		}
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Username").
					Value(&username).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("username cannot be empty")
						}
						return nil
					}),
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&password),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}
	}

	if err := client.Login(ctx, strings.TrimSpace(username), password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := jar.Save(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	user, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("verifying session: %w", err)
	}
	fmt.Printf("Signed in as %s\n", user.Email)
	return nil
}
