package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Manage git provider connections (admin)",
	Long: `Git providers connect the backend to GitHub, GitLab or Bitbucket so it can
sync repositories and offer OAuth sign-in. Secrets are write-only: they are
sent on create/edit and never shown again.`,
}

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List git providers",
	RunE:  runProviderList,
}

var providerShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one git provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runProviderShow,
}

var providerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a git provider interactively",
	RunE:  runProviderCreate,
}

var providerEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a git provider interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runProviderEdit,
}

var providerDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a git provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runProviderDelete,
}

var providerToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable a git provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runProviderToggle,
}

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Manage linked provider accounts",
}

var identityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts linked to your user",
	RunE:  runIdentityList,
}

var identityUnlinkCmd = &cobra.Command{
	Use:   "unlink <provider>",
	Short: "Unlink a provider account",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentityUnlink,
}

func init() {
	providerCmd.AddCommand(providerListCmd, providerShowCmd, providerCreateCmd,
		providerEditCmd, providerDeleteCmd, providerToggleCmd)
	identityCmd.AddCommand(identityListCmd, identityUnlinkCmd)
}

func runProviderList(cmd *cobra.Command, args []string) error {
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

	providers, err := client.ListGitProviders(ctx)
	if err != nil {
		return err
	}

	return render(cfg.Output.Format, providers, func() {
		if len(providers) == 0 {
			fmt.Println("No git providers configured.")
			return
		}
		fmt.Printf("%-6s %-20s %-12s %-12s %s\n", "ID", "NAME", "DRIVER", "AUTH", "ENABLED")
		for _, p := range providers {
			fmt.Printf("%-6d %-20s %-12s %-12s %t\n",
				p.ID, clip(p.DisplayName, 20), p.Driver, p.AuthType, p.Enabled)
		}
	})
}

func runProviderShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, _, err := newClient(cfg)
	if err != nil {
		return err
	}

	p, err := client.GetGitProvider(ctx, id)
	if err != nil {
		return err
	}

	return render(cfg.Output.Format, p, func() {
		fmt.Printf("Name:          %s (%s)\n", p.DisplayName, p.Name)
		fmt.Printf("Driver:        %s\n", p.Driver)
		fmt.Printf("Auth type:     %s\n", p.AuthType)
		fmt.Printf("Enabled:       %t\n", p.Enabled)
		if p.BaseURL != "" {
			fmt.Printf("Base URL:      %s\n", p.BaseURL)
		}
		if p.ClientID != "" {
			fmt.Printf("Client ID:     %s\n", p.ClientID)
		}
		fmt.Printf("Client secret: %s\n", secretMark(p.HasClientSecret))
		if p.AuthType == "github_app" {
			fmt.Printf("App:           %s (id %s)\n", p.AppName, p.AppID)
			fmt.Printf("Private key:   %s\n", secretMark(p.HasPrivateKey))
		}
		fmt.Printf("Webhook:       %s\n", secretMark(p.HasWebhookSecret))
	})
}

func secretMark(set bool) string {
	if set {
		return "(set)"
	}
	return "(not set)"
}

// providerForm collects a GitProviderInput. Creating prefills the endpoint
// URLs for the chosen driver; editing leaves secrets blank to keep the
// stored ones.
func providerForm(in *api.GitProviderInput, editing bool) error {
	drivers := []string{"github", "gitlab", "bitbucket"}
	secretTitle := "Client secret"
	if editing {
		secretTitle = "Client secret (blank keeps the current one)"
	}

	base := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name (short identifier, e.g. github)").
				Value(&in.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Display name").
				Value(&in.DisplayName),
			huh.NewSelect[string]().
				Title("Driver").
				Options(huh.NewOptions(drivers...)...).
				Value(&in.Driver),
			huh.NewSelect[string]().
				Title("Auth type").
				Options(huh.NewOptions("oauth", "github_app")...).
				Value(&in.AuthType),
			huh.NewConfirm().
				Title("Enabled?").
				Value(&in.Enabled),
		),
	)
	if err := base.Run(); err != nil {
		return err
	}

	if !editing {
		if d, ok := api.DriverDefaults[in.Driver]; ok {
			if in.AuthURL == "" {
				in.AuthURL = d.AuthURL
			}
			if in.TokenURL == "" {
				in.TokenURL = d.TokenURL
			}
			if in.UserInfoURL == "" {
				in.UserInfoURL = d.UserInfoURL
			}
			if in.Scopes == "" {
				in.Scopes = d.Scopes
			}
		}
	}

	details := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Client ID").
				Value(&in.ClientID),
			huh.NewInput().
				Title(secretTitle).
				EchoMode(huh.EchoModePassword).
				Value(&in.ClientSecret),
			huh.NewInput().
				Title("Authorize URL").
				Value(&in.AuthURL),
			huh.NewInput().
				Title("Token URL").
				Value(&in.TokenURL),
			huh.NewInput().
				Title("User info URL").
				Value(&in.UserInfoURL),
			huh.NewInput().
				Title("Scopes").
				Value(&in.Scopes),
			huh.NewInput().
				Title("Base URL (self-hosted instances only)").
				Value(&in.BaseURL),
		),
	)
	if err := details.Run(); err != nil {
		return err
	}

	if in.AuthType == "github_app" {
		app := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("App ID").
					Value(&in.AppID),
				huh.NewInput().
					Title("App name").
					Value(&in.AppName),
				huh.NewText().
					Title("Private key (PEM; blank keeps the current one)").
					Value(&in.PrivateKey),
				huh.NewInput().
					Title("Webhook secret (blank keeps the current one)").
					EchoMode(huh.EchoModePassword).
					Value(&in.WebhookSecret),
			),
		)
		if err := app.Run(); err != nil {
			return err
		}
	}
	return nil
}

func runProviderCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, _, err := newClient(cfg)
	if err != nil {
		return err
	}

	in := api.GitProviderInput{Driver: "github", AuthType: "oauth", Enabled: true}
	if err := providerForm(&in, false); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}

	created, err := client.CreateGitProvider(ctx, in)
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}
	fmt.Printf("Provider %d (%s) created.\n", created.ID, created.DisplayName)
	return nil
}

func runProviderEdit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, _, err := newClient(cfg)
	if err != nil {
		return err
	}

	current, err := client.GetGitProvider(ctx, id)
	if err != nil {
		return err
	}

	in := api.GitProviderInput{
		Name:        current.Name,
		DisplayName: current.DisplayName,
		Driver:      current.Driver,
		Enabled:     current.Enabled,
		AuthType:    current.AuthType,
		ClientID:    current.ClientID,
		AuthURL:     current.AuthURL,
		TokenURL:    current.TokenURL,
		UserInfoURL: current.UserInfoURL,
		Scopes:      current.Scopes,
		RedirectURL: current.RedirectURL,
		AppID:       current.AppID,
		AppName:     current.AppName,
		AppUsername: current.AppUsername,
		AppEmail:    current.AppEmail,
		BaseURL:     current.BaseURL,
	}
	if err := providerForm(&in, true); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}

	updated, err := client.UpdateGitProvider(ctx, id, in)
	if err != nil {
		return fmt.Errorf("updating provider: %w", err)
	}
	fmt.Printf("Provider %d (%s) updated.\n", updated.ID, updated.DisplayName)
	return nil
}

func runProviderDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, _, err := newClient(cfg)
	if err != nil {
		return err
	}

	if err := client.DeleteGitProvider(ctx, id); err != nil {
		return fmt.Errorf("deleting provider: %w", err)
	}
	fmt.Printf("Provider %d deleted.\n", id)
	return nil
}

func runProviderToggle(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, _, err := newClient(cfg)
	if err != nil {
		return err
	}

	res, err := client.ToggleGitProvider(ctx, id)
	if err != nil {
		return fmt.Errorf("toggling provider: %w", err)
	}
	fmt.Println(res.Message)
	return nil
}

func runIdentityList(cmd *cobra.Command, args []string) error {
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

	identities, err := client.Identities(ctx)
	if err != nil {
		return err
	}

	return render(cfg.Output.Format, identities, func() {
		if len(identities) == 0 {
			fmt.Println("No linked accounts.")
			return
		}
		fmt.Printf("%-16s %-24s %s\n", "PROVIDER", "ACCOUNT", "EMAIL")
		for _, id := range identities {
			fmt.Printf("%-16s %-24s %s\n", id.Provider, id.ProviderID, id.Email)
		}
	})
}

func runIdentityUnlink(cmd *cobra.Command, args []string) error {
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

	if err := client.UnlinkIdentity(ctx, args[0]); err != nil {
		return fmt.Errorf("unlinking %s: %w", args[0], err)
	}
	fmt.Printf("Unlinked %s.\n", args[0])
	return nil
}
