package cmd

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage AI provider profiles (admin)",
	Long: `AI profiles hold the model-provider credentials agents run with. Create,
edit, enable and disable them here, and pick your personal default with
'profile use'.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List AI profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one AI profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profileCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an AI profile interactively",
	RunE:  runProfileCreate,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an AI profile interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileEdit,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an AI profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileDelete,
}

var profileToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable an AI profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileToggle,
}

var profileUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Set your preferred AI profile for new sessions",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileUse,
}

func init() {
	profileCmd.AddCommand(profileListCmd, profileShowCmd, profileCreateCmd,
		profileEditCmd, profileDeleteCmd, profileToggleCmd, profileUseCmd)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a numeric id", arg)
	}
	return id, nil
}

func runProfileList(cmd *cobra.Command, args []string) error {
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

	profiles, err := client.ListAIProfiles(ctx)
	if err != nil {
		return err
	}

	var pref *api.AIPreference
	if p, err := client.AIPreference(ctx); err == nil {
		pref = p
	}

	return render(cfg.Output.Format, profiles, func() {
		if len(profiles) == 0 {
			fmt.Println("No AI profiles configured.")
			return
		}
		fmt.Printf("%-6s %-24s %-12s %-24s %-9s %s\n", "ID", "NAME", "PROVIDER", "MODEL", "ENABLED", "")
		for _, p := range profiles {
			marks := ""
			if p.IsDefault {
				marks = "default"
			}
			if pref != nil && pref.AIProfileID == p.ID {
				if marks != "" {
					marks += ", "
				}
				marks += "in use"
			}
			fmt.Printf("%-6d %-24s %-12s %-24s %-9t %s\n",
				p.ID, clip(p.Name, 24), p.Provider, clip(p.DefaultModel, 24), p.IsEnabled, marks)
		}
	})
}

func runProfileShow(cmd *cobra.Command, args []string) error {
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

	p, err := client.GetAIProfile(ctx, id)
	if err != nil {
		return err
	}

	return render(cfg.Output.Format, p, func() {
		fmt.Printf("Name:     %s\n", p.Name)
		fmt.Printf("Provider: %s\n", p.Provider)
		if p.DefaultModel != "" {
			fmt.Printf("Model:    %s\n", p.DefaultModel)
		}
		if p.BaseURL != "" {
			fmt.Printf("Base URL: %s\n", p.BaseURL)
		}
		fmt.Printf("Enabled:  %t\n", p.IsEnabled)
		fmt.Printf("Default:  %t\n", p.IsDefault)
	})
}

// profileForm collects an AIProfileInput, pre-filled from in for edits. The
// API key is left blank on edit to keep the stored secret.
func profileForm(in *api.AIProfileInput, editing bool) error {
	keyTitle := "API key"
	if editing {
		keyTitle = "API key (blank keeps the current one)"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&in.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Provider").
				Options(huh.NewOptions(api.AIProviders...)...).
				Value(&in.Provider),
			huh.NewInput().
				Title(keyTitle).
				EchoMode(huh.EchoModePassword).
				Value(&in.APIKey),
			huh.NewInput().
				Title("Base URL (optional, for azure/custom)").
				Value(&in.BaseURL),
			huh.NewInput().
				Title("Default model (optional)").
				Value(&in.DefaultModel),
			huh.NewConfirm().
				Title("Enabled?").
				Value(&in.IsEnabled),
		),
	).Run()
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
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

	in := api.AIProfileInput{Provider: api.AIProviders[0], IsEnabled: true}
	if err := profileForm(&in, false); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}

	created, err := client.CreateAIProfile(ctx, in)
	if err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}
	fmt.Printf("Profile %d (%s) created.\n", created.ID, created.Name)
	return nil
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
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

	current, err := client.GetAIProfile(ctx, id)
	if err != nil {
		return err
	}

	in := api.AIProfileInput{
		Name:         current.Name,
		Provider:     current.Provider,
		BaseURL:      current.BaseURL,
		DefaultModel: current.DefaultModel,
		IsEnabled:    current.IsEnabled,
	}
	if !slices.Contains(api.AIProviders, in.Provider) {
		in.Provider = api.AIProviders[0]
	}
	if err := profileForm(&in, true); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}

	updated, err := client.UpdateAIProfile(ctx, id, in)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	fmt.Printf("Profile %d (%s) updated.\n", updated.ID, updated.Name)
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
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

	if err := client.DeleteAIProfile(ctx, id); err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	fmt.Printf("Profile %d deleted.\n", id)
	return nil
}

func runProfileToggle(cmd *cobra.Command, args []string) error {
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

	res, err := client.ToggleAIProfile(ctx, id)
	if err != nil {
		return fmt.Errorf("toggling profile: %w", err)
	}
	fmt.Println(res.Message)
	return nil
}

func runProfileUse(cmd *cobra.Command, args []string) error {
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

	pref, err := client.SetAIPreference(ctx, id)
	if err != nil {
		return fmt.Errorf("setting preference: %w", err)
	}
	if pref.AIProfile != nil {
		fmt.Printf("New sessions will use %s (%s).\n", pref.AIProfile.Name, pref.AIProfile.Provider)
	} else {
		fmt.Printf("Preference set to profile %d.\n", pref.AIProfileID)
	}
	return nil
}
