package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/config"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile   string
	verbose   bool
	serverURL string
	outFormat string
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pilotdeck",
	Short: "Terminal client for the pilotdeck AI coding-agent platform",
	Long: `pilotdeck drives AI coding-agent sessions from the terminal: start a task
against one of your repositories, watch the agent plan and code live, and
approve its work when it pauses for review.

Get started:
  pilotdeck login      Sign in to the backend
  pilotdeck session    Create and inspect agent sessions
  pilotdeck ui         Launch the interactive terminal UI
  pilotdeck watch      Monitor sessions on a schedule
  pilotdeck profile    Manage AI provider profiles (admin)
  pilotdeck provider   Manage git provider connections (admin)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.pilotdeck/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"backend URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outFormat, "output", "o", "",
		"output format: table, json, or yaml")

	rootCmd.Version = Version
	rootCmd.AddCommand(
		loginCmd,
		logoutCmd,
		whoamiCmd,
		sessionCmd,
		watchCmd,
		uiCmd,
		profileCmd,
		providerCmd,
		identityCmd,
		repoCmd,
		configCmd,
	)
}

func initLogging() {
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}
}

// loadConfig reads the config, applying the --server override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if outFormat != "" {
		cfg.Output.Format = outFormat
	}
	return cfg, nil
}

// newClient builds the API client with the persistent session jar. The jar
// is returned so login/logout can save or clear it.
func newClient(cfg *config.Config) (*api.Client, *api.SessionJar, error) {
	cookiePath, err := config.CookiePath()
	if err != nil {
		return nil, nil, fmt.Errorf("locating cookie store: %w", err)
	}
	jar, err := api.NewSessionJar(cookiePath, cfg.Server.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cookie store: %w", err)
	}
	client := api.New(cfg.Server.URL,
		api.WithHTTPClient(&http.Client{Jar: jar, Timeout: 30 * time.Second}),
		api.WithAuthFailedHook(func() {
			fmt.Fprintln(os.Stderr, "Session expired or missing — run: pilotdeck login")
		}),
	)
	return client, jar, nil
}
