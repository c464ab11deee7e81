package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the pilotdeck configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path(cfgFile)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return render(cfg.Output.Format, cfg, func() {
			fmt.Printf("server.url          %s\n", cfg.Server.URL)
			fmt.Printf("git.co_author_name  %s\n", cfg.Git.CoAuthorName)
			fmt.Printf("git.co_author_email %s\n", cfg.Git.CoAuthorEmail)
			fmt.Printf("poll.session        %ds\n", cfg.Poll.Session)
			fmt.Printf("poll.list           %ds\n", cfg.Poll.List)
			fmt.Printf("output.format       %s\n", cfg.Output.Format)
			fmt.Printf("output.per_page     %d\n", cfg.Output.PerPage)
		})
	},
}

func init() {
	configCmd.AddCommand(configPathCmd, configShowCmd)
}
