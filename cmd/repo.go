package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/state"
)

var (
	repoQuery string
	repoAll   bool
	repoPage  int
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Browse repositories synced from your git providers",
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List synced repositories",
	Long: `Lists the repositories the backend has synced for you. With --all, pages
are fetched until the full result set is accumulated; duplicates the
backend returns across pages are dropped.`,
	RunE: runRepoList,
}

func init() {
	repoListCmd.Flags().StringVarP(&repoQuery, "query", "q", "", "free-text filter")
	repoListCmd.Flags().BoolVar(&repoAll, "all", false, "fetch every page")
	repoListCmd.Flags().IntVar(&repoPage, "pages", 1, "number of pages to fetch (ignored with --all)")

	repoCmd.AddCommand(repoListCmd)
}

func runRepoList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, _, err := newClient(cfg)
	if err != nil {
		return err
	}

	pager := state.NewRepoPager(client, cfg.Output.PerPage)
	pager.SetQuery(repoQuery)

	pages := repoPage
	if pages < 1 {
		pages = 1
	}
	for i := 0; i < pages || repoAll; i++ {
		if !pager.HasMore() {
			break
		}
		if err := pager.LoadMore(ctx); err != nil {
			return err
		}
	}

	repos := pager.Repos()
	return render(cfg.Output.Format, repos, func() {
		if len(repos) == 0 {
			fmt.Println("No repositories. Link a provider account first: pilotdeck login --provider <name>")
			return
		}
		fmt.Printf("%-8s %-44s %-16s %-10s %s\n", "ID", "REPOSITORY", "BRANCH", "LANGUAGE", "")
		for _, r := range repos {
			vis := ""
			if r.Private {
				vis = "private"
			}
			fmt.Printf("%-8d %-44s %-16s %-10s %s\n",
				r.ID, clip(r.FullName, 44), r.DefaultBranch, clip(r.Language, 10), vis)
		}
		fmt.Printf("%d of %d repositories\n", len(repos), pager.Total())
	})
}
