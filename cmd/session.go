package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create and inspect agent sessions",
}

var (
	newGoal      string
	newRepoURL   string
	newRepoID    int64
	newBranch    string
	newMode      string
	newProfileID int64

	listPage    int
	listPerPage int
	listStatus  string
)

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new agent session",
	Long: `Starts an agent session for a goal against a repository. With no --repo or
--repo-id, the repository URL and base branch are detected from the git
checkout in the current directory.`,
	RunE: runSessionNew,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your sessions",
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's current state and logs",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionApproveCmd = &cobra.Command{
	Use:   "approve <session-id>",
	Short: "Approve a session waiting for review",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionApprove,
}

var sessionInputCmd = &cobra.Command{
	Use:   "input <session-id> <message>",
	Short: "Send a message to the running agent",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSessionInput,
}

func init() {
	sessionNewCmd.Flags().StringVarP(&newGoal, "goal", "g", "", "what the agent should do (required)")
	sessionNewCmd.Flags().StringVar(&newRepoURL, "repo", "", "repository URL (default: detected from the current directory)")
	sessionNewCmd.Flags().Int64Var(&newRepoID, "repo-id", 0, "backend repository id (overrides --repo)")
	sessionNewCmd.Flags().StringVar(&newBranch, "branch", "", "base branch (default: detected, else the server's choice)")
	sessionNewCmd.Flags().StringVar(&newMode, "mode", "review", "execution mode: auto or review")
	sessionNewCmd.Flags().Int64Var(&newProfileID, "profile", 0, "AI profile id (default: your stored preference)")
	_ = sessionNewCmd.MarkFlagRequired("goal")

	sessionListCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	sessionListCmd.Flags().IntVar(&listPerPage, "per-page", 0, "page size (default from config)")
	sessionListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (e.g. WAITING_FOR_USER)")

	sessionCmd.AddCommand(sessionNewCmd, sessionListCmd, sessionShowCmd, sessionApproveCmd, sessionInputCmd)
}

func runSessionNew(cmd *cobra.Command, args []string) error {
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

	repoURL, branch := newRepoURL, newBranch
	if newRepoID == 0 && repoURL == "" {
		repoURL, branch, err = detectCheckout(branch)
		if err != nil {
			return fmt.Errorf("no --repo given and %w", err)
		}
		fmt.Printf("Using %s (branch %s)\n", repoURL, branch)
	}

	created, err := client.CreateSession(ctx, api.SessionRequest{
		Goal:             strings.TrimSpace(newGoal),
		RepoURL:          repoURL,
		RepositoryID:     newRepoID,
		BaseBranch:       branch,
		Mode:             newMode,
		AIProfileID:      newProfileID,
		GitCoAuthorName:  cfg.Git.CoAuthorName,
		GitCoAuthorEmail: cfg.Git.CoAuthorEmail,
	})
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	fmt.Printf("Session %s created.\n", created.SessionID)
	fmt.Printf("Follow it with: pilotdeck session show %s  (or: pilotdeck ui)\n", created.SessionID)
	return nil
}

// detectCheckout reads the origin URL and, when branch is empty, the current
// branch from the git repository at the working directory.
func detectCheckout(branch string) (string, string, error) {
	repo, err := git.PlainOpenWithOptions(".", &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", "", fmt.Errorf("the current directory is not a git checkout: %w", err)
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		return "", "", fmt.Errorf("the checkout has no origin remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", "", fmt.Errorf("the origin remote has no URL")
	}
	if branch == "" {
		if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
			branch = head.Name().Short()
		}
	}
	return urls[0], branch, nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
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

	perPage := listPerPage
	if perPage == 0 {
		perPage = cfg.Output.PerPage
	}
	list, err := client.ListSessions(ctx, listPage, perPage, listStatus)
	if err != nil {
		return err
	}

	return render(cfg.Output.Format, list, func() {
		if len(list.Data) == 0 {
			fmt.Println("No sessions.")
			return
		}
		fmt.Printf("%-14s %-40s %-18s %s\n", "ID", "TITLE", "STATUS", "UPDATED")
		for _, s := range list.Data {
			title := s.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%-14s %-40s %-18s %s\n", clip(s.Key(), 14), clip(title, 40), s.Status, s.UpdatedAt)
		}
		fmt.Printf("page %d of %d total\n", list.Meta.Page, list.Meta.Total)
	})
}

func runSessionShow(cmd *cobra.Command, args []string) error {
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

	s, err := client.GetSession(ctx, args[0])
	if err != nil {
		return err
	}

	return render(cfg.Output.Format, s, func() {
		title := s.Title
		if title == "" {
			title = "Session " + s.Key()
		}
		fmt.Printf("%s  [%s]\n", title, s.Status)
		if goal := s.StateString("goal"); goal != "" {
			fmt.Printf("Goal:   %s\n", goal)
		}
		if s.Repository != nil {
			fmt.Printf("Repo:   %s\n", s.Repository.FullName)
		} else if v := s.StateString("repo_url"); v != "" {
			fmt.Printf("Repo:   %s\n", v)
		}
		if b := s.StateString("base_branch"); b != "" {
			fmt.Printf("Branch: %s\n", b)
		}
		if len(s.Logs) > 0 {
			fmt.Println("\nLog:")
			for _, line := range s.Logs {
				fmt.Printf("  %s\n", line)
			}
		}
		if s.Result != "" {
			fmt.Printf("\nResult: %s\n", s.Result)
		}
		if s.Status == api.StatusWaitingForUser {
			fmt.Printf("\nThe agent is waiting — approve with: pilotdeck session approve %s\n", s.Key())
		}
	})
}

func runSessionApprove(cmd *cobra.Command, args []string) error {
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

	if err := client.ApproveSession(ctx, args[0]); err != nil {
		return fmt.Errorf("approving session: %w", err)
	}
	fmt.Println("Session resumed.")
	return nil
}

func runSessionInput(cmd *cobra.Command, args []string) error {
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

	message := strings.Join(args[1:], " ")
	if err := client.AddSessionInput(ctx, args[0], message); err != nil {
		return fmt.Errorf("sending input: %w", err)
	}
	fmt.Println("Input sent.")
	return nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
