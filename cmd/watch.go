package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

var (
	watchSchedule string
	watchStatus   string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report session status changes on a schedule",
	Long: `Polls the session list on a cron schedule and prints every status
transition since the previous tick. Useful in a spare terminal or under a
supervisor while agents work:

  pilotdeck watch
  pilotdeck watch --schedule "@every 10s" --status WAITING_FOR_USER`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "@every 30s",
		"cron schedule for polling (standard cron or @every syntax)")
	watchCmd.Flags().StringVar(&watchStatus, "status", "",
		"only report sessions in this status")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, _, err := newClient(cfg)
	if err != nil {
		return err
	}

	w := &watcher{client: client, status: watchStatus, last: map[string]string{}}

	c := cron.New()
	if _, err := c.AddFunc(watchSchedule, w.tick); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", watchSchedule, err)
	}

	fmt.Printf("Watching sessions (%s). Ctrl-C to stop.\n", watchSchedule)
	w.tick()
	c.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx := c.Stop()
	<-ctx.Done()
	return nil
}

type watcher struct {
	client *api.Client
	status string

	// last maps session key to the status seen on the previous tick.
	last map[string]string
}

func (w *watcher) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	list, err := w.client.ListSessions(ctx, 1, 100, w.status)
	if err != nil {
		// Transient failures keep the previous snapshot; the next tick retries.
		slog.Debug("Watch poll failed", "error", err)
		return
	}

	now := time.Now().Format("15:04:05")
	seen := make(map[string]struct{}, len(list.Data))
	for _, s := range list.Data {
		key := s.Key()
		seen[key] = struct{}{}
		prev, known := w.last[key]
		w.last[key] = s.Status
		if !known {
			fmt.Printf("[%s] %s  %s\n", now, key, s.Status)
			continue
		}
		if prev != s.Status {
			fmt.Printf("[%s] %s  %s -> %s\n", now, key, prev, s.Status)
			if s.Status == api.StatusWaitingForUser {
				fmt.Printf("           approve with: pilotdeck session approve %s\n", key)
			}
		}
	}
	// Sessions gone from the list start over if they return; comparing a
	// returning session against a stale snapshot would fabricate transitions.
	for key := range w.last {
		if _, ok := seen[key]; !ok {
			delete(w.last, key)
		}
	}
}
