package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/goldlure/blogwatch/internal/config"
	"github.com/goldlure/blogwatch/internal/message"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check sources on an interval until interrupted",
	RunE:  watchAction,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watchAction(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	runner, cleanup, err := buildRunner(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Watch.AnnounceStart {
		if err := runner.Sender.Send(ctx, message.Startup(len(runner.Sources))); err != nil {
			slog.Warn("startup announcement failed", "error", err)
		}
	}

	slog.Info("watching", "sources", len(runner.Sources), "interval", cfg.Watch.Interval.Duration)
	return runWatch(ctx, cfg.Watch.Interval.Duration, func(ctx context.Context) error {
		report, err := runner.RunOnce(ctx)
		if err != nil {
			return err
		}
		printReport(os.Stdout, report)
		return nil
	})
}

// runWatch calls fn immediately and then once per interval until the
// context is cancelled. A failed cycle is logged and the next one still
// runs.
func runWatch(ctx context.Context, interval time.Duration, fn func(ctx context.Context) error) error {
	runCycle := func() {
		if err := fn(ctx); err != nil {
			slog.Error("check cycle failed", "error", err)
		}
	}

	runCycle()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			runCycle()
		}
	}
}
