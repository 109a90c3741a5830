package cli

import (
	"fmt"
	"io"

	"github.com/goldlure/blogwatch/internal/config"
	"github.com/goldlure/blogwatch/internal/notify"
	"github.com/goldlure/blogwatch/internal/source"
	"github.com/goldlure/blogwatch/internal/store"
	"github.com/goldlure/blogwatch/internal/track"
	"github.com/goldlure/blogwatch/internal/watch"
)

// buildRunner assembles a check pipeline from the loaded configuration.
// The returned cleanup closes the state store and must be called once the
// runner is no longer needed. In dry-run mode no Telegram credentials are
// required and no sender is attached.
func buildRunner(cfg *config.Config, dryRun bool) (*watch.Runner, func(), error) {
	journal := notify.NewJournal(cfg.Track.Journal)

	st, err := store.Open(cfg.Mode(), cfg.Track.Path, journal)
	if err != nil {
		return nil, nil, fmt.Errorf("open state store: %w", err)
	}

	var sender watch.Sender
	if !dryRun {
		if cfg.Telegram.Token == "" {
			_ = st.Close()
			return nil, nil, fmt.Errorf("environment variable %s is empty", cfg.Telegram.TokenEnv)
		}
		if cfg.Telegram.ChatID == "" {
			_ = st.Close()
			return nil, nil, fmt.Errorf("environment variable %s is empty", cfg.Telegram.ChatIDEnv)
		}
		client := notify.NewClient(cfg.Telegram.Token, cfg.Telegram.ChatID)
		sender = notify.NewSender(client, journal, cfg.Telegram.SendDelay.Duration)
	}

	runner := &watch.Runner{
		Sources: cfg.BlogSources(),
		Fetcher: source.NewFetcher(cfg.Watch.Timeout.Duration),
		Store:   st,
		Rec:     track.New(cfg.Mode(), cfg.FirstRun()),
		Sender:  sender,
		DryRun:  dryRun,
	}
	cleanup := func() { _ = st.Close() }
	return runner, cleanup, nil
}

func printReport(w io.Writer, report *watch.Report) {
	if len(report.Previews) > 0 {
		fmt.Fprintln(w, "--- would send ---")
		for _, preview := range report.Previews {
			fmt.Fprintln(w, preview)
			fmt.Fprintln(w, "---")
		}
	}
	fmt.Fprintf(w, "Checked %d/%d sources: %d new, %d sent, %d failed.\n",
		report.Fetched, report.Sources, report.New, report.Sent, report.Failed)
}
