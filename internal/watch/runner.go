// Package watch runs check cycles: fetch every source, work out which
// posts are new, notify about them oldest-first and persist the advanced
// positions.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goldlure/blogwatch/internal/blog"
	"github.com/goldlure/blogwatch/internal/message"
	"github.com/goldlure/blogwatch/internal/track"
)

// Fetcher returns the newest posts of a source, newest first.
type Fetcher interface {
	Fetch(ctx context.Context, src blog.Source) ([]blog.Post, error)
}

// Sender delivers one rendered notification.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Store persists tracking positions between cycles.
type Store interface {
	Load(ctx context.Context) (map[string]track.Position, error)
	Save(ctx context.Context, updated map[string]track.Position) error
}

// Runner executes check cycles over a fixed set of sources.
type Runner struct {
	Sources []blog.Source
	Fetcher Fetcher
	Store   Store
	Rec     *track.Reconciler
	Sender  Sender

	// DryRun renders what would be sent without sending or saving.
	DryRun bool
}

// Report sums up a single cycle.
type Report struct {
	Sources  int
	Fetched  int      // sources whose fetch succeeded
	New      int      // new posts found across all sources
	Sent     int      // notifications delivered
	Failed   int      // notifications that could not be delivered
	Previews []string // rendered messages, dry runs only
}

// RunOnce performs one cycle. A failing source is skipped with a warning
// and the others proceed; a failing send is logged and the batch
// continues. Positions are saved once at the end even when sends failed,
// matching what was observed rather than what was delivered.
func (r *Runner) RunOnce(ctx context.Context) (*Report, error) {
	positions, err := r.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}

	report := &Report{Sources: len(r.Sources)}
	results := r.fetchAll(ctx)

	updates := make(map[string]track.Position)
	var queue []blog.Post
	for i, src := range r.Sources {
		if results[i].err != nil {
			slog.Warn("source check failed", "source", src.Name, "error", results[i].err)
			continue
		}
		report.Fetched++

		fresh, updated := r.Rec.Reconcile(src.Name, results[i].posts, positions[src.Name])
		if updated != nil {
			updates[src.Name] = updated
		}
		queue = append(queue, fresh...)
	}
	report.New = len(queue)

	for _, post := range queue {
		text := message.Render(post)
		if r.DryRun {
			report.Previews = append(report.Previews, text)
			continue
		}
		if err := r.Sender.Send(ctx, text); err != nil {
			slog.Error("notification failed", "source", post.Source, "link", post.CanonicalLink, "error", err)
			report.Failed++
			continue
		}
		report.Sent++
		slog.Info("notified", "source", post.Source, "title", post.Title)
	}

	if r.DryRun {
		return report, nil
	}
	if err := r.Store.Save(ctx, updates); err != nil {
		return report, fmt.Errorf("save positions: %w", err)
	}
	return report, nil
}

type fetchResult struct {
	posts []blog.Post
	err   error
}

// fetchAll fetches every source concurrently and returns the results in
// declaration order, which fixes the notification order downstream.
func (r *Runner) fetchAll(ctx context.Context) []fetchResult {
	results := make([]fetchResult, len(r.Sources))
	var wg sync.WaitGroup
	for i, src := range r.Sources {
		i, src := i, src // per-iteration copies; the go directive predates Go 1.22 loop scoping
		wg.Add(1)
		go func() {
			defer wg.Done()
			posts, err := r.Fetcher.Fetch(ctx, src)
			results[i] = fetchResult{posts: posts, err: err}
		}()
	}
	wg.Wait()
	return results
}
