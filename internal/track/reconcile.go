package track

import (
	"log/slog"

	"github.com/goldlure/blogwatch/internal/blog"
)

// Reconciler decides which posts from a fetch are new and what the source's
// next position is. Input posts must be ordered newest first; the output is
// ordered oldest first so a reader never sees a post before its predecessor.
type Reconciler struct {
	Mode     Mode
	FirstRun FirstRun
}

// New returns a Reconciler for the given mode and first-run policy.
func New(mode Mode, firstRun FirstRun) *Reconciler {
	return &Reconciler{Mode: mode, FirstRun: firstRun}
}

// Reconcile computes the oldest-first new posts for one source and its
// updated position. A nil returned position means the stored position must
// not be touched. An empty fetch yields no new posts and no position change.
func (r *Reconciler) Reconcile(source string, posts []blog.Post, pos Position) ([]blog.Post, Position) {
	if len(posts) == 0 {
		return nil, nil
	}

	var (
		fresh   []blog.Post
		updated Position
	)
	switch r.Mode {
	case ModeSeenSet:
		fresh, updated = reconcileSeenSet(posts, pos)
	case ModeLastLink:
		fresh, updated = reconcileLastLink(source, posts, pos)
	case ModeLastDate:
		fresh, updated = reconcileLastDate(source, posts, pos)
	default:
		slog.Error("unknown tracking mode, skipping source", "mode", r.Mode, "source", source)
		return nil, nil
	}

	if pos == nil && r.FirstRun == FirstRunSeed {
		if len(fresh) > 0 {
			slog.Info("first run, seeding position without notifying",
				"source", source, "suppressed", len(fresh))
		}
		return nil, updated
	}

	reverse(fresh)
	return fresh, updated
}

// reconcileSeenSet flags posts whose canonical link is absent from the
// stored set. The whole fetch is always scanned, so reordered or backfilled
// listings still surface. The updated set is the union of the stored set
// and every link observed this cycle, not just the new ones.
func reconcileSeenSet(posts []blog.Post, pos Position) ([]blog.Post, Position) {
	stored, _ := pos.(SeenSet)

	updated := make(SeenSet, len(stored)+len(posts))
	for link := range stored {
		updated[link] = struct{}{}
	}

	var fresh []blog.Post
	for _, p := range posts {
		if !stored.Has(p.CanonicalLink) {
			fresh = append(fresh, p)
		}
		updated[p.CanonicalLink] = struct{}{}
	}
	return fresh, updated
}

// reconcileLastLink scans the newest-first fetch until the stored link is
// met; everything before it is new, the match and everything after it is
// not. A stored link missing from the window means more posts were published
// than the listing shows, so the whole fetch is treated as new rather than
// losing track permanently.
func reconcileLastLink(source string, posts []blog.Post, pos Position) ([]blog.Post, Position) {
	updated := LastLink(posts[0].CanonicalLink)

	stored, ok := pos.(LastLink)
	if !ok {
		fresh := make([]blog.Post, len(posts))
		copy(fresh, posts)
		return fresh, updated
	}

	var fresh []blog.Post
	matched := false
	for _, p := range posts {
		if p.CanonicalLink == string(stored) {
			matched = true
			break
		}
		fresh = append(fresh, p)
	}
	if !matched {
		slog.Warn("stored link not in fetch window, treating all posts as new",
			"source", source, "stored", string(stored))
	}
	return fresh, updated
}

// reconcileLastDate flags posts published strictly after the stored date.
// Posts without a usable date are excluded from both the output and the
// position: a wrong date could either spam or permanently suppress real
// posts. The position advances to the latest date among every dated post
// this cycle and never moves backwards.
func reconcileLastDate(source string, posts []blog.Post, pos Position) ([]blog.Post, Position) {
	stored, hasStored := pos.(LastDate)

	var (
		fresh   []blog.Post
		maxDate blog.Date
	)
	for _, p := range posts {
		if p.Published.IsZero() {
			slog.Debug("skipping post without usable date",
				"source", source, "title", p.Title)
			continue
		}
		if p.Published.After(maxDate) {
			maxDate = p.Published
		}
		if !hasStored || p.Published.After(blog.Date(stored)) {
			fresh = append(fresh, p)
		}
	}

	if maxDate.IsZero() {
		return nil, nil
	}
	if hasStored && !maxDate.After(blog.Date(stored)) {
		return fresh, stored
	}
	return fresh, LastDate(maxDate)
}

func reverse(posts []blog.Post) {
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
}
