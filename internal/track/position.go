// Package track computes which fetched posts are new relative to a
// persisted per-source position, under one of three tracking modes.
package track

import (
	"fmt"

	"github.com/goldlure/blogwatch/internal/blog"
)

// Mode selects how a source's position is represented and compared.
type Mode string

const (
	// ModeSeenSet stores every canonical link ever observed. The set only
	// grows; membership decides newness, so reordered listings are safe.
	ModeSeenSet Mode = "seen-set"

	// ModeLastLink stores the canonical link of the newest post seen.
	// Scanning stops at the stored link; if it fell out of the listing
	// window, the whole fetch is treated as new (fail-open).
	ModeLastLink Mode = "last-link"

	// ModeLastDate stores the most recent publication date observed.
	// Posts without a usable date are ignored entirely.
	ModeLastDate Mode = "last-date"
)

// ParseMode validates a config string against the known tracking modes.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSeenSet, ModeLastLink, ModeLastDate:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown tracking mode %q (want seen-set, last-link or last-date)", s)
}

// FirstRun decides what happens when a source has no stored position yet.
type FirstRun string

const (
	// FirstRunNotify emits every fetched post on a source's first cycle.
	FirstRunNotify FirstRun = "notify"

	// FirstRunSeed suppresses notifications on the first cycle but still
	// persists the computed position, so the next cycle diffs normally.
	FirstRunSeed FirstRun = "seed"
)

// ParseFirstRun validates a config string against the first-run policies.
func ParseFirstRun(s string) (FirstRun, error) {
	switch FirstRun(s) {
	case FirstRunNotify, FirstRunSeed:
		return FirstRun(s), nil
	}
	return "", fmt.Errorf("unknown first-run policy %q (want notify or seed)", s)
}

// Position is a source's stored reconciliation state. Exactly one concrete
// shape exists per Mode; the shapes are never combined.
type Position interface {
	Mode() Mode
}

// SeenSet is the ModeSeenSet position: every canonical link observed so far.
type SeenSet map[string]struct{}

func (SeenSet) Mode() Mode { return ModeSeenSet }

// Has reports whether the canonical link is already in the set.
func (s SeenSet) Has(link string) bool {
	_, ok := s[link]
	return ok
}

// LastLink is the ModeLastLink position: the newest canonical link seen.
type LastLink string

func (LastLink) Mode() Mode { return ModeLastLink }

// LastDate is the ModeLastDate position: the latest publication date seen.
type LastDate blog.Date

func (LastDate) Mode() Mode { return ModeLastDate }
