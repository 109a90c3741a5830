package track

import (
	"testing"

	"github.com/goldlure/blogwatch/internal/blog"
)

func post(link string, published blog.Date) blog.Post {
	return blog.Post{
		Title:         "post " + link,
		Link:          link,
		CanonicalLink: blog.NormalizeURL(link),
		Published:     published,
		Source:        "Helm Blog",
	}
}

func links(posts []blog.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.CanonicalLink
	}
	return out
}

func requireLinks(t *testing.T, got []blog.Post, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d posts %v, want %d %v", len(got), links(got), len(want), want)
	}
	for i, p := range got {
		if p.CanonicalLink != want[i] {
			t.Fatalf("post[%d] = %q, want %q (full: %v)", i, p.CanonicalLink, want[i], links(got))
		}
	}
}

// --- seen-set ---

func TestSeenSetMembership(t *testing.T) {
	r := New(ModeSeenSet, FirstRunNotify)
	posts := []blog.Post{
		post("https://helm.sh/blog/c", ""),
		post("https://helm.sh/blog/b", ""),
		post("https://helm.sh/blog/a", ""),
	}
	stored := SeenSet{"https://helm.sh/blog/a": {}}

	fresh, updated := r.Reconcile("Helm Blog", posts, stored)

	requireLinks(t, fresh, "https://helm.sh/blog/b", "https://helm.sh/blog/c")

	set, ok := updated.(SeenSet)
	if !ok {
		t.Fatalf("updated position is %T, want SeenSet", updated)
	}
	for _, link := range []string{"https://helm.sh/blog/a", "https://helm.sh/blog/b", "https://helm.sh/blog/c"} {
		if !set.Has(link) {
			t.Errorf("updated set missing %q", link)
		}
	}
}

func TestSeenSetSecondRunEmpty(t *testing.T) {
	r := New(ModeSeenSet, FirstRunNotify)
	posts := []blog.Post{
		post("https://helm.sh/blog/b", ""),
		post("https://helm.sh/blog/a", ""),
	}

	first, updated := r.Reconcile("Helm Blog", posts, nil)
	if len(first) != 2 {
		t.Fatalf("first run produced %d posts, want 2", len(first))
	}

	second, _ := r.Reconcile("Helm Blog", posts, updated)
	if len(second) != 0 {
		t.Fatalf("second run produced %d posts, want 0: %v", len(second), links(second))
	}
}

func TestSeenSetKeepsNonNewObservedLinks(t *testing.T) {
	r := New(ModeSeenSet, FirstRunNotify)
	stored := SeenSet{"https://helm.sh/blog/old": {}}
	posts := []blog.Post{post("https://helm.sh/blog/old", "")}

	fresh, updated := r.Reconcile("Helm Blog", posts, stored)
	if len(fresh) != 0 {
		t.Fatalf("already seen post flagged as new: %v", links(fresh))
	}
	if set := updated.(SeenSet); !set.Has("https://helm.sh/blog/old") {
		t.Error("observed link dropped from updated set")
	}
}

// --- last-link ---

func TestLastLinkStoredIsNewest(t *testing.T) {
	r := New(ModeLastLink, FirstRunNotify)
	posts := []blog.Post{
		post("https://helm.sh/blog/a", ""),
		post("https://helm.sh/blog/b", ""),
	}

	fresh, updated := r.Reconcile("Helm Blog", posts, LastLink("https://helm.sh/blog/a"))
	if len(fresh) != 0 {
		t.Fatalf("expected no new posts, got %v", links(fresh))
	}
	if updated != LastLink("https://helm.sh/blog/a") {
		t.Fatalf("updated = %v, want newest link", updated)
	}
}

func TestLastLinkNoStoredPosition(t *testing.T) {
	r := New(ModeLastLink, FirstRunNotify)
	posts := []blog.Post{
		post("https://helm.sh/blog/c", ""),
		post("https://helm.sh/blog/b", ""),
		post("https://helm.sh/blog/a", ""),
	}

	fresh, updated := r.Reconcile("Helm Blog", posts, nil)

	// Entire fetch, reversed to oldest first.
	requireLinks(t, fresh, "https://helm.sh/blog/a", "https://helm.sh/blog/b", "https://helm.sh/blog/c")
	if updated != LastLink("https://helm.sh/blog/c") {
		t.Fatalf("updated = %v, want newest link", updated)
	}
}

func TestLastLinkMatchMidList(t *testing.T) {
	r := New(ModeLastLink, FirstRunNotify)
	posts := []blog.Post{
		post("https://helm.sh/blog/c", ""),
		post("https://helm.sh/blog/b", ""),
		post("https://helm.sh/blog/a", ""),
	}

	fresh, updated := r.Reconcile("Helm Blog", posts, LastLink("https://helm.sh/blog/b"))

	// Only posts strictly newer than the stored one; the match itself and
	// everything after it are not new.
	requireLinks(t, fresh, "https://helm.sh/blog/c")
	if updated != LastLink("https://helm.sh/blog/c") {
		t.Fatalf("updated = %v, want newest link", updated)
	}
}

func TestLastLinkStoredFellOffWindow(t *testing.T) {
	r := New(ModeLastLink, FirstRunNotify)
	posts := []blog.Post{
		post("https://helm.sh/blog/f", ""),
		post("https://helm.sh/blog/e", ""),
	}

	fresh, updated := r.Reconcile("Helm Blog", posts, LastLink("https://helm.sh/blog/a"))

	// Fail-open: the stored link is gone from the listing, so everything
	// is treated as new rather than losing track.
	requireLinks(t, fresh, "https://helm.sh/blog/e", "https://helm.sh/blog/f")
	if updated != LastLink("https://helm.sh/blog/f") {
		t.Fatalf("updated = %v, want newest link", updated)
	}
}

// --- last-date ---

func TestLastDateEndToEnd(t *testing.T) {
	r := New(ModeLastDate, FirstRunNotify)
	posts := []blog.Post{
		post("https://helm.sh/blog/a", "2025-11-20"),
		post("https://helm.sh/blog/b", "2025-11-18"),
	}

	fresh, updated := r.Reconcile("Helm Blog", posts, LastDate("2025-11-18"))

	// /b has the stored date exactly; equal is not strictly greater.
	requireLinks(t, fresh, "https://helm.sh/blog/a")
	if updated != LastDate("2025-11-20") {
		t.Fatalf("updated = %v, want 2025-11-20", updated)
	}
}

func TestLastDateUnparsableExcluded(t *testing.T) {
	r := New(ModeLastDate, FirstRunNotify)
	posts := []blog.Post{
		post("https://helm.sh/blog/dated", "2025-11-20"),
		post("https://helm.sh/blog/undated", ""),
	}

	fresh, updated := r.Reconcile("Helm Blog", posts, LastDate("2025-11-01"))

	requireLinks(t, fresh, "https://helm.sh/blog/dated")
	if updated != LastDate("2025-11-20") {
		t.Fatalf("updated = %v, want 2025-11-20", updated)
	}
}

func TestLastDateAllUndatedLeavesStateAlone(t *testing.T) {
	r := New(ModeLastDate, FirstRunNotify)
	posts := []blog.Post{
		post("https://helm.sh/blog/x", ""),
		post("https://helm.sh/blog/y", ""),
	}

	fresh, updated := r.Reconcile("Helm Blog", posts, LastDate("2025-11-01"))
	if len(fresh) != 0 {
		t.Fatalf("undated posts notified: %v", links(fresh))
	}
	if updated != nil {
		t.Fatalf("updated = %v, want nil (position untouched)", updated)
	}
}

func TestLastDateFirstRun(t *testing.T) {
	r := New(ModeLastDate, FirstRunNotify)
	posts := []blog.Post{
		post("https://helm.sh/blog/b", "2025-11-20"),
		post("https://helm.sh/blog/a", "2025-11-18"),
	}

	fresh, updated := r.Reconcile("Helm Blog", posts, nil)

	requireLinks(t, fresh, "https://helm.sh/blog/a", "https://helm.sh/blog/b")
	if updated != LastDate("2025-11-20") {
		t.Fatalf("updated = %v, want 2025-11-20", updated)
	}
}

func TestLastDateWatermarkNeverRegresses(t *testing.T) {
	r := New(ModeLastDate, FirstRunNotify)
	posts := []blog.Post{post("https://helm.sh/blog/old", "2025-11-20")}

	fresh, updated := r.Reconcile("Helm Blog", posts, LastDate("2025-12-01"))
	if len(fresh) != 0 {
		t.Fatalf("stale post notified: %v", links(fresh))
	}
	if updated != LastDate("2025-12-01") {
		t.Fatalf("updated = %v, watermark must not move backwards", updated)
	}
}

// --- shared behavior ---

func TestEmptyFetch(t *testing.T) {
	for _, mode := range []Mode{ModeSeenSet, ModeLastLink, ModeLastDate} {
		r := New(mode, FirstRunNotify)
		fresh, updated := r.Reconcile("Helm Blog", nil, nil)
		if len(fresh) != 0 || updated != nil {
			t.Errorf("%s: empty fetch produced posts=%v updated=%v", mode, links(fresh), updated)
		}
	}
}

func TestFirstRunSeedSuppressesButSeeds(t *testing.T) {
	posts := []blog.Post{
		post("https://helm.sh/blog/b", "2025-11-20"),
		post("https://helm.sh/blog/a", "2025-11-18"),
	}

	tests := []struct {
		mode  Mode
		check func(t *testing.T, pos Position)
	}{
		{mode: ModeSeenSet, check: func(t *testing.T, pos Position) {
			set, ok := pos.(SeenSet)
			if !ok || len(set) != 2 {
				t.Fatalf("seeded position = %#v, want set of 2 links", pos)
			}
		}},
		{mode: ModeLastLink, check: func(t *testing.T, pos Position) {
			if pos != LastLink("https://helm.sh/blog/b") {
				t.Fatalf("seeded position = %v, want newest link", pos)
			}
		}},
		{mode: ModeLastDate, check: func(t *testing.T, pos Position) {
			if pos != LastDate("2025-11-20") {
				t.Fatalf("seeded position = %v, want 2025-11-20", pos)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r := New(tt.mode, FirstRunSeed)
			fresh, updated := r.Reconcile("Helm Blog", posts, nil)
			if len(fresh) != 0 {
				t.Fatalf("seed policy notified %v", links(fresh))
			}
			if updated == nil {
				t.Fatal("seed policy left position empty")
			}
			tt.check(t, updated)
		})
	}
}

func TestSeedOnlyAppliesToFirstRun(t *testing.T) {
	r := New(ModeLastLink, FirstRunSeed)
	posts := []blog.Post{
		post("https://helm.sh/blog/b", ""),
		post("https://helm.sh/blog/a", ""),
	}

	fresh, _ := r.Reconcile("Helm Blog", posts, LastLink("https://helm.sh/blog/a"))
	requireLinks(t, fresh, "https://helm.sh/blog/b")
}

func TestReconcileLeavesInputOrderIntact(t *testing.T) {
	r := New(ModeSeenSet, FirstRunNotify)
	posts := []blog.Post{
		post("https://helm.sh/blog/b", ""),
		post("https://helm.sh/blog/a", ""),
	}

	_, _ = r.Reconcile("Helm Blog", posts, nil)

	if posts[0].CanonicalLink != "https://helm.sh/blog/b" {
		t.Fatal("input slice was reordered")
	}
}
