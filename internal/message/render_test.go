package message

import (
	"strings"
	"testing"

	"github.com/goldlure/blogwatch/internal/blog"
)

func TestRender(t *testing.T) {
	p := blog.Post{
		Title:     "Helm 4 Released",
		Link:      "https://helm.sh/blog/helm-4-released",
		Published: "2025-11-12",
		Excerpt:   "Helm 4 is here with a new plugin system",
		Source:    "Helm Blog",
		Icon:      "⚓",
	}

	want := "⚓ <b>Helm 4 Released</b>\n\n" +
		"📅 2025-11-12\n" +
		"🔖 Helm Blog\n\n" +
		"Helm 4 is here with a new plugin system...\n\n" +
		"🔗 <a href=\"https://helm.sh/blog/helm-4-released\">Read more</a>"

	if got := Render(p); got != want {
		t.Fatalf("rendered message mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderOmitsUnknownDate(t *testing.T) {
	p := blog.Post{
		Title:  "Untitled release",
		Link:   "https://helm.sh/blog/x",
		Source: "Helm Blog",
	}

	got := Render(p)
	if strings.Contains(got, "📅") {
		t.Fatalf("message should have no date line:\n%s", got)
	}
	if !strings.Contains(got, "🔖 Helm Blog") {
		t.Fatalf("message is missing the source line:\n%s", got)
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	p := blog.Post{
		Title:   "Charts & <templates>",
		Link:    "https://example.com/post?a=1&b=2",
		Excerpt: "values < secrets",
		Source:  "Example",
	}

	got := Render(p)
	if !strings.Contains(got, "<b>Charts &amp; &lt;templates&gt;</b>") {
		t.Errorf("title not escaped:\n%s", got)
	}
	if !strings.Contains(got, "values &lt; secrets") {
		t.Errorf("excerpt not escaped:\n%s", got)
	}
	if !strings.Contains(got, `href="https://example.com/post?a=1&amp;b=2"`) {
		t.Errorf("link not escaped:\n%s", got)
	}
}

func TestRenderWithoutIconOrExcerpt(t *testing.T) {
	p := blog.Post{
		Title:  "Plain post",
		Link:   "https://example.com/p",
		Source: "Example",
	}

	got := Render(p)
	if strings.HasPrefix(got, " ") {
		t.Errorf("empty icon left a leading space:\n%s", got)
	}
	if strings.Contains(got, "...") {
		t.Errorf("empty excerpt still rendered an ellipsis:\n%s", got)
	}
}

func TestExtract(t *testing.T) {
	text := "⚓ <b>Helm 4 Released</b>\n\n" +
		"📅 2025-11-12\n" +
		"🔖 Helm Blog\n\n" +
		"An excerpt...\n\n" +
		"🔗 <a href=\"https://helm.sh/blog/helm-4-released\">Read more</a>"

	source, date, ok := Extract(text)
	if !ok {
		t.Fatal("expected ok for tagged message")
	}
	if source != "Helm Blog" {
		t.Errorf("source = %q, want Helm Blog", source)
	}
	if date != "2025-11-12" {
		t.Errorf("date = %q, want 2025-11-12", date)
	}
}

func TestExtractRoundTrip(t *testing.T) {
	p := blog.Post{
		Title:     "Charts & <templates>",
		Link:      "https://example.com/p",
		Published: "2025-11-20",
		Excerpt:   "short teaser",
		Source:    "Release <Notes>",
		Icon:      "⚓",
	}

	source, date, ok := Extract(Render(p))
	if !ok {
		t.Fatal("expected ok for rendered message")
	}
	if source != p.Source {
		t.Errorf("source = %q, want %q", source, p.Source)
	}
	if date != p.Published {
		t.Errorf("date = %q, want %q", date, p.Published)
	}
}

func TestExtractUntaggedText(t *testing.T) {
	if _, _, ok := Extract("🚀 Blog watch started, tracking 2 sources"); ok {
		t.Fatal("startup announcement should not extract as a post")
	}
	if _, _, ok := Extract("plain text"); ok {
		t.Fatal("plain text should not extract as a post")
	}
}

func TestExtractDatelessMessage(t *testing.T) {
	source, date, ok := Extract("<b>T</b>\n\n🔖 Helm Blog\n\n🔗 <a href=\"https://x\">Read more</a>")
	if !ok || source != "Helm Blog" {
		t.Fatalf("source = %q ok = %v, want Helm Blog/true", source, ok)
	}
	if !date.IsZero() {
		t.Fatalf("date = %q, want zero", date)
	}
}

func TestStartup(t *testing.T) {
	if got := Startup(1); got != "🚀 Blog watch started, tracking 1 source" {
		t.Errorf("singular form = %q", got)
	}
	if got := Startup(3); got != "🚀 Blog watch started, tracking 3 sources" {
		t.Errorf("plural form = %q", got)
	}
}
