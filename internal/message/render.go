// Package message renders posts into notification text and extracts
// tracking fields back out of previously rendered text. The two directions
// share one grammar: the source line is tagged with the bookmark marker and
// the date line, present only when the post's date is known, with the
// calendar marker. Last-date tracking reconstructs its state from exactly
// these tags, so renderer and extractor must stay in lockstep.
package message

import (
	"fmt"
	"html"
	"strings"

	"github.com/goldlure/blogwatch/internal/blog"
)

const (
	dateMarker   = "📅 "
	sourceMarker = "🔖 "
)

// Render produces the notification body for one post, in Telegram HTML
// parse mode. Fields are escaped; the date is rendered in canonical form.
func Render(p blog.Post) string {
	var b strings.Builder

	if p.Icon != "" {
		b.WriteString(p.Icon)
		b.WriteString(" ")
	}
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(p.Title))
	b.WriteString("</b>\n\n")

	if !p.Published.IsZero() {
		b.WriteString(dateMarker)
		b.WriteString(p.Published.String())
		b.WriteString("\n")
	}
	b.WriteString(sourceMarker)
	b.WriteString(html.EscapeString(p.Source))
	b.WriteString("\n\n")

	if p.Excerpt != "" {
		b.WriteString(html.EscapeString(p.Excerpt))
		b.WriteString("...\n\n")
	}

	b.WriteString("🔗 <a href=\"")
	b.WriteString(html.EscapeString(p.Link))
	b.WriteString("\">Read more</a>")

	return b.String()
}

// Extract recovers the source name and publication date from rendered
// notification text. ok is false when the text carries no source tag. The
// returned date is zero when the message had no date line or its value does
// not parse.
func Extract(text string) (source string, date blog.Date, ok bool) {
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, sourceMarker):
			source = html.UnescapeString(strings.TrimSpace(strings.TrimPrefix(line, sourceMarker)))
		case strings.HasPrefix(line, dateMarker):
			date, _ = blog.ParseDate(strings.TrimPrefix(line, dateMarker))
		}
	}
	return source, date, source != ""
}

// Startup is the announcement sent when the watch loop begins.
func Startup(sources int) string {
	noun := "sources"
	if sources == 1 {
		noun = "source"
	}
	return fmt.Sprintf("🚀 Blog watch started, tracking %d %s", sources, noun)
}
