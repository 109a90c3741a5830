package source

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/goldlure/blogwatch/internal/blog"
)

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// fetchFeed reads the configured RSS/Atom feed. Feeds carry machine
// timestamps, so dates from this path are more reliable than listing
// text; everything else is normalized exactly like scraped posts.
func (f *Fetcher) fetchFeed(ctx context.Context, src blog.Source) ([]blog.Post, error) {
	fp := gofeed.NewParser()
	fp.Client = f.client
	feed, err := fp.ParseURLWithContext(src.Feed, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", src.Feed, err)
	}

	limit := sourceLimit(src)
	var posts []blog.Post
	for _, item := range feed.Items {
		if len(posts) == limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		posts = append(posts, blog.Post{
			Title:         title,
			Link:          link,
			CanonicalLink: blog.NormalizeURL(link),
			Published:     itemDate(src, item),
			Excerpt:       excerptText(stripHTML(item.Description)),
			Source:        src.Name,
			Icon:          src.Icon,
		})
	}
	return posts, nil
}

func itemDate(src blog.Source, item *gofeed.Item) blog.Date {
	if item.PublishedParsed != nil {
		return blog.DateOf(*item.PublishedParsed)
	}
	if item.UpdatedParsed != nil {
		return blog.DateOf(*item.UpdatedParsed)
	}
	date, err := blog.ParseDate(item.Published)
	if err != nil {
		slog.Warn("unrecognized post date", "source", src.Name, "date", item.Published, "title", item.Title)
	}
	return date
}

func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	return html.UnescapeString(s)
}
