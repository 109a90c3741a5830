package source

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/goldlure/blogwatch/internal/blog"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

func parseListing(resp *http.Response, src blog.Source) ([]blog.Post, error) {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.URL, err)
	}

	// resp.Request.URL is the final URL after redirects; relative links
	// resolve against it, not the configured one.
	base := resp.Request.URL
	switch src.Parser {
	case blog.ParserGeneric:
		return parseGeneric(doc, base, src), nil
	default:
		return parseHelm(doc, base, src), nil
	}
}

// parseHelm reads the Hugo layout used by helm.sh/blog: one <article> per
// post, the linked title in h2 > a, the date in <time>, the excerpt in
// the first paragraph.
func parseHelm(doc *goquery.Document, base *url.URL, src blog.Source) []blog.Post {
	limit := sourceLimit(src)
	var posts []blog.Post
	doc.Find("article").EachWithBreak(func(_ int, article *goquery.Selection) bool {
		if len(posts) == limit {
			return false
		}
		link := article.Find("h2 a").First()
		href, ok := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if !ok || title == "" {
			return true
		}
		rawDate := strings.TrimSpace(article.Find("time").First().Text())
		posts = append(posts, newPost(src, base, title, href, rawDate, article.Find("p").First().Text()))
		return true
	})
	return posts
}

// parseGeneric handles common blog layouts: posts in <article> or
// .post/.blog-post containers with a linked heading. Listings without a
// recognizable date element produce undated posts.
func parseGeneric(doc *goquery.Document, base *url.URL, src blog.Source) []blog.Post {
	limit := sourceLimit(src)
	var posts []blog.Post
	doc.Find("article, div.post, div.blog-post").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if len(posts) == limit {
			return false
		}
		link := item.Find("h1 a, h2 a, h3 a").First()
		if link.Length() == 0 {
			link = item.Find("a").First()
		}
		href, ok := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if !ok || title == "" {
			return true
		}
		rawDate := strings.TrimSpace(item.Find("time, .date").First().Text())
		if rawDate == "" {
			rawDate = "Recent"
		}
		posts = append(posts, newPost(src, base, title, href, rawDate, item.Find("p").First().Text()))
		return true
	})
	return posts
}

func newPost(src blog.Source, base *url.URL, title, href, rawDate, rawExcerpt string) blog.Post {
	published, err := blog.ParseDate(rawDate)
	if err != nil {
		slog.Warn("unrecognized post date", "source", src.Name, "date", rawDate, "title", title)
	}
	link := resolveLink(base, href)
	return blog.Post{
		Title:         title,
		Link:          link,
		CanonicalLink: blog.NormalizeURL(link),
		Published:     published,
		Excerpt:       excerptText(rawExcerpt),
		Source:        src.Name,
		Icon:          src.Icon,
	}
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// excerptText flattens scraped paragraph text onto one line and caps it.
func excerptText(raw string) string {
	text := strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " "))
	return firstNRunes(text, excerptRunes)
}

func firstNRunes(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
