// Package blog holds the shared data model for watched blog sources:
// the normalized post record, canonical dates, and link canonicalization.
package blog

import "fmt"

// Post represents a single entry scraped from a blog listing or feed.
type Post struct {
	Title         string // entry headline
	Link          string // resolved absolute URL, as discovered
	CanonicalLink string // NormalizeURL(Link), stable identity for dedup
	Published     Date   // canonical date; zero when the source gave none
	Excerpt       string // plain-text teaser, at most 200 runes, no ellipsis
	Source        string // name of the source this post came from
	Icon          string // decorative glyph configured on the source
}

// Parser selects the listing-page parser for a source. The set is closed;
// dispatch is always an explicit switch, never a name lookup.
type Parser string

const (
	// ParserHelm handles the Helm blog listing layout (article with an
	// h2 headline link, a time element, and a leading paragraph).
	ParserHelm Parser = "helm"

	// ParserGeneric handles common blog layouts by trying a small set of
	// container and headline selectors.
	ParserGeneric Parser = "generic"
)

// ParseParser validates a config string against the known parser kinds.
func ParseParser(s string) (Parser, error) {
	switch Parser(s) {
	case ParserHelm, ParserGeneric:
		return Parser(s), nil
	}
	return "", fmt.Errorf("unknown parser %q (want helm or generic)", s)
}

// Source describes one watched blog. Built from configuration, never
// mutated by the core.
type Source struct {
	Name   string // unique key, used in state and rendered messages
	URL    string // listing page to scrape
	Feed   string // RSS/Atom endpoint, optional fallback
	Icon   string // glyph prefixed to notifications
	Parser Parser // listing parser variant
	Limit  int    // max posts considered per fetch
}
