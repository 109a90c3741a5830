package blog

import "strings"

// NormalizeURL canonicalizes a link for identity comparison by stripping
// exactly one trailing slash. It never lowercases, drops query strings, or
// resolves relative forms; resolving root-relative links against the source
// host happens in the fetcher before links reach this function.
func NormalizeURL(raw string) string {
	return strings.TrimSuffix(raw, "/")
}
