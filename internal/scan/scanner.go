// Package scan flags likely secrets in blueprint content before
// publication. It is advisory: false positives are expected, matches never
// block anything by themselves, and the calling workflow decides whether
// to require acknowledgment.
package scan

import (
	"regexp"
	"strings"
)

// Match is one flagged line. Line is 1-based. Snippet is truncated so a
// real secret is never re-displayed at full length.
type Match struct {
	Line    int    `json:"line"`
	Type    string `json:"type"`
	Snippet string `json:"snippet"`
}

const snippetLimit = 48

type category struct {
	label string
	re    *regexp.Regexp
}

// categories run in order; at most one match per category per line.
var categories = []category{
	{
		label: "API Key",
		re: regexp.MustCompile(`(?i)(api[_-]?key|secret[_-]?key|access[_-]?key|auth[_-]?token|client[_-]?secret)\s*[:=]\s*["']?\S{8,}` +
			`|sk_(live|test)_[A-Za-z0-9]{8,}` +
			`|ghp_[A-Za-z0-9]{20,}` +
			`|gho_[A-Za-z0-9]{20,}` +
			`|xox[baprs]-[A-Za-z0-9-]{10,}` +
			`|AKIA[A-Z0-9]{16}` +
			`|AIza[A-Za-z0-9_\-]{20,}`),
	},
	{
		label: "Password",
		re:    regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?[^\s"']{4,}`),
	},
	{
		label: "Private Key",
		re:    regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY( BLOCK)?-----`),
	},
	{
		label: "Connection String",
		re:    regexp.MustCompile(`(?i)[a-z][a-z0-9+.-]*://[^/\s:@]+:[^@\s]+@[^\s]+`),
	},
}

// Scan runs every pattern category over text line by line and returns the
// matches in line order. An empty result means nothing looked like a
// secret, not that nothing is one.
func Scan(text string) []Match {
	var matches []Match
	for i, line := range strings.Split(text, "\n") {
		for _, c := range categories {
			loc := c.re.FindStringIndex(line)
			if loc == nil {
				continue
			}
			matches = append(matches, Match{
				Line:    i + 1,
				Type:    c.label,
				Snippet: snippet(line, loc[0]),
			})
		}
	}
	return matches
}

func snippet(line string, start int) string {
	s := strings.TrimSpace(line[start:])
	if len(s) > snippetLimit {
		return s[:snippetLimit] + "…"
	}
	return s
}
