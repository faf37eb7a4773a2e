package detect

import (
	"net/url"
	"regexp"
	"strings"
)

// unsafeChars are shell metacharacters that must never appear in a URL we
// hand to the clone subprocess. The URL is always passed as a discrete
// argument, never interpolated into a shell string; this check is the
// second layer.
const unsafeChars = "`;&|$(){}[]<>\\'\"!#*?~ \t\r\n"

var allowedSchemes = []string{"https://", "http://", "git://", "ssh://"}

// scpLikeRe matches git@host:owner/repo SCP-style syntax.
var scpLikeRe = regexp.MustCompile(`^git@[A-Za-z0-9._-]+:[A-Za-z0-9._/-]+$`)

// IsValidGitURL reports whether raw is safe to pass to the clone tool.
// Only https, http, git, ssh and git@-style SCP URLs are accepted, and any
// string containing shell metacharacters is rejected outright.
func IsValidGitURL(raw string) bool {
	if raw == "" || strings.ContainsAny(raw, unsafeChars) {
		return false
	}
	for _, scheme := range allowedSchemes {
		if strings.HasPrefix(raw, scheme) {
			u, err := url.Parse(raw)
			return err == nil && u.Host != ""
		}
	}
	return scpLikeRe.MatchString(raw)
}
