// Package variables implements the [[NAME]] / [[NAME|default]] placeholder
// syntax used in blueprint content. The syntax is a de facto wire format
// shared by blueprint authors and consumers and must not change shape.
package variables

import (
	"regexp"
	"strings"
)

// placeholderRe matches [[NAME]] and [[NAME|default]]. Names start with a
// letter and are matched case-insensitively; the default segment may be
// any text up to the closing brackets.
var placeholderRe = regexp.MustCompile(`\[\[([A-Za-z][A-Za-z0-9_]*)(?:\|([^\]|]*))?\]\]`)

// keyRe validates canonical variable keys as stored per user.
var keyRe = regexp.MustCompile(`^[A-Z0-9_]+$`)

// escapeMarker temporarily replaces the "[[[[" escape sequence so the
// placeholder regexp never sees it. U+FFF9 is an interlinear annotation
// anchor, which cannot appear in sane template content.
const escapeMarker = "￹"

// Canonical normalizes a variable name to its canonical uppercase form so
// [[myVar]] and [[MYVAR]] collide.
func Canonical(name string) string {
	return strings.ToUpper(name)
}

// ValidKey reports whether key is a valid canonical variable key.
func ValidKey(key string) bool {
	return keyRe.MatchString(key)
}

// Extract returns the canonical names of all placeholders in text,
// de-duplicated and in first-seen order.
func Extract(text string) []string {
	masked := strings.ReplaceAll(text, "[[[[", escapeMarker)

	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(masked, -1) {
		name := Canonical(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Resolve substitutes every placeholder in text. Per occurrence the value
// is chosen by priority: saved user value, then author-supplied default,
// then the literal |default embedded in the placeholder. A placeholder
// with no value from any source is left in place as [[NAME]] so the gap
// stays visible instead of silently collapsing to an empty string.
//
// The escape sequence [[[[ renders as a literal [[.
func Resolve(text string, saved, authorDefaults map[string]string) string {
	masked := strings.ReplaceAll(text, "[[[[", escapeMarker)

	resolved := placeholderRe.ReplaceAllStringFunc(masked, func(match string) string {
		m := placeholderRe.FindStringSubmatch(match)
		name := Canonical(m[1])

		if v, ok := lookup(saved, name); ok {
			return v
		}
		if v, ok := lookup(authorDefaults, name); ok {
			return v
		}
		if strings.Contains(match, "|") {
			return m[2]
		}
		return "[[" + name + "]]"
	})

	return strings.ReplaceAll(resolved, escapeMarker, "[[")
}

// lookup finds name in values regardless of the casing values was keyed
// with.
func lookup(values map[string]string, name string) (string, bool) {
	if values == nil {
		return "", false
	}
	if v, ok := values[name]; ok {
		return v, true
	}
	for k, v := range values {
		if Canonical(k) == name {
			return v, true
		}
	}
	return "", false
}
