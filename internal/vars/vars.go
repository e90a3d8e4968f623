// Package vars detects and substitutes {{name}} placeholders in message
// bodies. The authoritative variable set for any content is always re-derived
// by scanning the content itself; persisted variable records only cache
// default values.
package vars

import (
	"regexp"
	"strings"
)

// pattern matches a single {{identifier}} placeholder.
var pattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Parse returns the unique variable names appearing in content, in
// first-occurrence order.
func Parse(content string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range pattern.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Resolve replaces every {{name}} occurrence whose name has a non-empty value
// in values. Placeholders without a value are left literal. Substitution is a
// single pass: a placeholder appearing inside a substituted value is not
// resolved again.
func Resolve(content string, values map[string]string) string {
	return pattern.ReplaceAllStringFunc(content, func(tok string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(tok, "{{"), "}}")
		if v, ok := values[name]; ok && v != "" {
			return v
		}
		return tok
	})
}

// Sync rebuilds a tab's value map to exactly the variable set detected in
// content: values for surviving names are preserved, values for vanished
// names are dropped, and newly appeared names default to the empty string.
// The second return reports whether the map changed.
func Sync(content string, current map[string]string) (map[string]string, bool) {
	detected := Parse(content)

	updated := make(map[string]string, len(detected))
	for _, name := range detected {
		updated[name] = current[name]
	}

	if len(detected) == len(current) {
		changed := false
		for _, name := range detected {
			if _, ok := current[name]; !ok {
				changed = true
				break
			}
		}
		if !changed {
			return updated, false
		}
	}
	return updated, true
}

// HasUnresolved reports whether resolved text still contains a placeholder.
// This is a literal re-scan, not a set-difference check: a placeholder that
// reappears from a substituted value counts as unresolved.
func HasUnresolved(resolved string) bool {
	return pattern.MatchString(resolved)
}
