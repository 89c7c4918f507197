// Package slug derives URL slugs from Danish display names.
package slug

import "strings"

var danishReplacer = strings.NewReplacer("æ", "ae", "ø", "oe", "å", "aa")

// Derive lowercases the name, transliterates æ/ø/å, collapses every run of
// characters outside [a-z0-9] to a single hyphen and trims edge hyphens.
// Slugs are chosen at creation time and immutable afterwards.
func Derive(name string) string {
	lowered := danishReplacer.Replace(strings.ToLower(name))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
