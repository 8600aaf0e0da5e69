// Package deck reads and writes pw.x input decks: namelist value
// extraction for run preparation, and deck generation from a crystal
// structure.
package deck

import "regexp"

// Compiled declaration patterns for the two directory keys pw.x decks
// carry. Values may be quoted and are terminated by a comma, quote, or
// whitespace. Keys are case-insensitive per Fortran namelist rules.
var (
	outdirPattern    = keyPattern("outdir")
	pseudoDirPattern = keyPattern("pseudo_dir")
)

func keyPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + key + `\s*=\s*['"]?([^,'"\s]+)`)
}

// NamelistValue extracts the value of a key = value declaration from
// deck text, or "" when the key is absent.
func NamelistValue(text, key string) string {
	return firstGroup(keyPattern(key), text)
}

func firstGroup(pat *regexp.Regexp, text string) string {
	m := pat.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
