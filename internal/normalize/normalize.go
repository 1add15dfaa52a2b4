// Package normalize canonicalizes the raw strings the catalog returns so
// they can be compared against the caller's declarative model without
// false-positive diffs caused purely by how PostgreSQL chooses to print a
// value back.
//
// The exact default-value comparison semantics are not fully pinned down
// by the systems this package is modeled on: a server-rendered default
// like `'active'::text` and a caller-declared default of `active` denote
// the same value but are not byte-equal. This package resolves that by
// stripping a trailing type cast and surrounding quotes before comparing,
// then falling back to conservative string equality so a mismatch is
// never silently ignored.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
)

var caser = cases.Fold()

// Identifier case-folds a catalog or declared identifier (table, column,
// enum label) so lookups are not sensitive to case differences some
// PostgreSQL drivers introduce when round-tripping unquoted identifiers.
func Identifier(name string) string {
	return caser.String(strings.TrimSpace(name))
}

// Default canonicalizes a column default expression for comparison.
//
// PostgreSQL's catalog renders a text literal default as `'value'::type`
// even when the original declaration was the bare literal `value`. This
// strips a trailing `::typename` cast (typename may itself contain
// schema-qualification and array brackets) and a single layer of
// surrounding single quotes, so `'active'::text` and `active` both
// normalize to `active`, and `'123'::bigint` and `123` both normalize to
// `123`.
func Default(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if idx := strings.LastIndex(s, "::"); idx >= 0 {
		candidate := s[:idx]
		typePart := s[idx+2:]
		if isPlausibleTypeName(typePart) {
			s = candidate
		}
	}

	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
		// PostgreSQL doubles embedded quotes inside string literals.
		s = strings.ReplaceAll(s, "''", "'")
	}

	return s
}

func isPlausibleTypeName(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '[' || r == ']' || r == ' ':
		default:
			return false
		}
	}
	return true
}
