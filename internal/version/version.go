// Package version implements the package version grammar: dot-separated
// components compared numerically or lexically, pre-release modifiers
// (alpha, beta, pre, rc) ranking below a bare release, and a numeric "_N"
// revision suffix breaking ties between equal base versions.
package version

import (
	"strings"
)

// Compare returns -1, 0 or 1 ordering version a against version b. The
// ordering is total: reflexive, antisymmetric and transitive for any pair of
// version strings.
func Compare(a, b string) int {
	abase, arev := splitRevision(a)
	bbase, brev := splitRevision(b)

	if c := compareBase(abase, bbase); c != 0 {
		return c
	}
	switch {
	case arev < brev:
		return -1
	case arev > brev:
		return 1
	}
	return 0
}

// Less reports whether version a orders strictly before version b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// PkgName returns the name component of a "name-version" pkgver identity, or
// "" when the string has no version component. The version component is the
// part after the last dash that starts with a digit.
func PkgName(pkgver string) string {
	i := strings.LastIndex(pkgver, "-")
	if i <= 0 || i == len(pkgver)-1 {
		return ""
	}
	if !isDigit(pkgver[i+1]) {
		return ""
	}
	return pkgver[:i]
}

// PkgVersion returns the version component of a "name-version" pkgver
// identity, or "" when the string has no version component.
func PkgVersion(pkgver string) string {
	i := strings.LastIndex(pkgver, "-")
	if i <= 0 || i == len(pkgver)-1 {
		return ""
	}
	if !isDigit(pkgver[i+1]) {
		return ""
	}
	return pkgver[i+1:]
}

// tokKind orders mixed token types: a pre-release modifier sorts below the
// end of the string, which sorts below alphabetic runs, which sort below
// numeric runs.
type tokKind int

const (
	tokModifier tokKind = iota
	tokEnd
	tokAlpha
	tokNumber
)

type token struct {
	kind tokKind
	num  int64  // tokNumber value, or modifier rank for tokModifier
	str  string // tokAlpha value
}

// Pre-release modifier words and their relative ranks.
var modifiers = []struct {
	word string
	rank int64
}{
	{"alpha", -3},
	{"beta", -2},
	{"pre", -1},
	{"rc", -1},
}

func splitRevision(v string) (string, int64) {
	i := strings.LastIndex(v, "_")
	if i < 0 || i == len(v)-1 {
		return v, 0
	}
	var rev int64
	for j := i + 1; j < len(v); j++ {
		if !isDigit(v[j]) {
			// Not a revision suffix, leave it to the base comparison.
			return v, 0
		}
		rev = rev*10 + int64(v[j]-'0')
	}
	return v[:i], rev
}

func compareBase(a, b string) int {
	for a != "" || b != "" {
		var at, bt token
		at, a = nextToken(a)
		bt, b = nextToken(b)

		if at.kind != bt.kind {
			if at.kind < bt.kind {
				return -1
			}
			return 1
		}
		switch at.kind {
		case tokNumber, tokModifier:
			if at.num != bt.num {
				if at.num < bt.num {
					return -1
				}
				return 1
			}
		case tokAlpha:
			if c := strings.Compare(at.str, bt.str); c != 0 {
				return c
			}
		}
	}
	return 0
}

func nextToken(s string) (token, string) {
	// Separators and unrecognized bytes carry no ordering weight of
	// their own.
	for s != "" && !isDigit(s[0]) && !isAlpha(s[0]) {
		s = s[1:]
	}
	if s == "" {
		return token{kind: tokEnd}, ""
	}
	if isDigit(s[0]) {
		var n int64
		i := 0
		for i < len(s) && isDigit(s[i]) {
			n = n*10 + int64(s[i]-'0')
			i++
		}
		return token{kind: tokNumber, num: n}, s[i:]
	}
	i := 0
	for i < len(s) && isAlpha(s[i]) {
		i++
	}
	word := strings.ToLower(s[:i])
	for _, m := range modifiers {
		if word == m.word {
			return token{kind: tokModifier, num: m.rank}, s[i:]
		}
	}
	return token{kind: tokAlpha, str: word}, s[i:]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
