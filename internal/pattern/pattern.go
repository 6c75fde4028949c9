// Package pattern matches package names and "name<op>version" patterns
// against pkgver identities.
package pattern

import (
	"strings"

	"github.com/ralt/xpkg/internal/version"
)

// Comparison operators accepted in a pattern. Two-byte operators must be
// probed before their one-byte prefixes.
var operators = []string{"<=", ">=", "==", "<", ">"}

// IsPattern reports whether the target string carries a comparison operator,
// i.e. should be matched with Match rather than by plain name.
func IsPattern(target string) bool {
	return strings.ContainsAny(target, "<>=")
}

// MatchName reports whether the candidate pkgver's name component equals
// name exactly.
func MatchName(pkgver, name string) bool {
	return name != "" && version.PkgName(pkgver) == name
}

// Match reports whether the candidate pkgver satisfies a "name<op>version"
// pattern. Malformed patterns never match; they do not produce an error.
func Match(pkgver, pat string) bool {
	name, op, wanted := split(pat)
	if op == "" || name == "" || wanted == "" {
		return false
	}
	if version.PkgName(pkgver) != name {
		return false
	}
	c := version.Compare(version.PkgVersion(pkgver), wanted)
	switch op {
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	case ">=":
		return c >= 0
	case "==":
		return c == 0
	}
	return false
}

// Name returns the name component of a "name<op>version" pattern, or the
// empty string when pat carries no operator.
func Name(pat string) string {
	name, _, _ := split(pat)
	return name
}

func split(pat string) (name, op, wanted string) {
	idx := -1
	for _, candidate := range operators {
		if i := strings.Index(pat, candidate); i >= 0 && (idx < 0 || i < idx) {
			idx, op = i, candidate
		}
	}
	if idx < 0 {
		return "", "", ""
	}
	return pat[:idx], op, pat[idx+len(op):]
}
