package models

import "path"

// Properties is the internalized package properties metadata entry. Only the
// fields the unpack engine consults are declared; the document on disk may
// carry more.
type Properties struct {
	Pkgver    string   `json:"pkgver"`
	ConfFiles []string `json:"conf_files,omitempty"`
	Provides  []string `json:"provides,omitempty"`
}

// IsConfFile reports whether the given root-relative path is declared as a
// configuration file. Declarations may be shell-style patterns.
func (p *Properties) IsConfFile(relpath string) bool {
	if p == nil {
		return false
	}
	for _, pattern := range p.ConfFiles {
		// Declarations historically carry a leading slash.
		pattern = cleanRelative(pattern)
		if pattern == relpath {
			return true
		}
		if ok, err := path.Match(pattern, relpath); err == nil && ok {
			return true
		}
	}
	return false
}

func cleanRelative(s string) string {
	for len(s) > 0 && s[0] == '/' {
		s = s[1:]
	}
	if len(s) > 1 && s[0] == '.' && s[1] == '/' {
		s = s[2:]
	}
	return s
}
