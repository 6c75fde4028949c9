package pattern

import "testing"

func TestMatchName(t *testing.T) {
	tests := []struct {
		pkgver, name string
		want         bool
	}{
		{"foo-1.0", "foo", true},
		{"foo-bar-1.2_1", "foo-bar", true},
		{"foo-1.0", "fo", false},
		{"foo-1.0", "foo-1.0", false},
		{"foo-1.0", "", false},
	}
	for _, tt := range tests {
		if got := MatchName(tt.pkgver, tt.name); got != tt.want {
			t.Errorf("MatchName(%q, %q) = %v, want %v", tt.pkgver, tt.name, got, tt.want)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pkgver, pat string
		want        bool
	}{
		{"foo-1.0", "foo>=1.0", true},
		{"foo-1.0", "foo>=1.1", false},
		{"foo-2.0", "foo>1.0", true},
		{"foo-1.0", "foo>1.0", false},
		{"foo-0.9", "foo<1.0", true},
		{"foo-1.0", "foo<1.0", false},
		{"foo-1.0", "foo<=1.0", true},
		{"foo-1.0", "foo==1.0", true},
		{"foo-1.0_1", "foo==1.0", false},
		{"foo-1.0", "bar==1.0", false},
		// Malformed patterns never match and never raise.
		{"foo-1.0", "foo", false},
		{"foo-1.0", "foo=1.0", false},
		{"foo-1.0", ">=1.0", false},
		{"foo-1.0", "foo>=", false},
		{"foo-1.0", "", false},
	}
	for _, tt := range tests {
		if got := Match(tt.pkgver, tt.pat); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pkgver, tt.pat, got, tt.want)
		}
	}
}

func TestIsPattern(t *testing.T) {
	if !IsPattern("foo>=1.0") {
		t.Error("IsPattern(\"foo>=1.0\") = false, want true")
	}
	if IsPattern("foo") {
		t.Error("IsPattern(\"foo\") = true, want false")
	}
}
