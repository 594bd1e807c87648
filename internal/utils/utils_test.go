package utils_test

import (
	"testing"

	"github.com/conformeo/sitescan/internal/utils"
)

func TestCanonicalTarget(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTP://Example.COM/About", "http://example.com/About"},
		{"strips default http port", "http://example.com:80/a", "http://example.com/a"},
		{"strips default https port", "https://example.com:443/", "https://example.com/"},
		{"keeps explicit port", "http://example.com:8080/a", "http://example.com:8080/a"},
		{"drops query and fragment", "https://example.com/a?utm_source=x#top", "https://example.com/a"},
		{"trims trailing slash", "https://example.com/a/b/", "https://example.com/a/b"},
		{"keeps root slash", "https://example.com/", "https://example.com/"},
		{"punycodes idn host", "https://bücher.example/a", "https://xn--bcher-kva.example/a"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := utils.CanonicalTarget(tc.in)
			if err != nil {
				t.Fatalf("CanonicalTarget(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("CanonicalTarget(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCanonicalTarget_SameKeyForEquivalentURLs(t *testing.T) {
	t.Parallel()

	a, err := utils.CanonicalTarget("HTTP://Example.com:80/a/?x=1")
	if err != nil {
		t.Fatalf("CanonicalTarget: %v", err)
	}
	b, err := utils.CanonicalTarget("http://example.com/a")
	if err != nil {
		t.Fatalf("CanonicalTarget: %v", err)
	}
	if a != b {
		t.Errorf("equivalent URLs produced different keys: %q vs %q", a, b)
	}
}

func TestCanonicalTarget_Errors(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "/relative/path", "not a url at all\x7f://"} {
		if _, err := utils.CanonicalTarget(in); err == nil {
			t.Errorf("CanonicalTarget(%q): expected error, got nil", in)
		}
	}
}
