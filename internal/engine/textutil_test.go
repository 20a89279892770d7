package engine

import (
	"strings"
	"testing"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  hello   world  ", "hello world"},
		{"line\nbreaks\tand\ttabs", "line breaks and tabs"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeWhitespace(tt.in); got != tt.want {
			t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanHTML(t *testing.T) {
	if got := CleanHTML("<p>Hello <b>world</b></p>"); got != "Hello world" {
		t.Errorf("CleanHTML = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("ab", 3); got != "ab" {
		t.Errorf("Truncate short = %q", got)
	}
}

func TestPageText(t *testing.T) {
	html := []byte(`<html><head><style>.x{}</style></head><body>
		<h1>Careers</h1><p>Employment opportunities. Apply today.</p>
		<script>var x = "noise";</script>
	</body></html>`)

	text := strings.ToLower(PageText(html))
	for _, want := range []string{"careers", "employment opportunities", "apply"} {
		if !strings.Contains(text, want) {
			t.Errorf("PageText missing %q in %q", want, text)
		}
	}
}

func TestPageTitle(t *testing.T) {
	if got := PageTitle([]byte(`<html><head><title>  Town of Example  </title></head></html>`)); got != "Town of Example" {
		t.Errorf("PageTitle = %q", got)
	}
	og := []byte(`<html><head><meta property="og:title" content="Example Jobs"></head></html>`)
	if got := PageTitle(og); got != "Example Jobs" {
		t.Errorf("PageTitle og fallback = %q", got)
	}
	if got := PageTitle([]byte(`<html></html>`)); got != "" {
		t.Errorf("PageTitle empty = %q", got)
	}
}
