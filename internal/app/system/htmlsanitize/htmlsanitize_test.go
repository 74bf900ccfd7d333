package htmlsanitize_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/dalemusser/retreatreg/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Jane Wanjiru", "Jane Wanjiru"},
		{"trims", "  Limuru  ", "Limuru"},
		{"strips tags", "<b>Jane</b> Wanjiru", "Jane Wanjiru"},
		{"drops script body", "<script>alert('x')</script>Limuru", "Limuru"},
		{"keeps ampersand", "Tom & Jerry", "Tom & Jerry"},
		{"keeps apostrophe", "O'Brien", "O'Brien"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_SafeHTML(t *testing.T) {
	input := "<p><strong>Bold</strong> and <em>italic</em></p>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected safe HTML preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	input := "<p>Hello</p><script>alert('xss')</script>"
	if got := htmlsanitize.Sanitize(input); got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="javascript:alert('xss')">Click</a>`)
	if strings.Contains(got, "javascript:") {
		t.Errorf("expected javascript: href removed, got %q", got)
	}
}

func TestSanitizeToHTML(t *testing.T) {
	if got := htmlsanitize.SanitizeToHTML("<p>Hello</p><iframe src=\"https://evil.example\"></iframe>"); got != template.HTML("<p>Hello</p>") {
		t.Errorf("got %q", got)
	}
	if got := htmlsanitize.SanitizeToHTML(""); got != "" {
		t.Errorf("expected empty template.HTML, got %q", got)
	}
}
