package sanitizer

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Go interview prep  ", want: "Go interview prep"},
		{name: "multiple spaces between words", input: "Go    interview", want: "Go interview"},
		{name: "tabs and newlines", input: "Go\t\ninterview", want: "Go interview"},
		{name: "control characters dropped", input: "Go\x00 inter\x07view", want: "Go interview"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "preserve unicode", input: " Café résumé ", want: "Café résumé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeText(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeText(got); again != got {
				t.Errorf("NormalizeText not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeObjectID(t *testing.T) {
	if got := NormalizeObjectID(" 507F1F77BCF86CD799439011 "); got != "507f1f77bcf86cd799439011" {
		t.Errorf("NormalizeObjectID() = %q", got)
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct{ n, want int }{
		{n: -5, want: 1},
		{n: 0, want: 1},
		{n: 7, want: 7},
		{n: 99, want: 50},
	}
	for _, tt := range tests {
		if got := ClampInt(tt.n, 1, 50); got != tt.want {
			t.Errorf("ClampInt(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
