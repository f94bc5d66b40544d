package phone

import "testing"

func TestNormalizeDial(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"bare ten digit", "5551234567", "+15551234567"},
		{"eleven digit with country code", "15551234567", "+15551234567"},
		{"already international", "+15551234567", "+15551234567"},
		{"formatted with separators", "555-123-4567", "+15551234567"},
		{"parenthesized", "(555) 111-2222", "+15551112222"},
		{"international with separators", "+1 555 123 4567", "+15551234567"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"garbage passes through", "not-a-number", "not-a-number"},
		{"short number passes through", "12345", "12345"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeDial(tc.input)
			if got != tc.want {
				t.Errorf("NormalizeDial(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("+1 (555) 123-4567"); got != "15551234567" {
		t.Errorf("Digits = %q, want 15551234567", got)
	}
	if got := Digits("abc"); got != "" {
		t.Errorf("Digits = %q, want empty", got)
	}
}
