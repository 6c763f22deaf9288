package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		regions []string
		want    string
	}{
		{
			name:  "valid E.164 format",
			input: "+919812345678",
			want:  "+919812345678",
		},
		{
			name:  "with spaces",
			input: "+91 98123 45678",
			want:  "+919812345678",
		},
		{
			name:  "with dashes",
			input: "+91-98123-45678",
			want:  "+919812345678",
		},
		{
			name:  "with parentheses",
			input: "+1 (212) 555-1234",
			want:  "+12125551234",
		},
		{
			name:  "national number uses first region",
			input: "98123 45678",
			want:  "+919812345678",
		},
		{
			name:    "national number with explicit region",
			input:   "(212) 555-1234",
			regions: []string{"us"},
			want:    "+12125551234",
		},
		{
			name:  "leading and trailing spaces",
			input: "  +919812345678  ",
			want:  "+919812345678",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "letters",
			input: "call me",
			want:  "",
		},
		{
			name:  "too short",
			input: "12",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input, tt.regions...)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	once := NormalizePhone("+1 212 555 1234")
	if twice := NormalizePhone(once); twice != once {
		t.Errorf("NormalizePhone not idempotent: %q -> %q", once, twice)
	}
}

func TestPhoneNormalizer_NormalizeOrKeep(t *testing.T) {
	n := NewPhoneNormalizer([]string{"IN"})

	if got := n.NormalizeOrKeep(" 98123 45678 "); got != "+919812345678" {
		t.Errorf("NormalizeOrKeep valid = %q", got)
	}
	if got := n.NormalizeOrKeep("  not a phone "); got != "not a phone" {
		t.Errorf("NormalizeOrKeep invalid = %q, want trimmed input", got)
	}
}
