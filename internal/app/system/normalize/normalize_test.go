package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Email(tt.input); got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"admin@acme.com", "acme.com"},
		{"Admin@Acme.COM", "acme.com"},
		{"no-at-sign", ""},
		{"trailing@", ""},
		{"a@b@acme.com", "acme.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := EmailDomain(tt.input); got != tt.want {
				t.Errorf("EmailDomain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	if got := Name("  Acme   Chamber  "); got != "Acme Chamber" {
		t.Errorf("Name = %q, want %q", got, "Acme Chamber")
	}
}
