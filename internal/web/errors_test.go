package web

import (
	"strings"
	"testing"
)

func TestSanitizeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"plain message untouched",
			"session is not in parsed status",
			"session is not in parsed status",
		},
		{
			"connection string redacted",
			"connect: postgres://user:secret@db:5432/members failed",
			"connect: [redacted] failed",
		},
		{
			"dsn fragments redacted",
			"bad config: host=10.0.0.5 password=hunter2",
			"bad config: [redacted] [redacted]",
		},
		{
			"absolute path reduced to filename",
			"open /srv/app/uploads/abc123.csv: no such file",
			"open abc123.csv: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeErrorMessage(tt.in)
			if got != tt.want {
				t.Errorf("sanitizeErrorMessage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeErrorMessageNeverLeaksSecrets(t *testing.T) {
	msg := sanitizeErrorMessage("store parse result: postgresql://admin:topsecret@db/members timeout")
	if strings.Contains(msg, "topsecret") || strings.Contains(msg, "admin") {
		t.Errorf("sanitized message still carries credentials: %q", msg)
	}
}
