package idgen

import (
	"strings"
	"testing"
)

func TestGenerateSecureID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		length     int
		wantPrefix string
	}{
		{name: "conversation ID", prefix: "conv", length: 16, wantPrefix: "conv_"},
		{name: "message ID", prefix: "msg", length: 16, wantPrefix: "msg_"},
		{name: "short ID", prefix: "test", length: 8, wantPrefix: "test_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSecureID(tt.prefix, tt.length)
			if err != nil {
				t.Fatalf("GenerateSecureID() error = %v", err)
			}
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("GenerateSecureID() = %v, want prefix %v", got, tt.wantPrefix)
			}
			if want := len(tt.prefix) + 1 + tt.length; len(got) != want {
				t.Errorf("GenerateSecureID() length = %v, want %v", len(got), want)
			}
			if !ValidateIDFormat(got, tt.prefix, tt.length) {
				t.Errorf("ValidateIDFormat(%q) = false, want true", got)
			}
		})
	}
}

func TestGenerateSecureID_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 500)
	for i := 0; i < 500; i++ {
		id, err := GenerateSecureID("conv", 16)
		if err != nil {
			t.Fatalf("GenerateSecureID() error = %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestValidateIDFormat(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"conv_0123456789abcdef", true},
		{"conv_0123456789ABCDEF", false},
		{"conv_0123456789abcde", false},
		{"msg_0123456789abcdef", false},
		{"conv-0123456789abcdef", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidateIDFormat(tt.id, "conv", 16); got != tt.want {
			t.Errorf("ValidateIDFormat(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
