package errors

import (
	"strings"
	"testing"
)

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "checkout", false},
		{"valid with dash", "checkout-flow", false},
		{"valid with dot", "checkout.v2", false},
		{"valid with space", "Checkout Flow", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 200)), true},
		{"path traversal", "..", true},
		{"slash", "boards/checkout", true},
		{"backslash", "foo\\bar", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"hidden", ".checkout", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidProject) {
				t.Errorf("ValidateProjectName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidProject)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "login", false},
		{"dashes and dots", "pay-v2.step_1", false},
		{"unicode", "zahlung", false},

		{"empty", "", true},
		{"too long", strings.Repeat("n", MaxIDLen+1), true},
		{"arrow", "a->b", true},
		{"space", "log in", true},
		{"tab", "log\tin", true},
		{"newline", "login\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID("node", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidProject) {
				t.Errorf("ValidateID(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}

	if err := ValidateID("category", ""); err == nil || !strings.Contains(err.Error(), "category id") {
		t.Errorf("error should name the id kind, got %v", err)
	}
}
