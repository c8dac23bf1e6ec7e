package errors

import (
	"strings"
	"testing"
)

func TestValidateDocumentName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Valid", "cluster-topology", false},
		{"ValidWithSpaces", "prod cluster v2", false},
		{"Empty", "", true},
		{"OnlyWhitespace", "   ", true},
		{"TooLong", strings.Repeat("a", 201), true},
		{"PathTraversal", "../etc/passwd", true},
		{"Slash", "a/b", true},
		{"Backslash", "a\\b", true},
		{"ControlChar", "bad\x01name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("error code = %q, want INVALID_NAME", GetCode(err))
			}
		})
	}
}

func TestValidateDocumentID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"UUID", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"Empty", "", true},
		{"TooLong", strings.Repeat("a", 65), true},
		{"Injection", "abc'; drop", true},
		{"Path", "../x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
