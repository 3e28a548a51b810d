package utils

import (
	"errors"
	"strings"
	"testing"

	"nimbusdrive/apperrors"
)

func TestValidateResourceName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		isFolder bool
		wantErr  bool
	}{
		{"simple file", "report.pdf", false, false},
		{"simple folder", "Documents", true, false},
		{"unicode name", "résumé.txt", false, false},
		{"empty", "", false, true},
		{"too long", strings.Repeat("a", 256), false, true},
		{"pipe character", "a|b.txt", false, true},
		{"question mark", "what?.txt", false, true},
		{"null byte", "a\x00b", false, true},
		{"slash in folder name", "a/b", true, true},
		{"backslash in folder name", "a\\b", true, true},
		{"reserved name", "CON", true, true},
		{"reserved name with extension", "nul.txt", false, true},
		{"folder ending with dot", "docs.", true, true},
		{"file ending with dot ok", "archive.", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResourceName(tt.input, tt.isFolder)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateResourceName(%q, %v) error = %v, wantErr %v", tt.input, tt.isFolder, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Errorf("validation error should wrap ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestValidateRelativePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty is root", "", false},
		{"single file", "notes.txt", false},
		{"nested", "projects/2026/plan.md", false},
		{"windows separators", "projects\\plan.md", false},
		{"parent reference", "../etc/passwd", true},
		{"embedded parent reference", "a/../b.txt", true},
		{"absolute", "/etc/passwd", true},
		{"bad segment", "a|b/file.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRelativePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRelativePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"alice@example.com", "bob.smith+tag@sub.example.co.uk"}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}

	invalid := []string{"", "plainstring", "@example.com", "alice@", "alice@localhost"}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) should fail", email)
		}
	}
}
