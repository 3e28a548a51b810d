package utils

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"nimbusdrive/apperrors"
)

const maxNameLength = 255

// ValidateResourceName checks a file or folder name. Folder names
// additionally reject path separators.
func ValidateResourceName(name string, isFolder bool) error {
	if name == "" {
		return apperrors.InvalidArgumentf("name cannot be empty")
	}

	if len(name) > maxNameLength {
		return apperrors.InvalidArgumentf("name too long (max %d characters)", maxNameLength)
	}

	if !utf8.ValidString(name) {
		return apperrors.InvalidArgumentf("name contains invalid UTF-8 characters")
	}

	invalidChars := []string{"<", ">", ":", "\"", "|", "?", "*", "\x00"}
	if isFolder {
		invalidChars = append(invalidChars, "/", "\\")
	}
	for _, char := range invalidChars {
		if strings.Contains(name, char) {
			return apperrors.InvalidArgumentf("name contains invalid character: %s", char)
		}
	}

	// Reserved device names break Windows clients syncing the tree.
	reservedNames := []string{"CON", "PRN", "AUX", "NUL", "COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9", "LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9"}
	nameWithoutExt := strings.TrimSuffix(name, filepath.Ext(name))
	for _, reserved := range reservedNames {
		if strings.EqualFold(nameWithoutExt, reserved) {
			return apperrors.InvalidArgumentf("name uses reserved name: %s", reserved)
		}
	}

	if isFolder && strings.HasSuffix(name, ".") {
		return apperrors.InvalidArgumentf("folder name cannot end with a dot")
	}

	return nil
}

// ValidateRelativePath checks an import-declared relative path: no parent
// references, no leading slash, every segment a valid folder name.
func ValidateRelativePath(path string) error {
	if path == "" {
		return nil
	}

	path = strings.ReplaceAll(path, "\\", "/")

	if strings.Contains(path, "..") {
		return apperrors.InvalidArgumentf("relative path cannot contain '..'")
	}

	if strings.HasPrefix(path, "/") {
		return apperrors.InvalidArgumentf("relative path cannot start with '/'")
	}

	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		// The final segment is a file name; slashes are already consumed.
		if err := ValidateResourceName(segment, i < len(segments)-1); err != nil {
			return apperrors.InvalidArgumentf("invalid path segment %q: %v", segment, err)
		}
	}

	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func ValidateEmail(email string) error {
	if email == "" {
		return apperrors.InvalidArgumentf("email cannot be empty")
	}

	if !emailRegex.MatchString(email) {
		return apperrors.InvalidArgumentf("invalid email format")
	}

	return nil
}
