package errors

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxNameLen = 256
	maxIDLen   = 64
)

// ValidateProjectName checks a user-supplied project name. Names show up in
// listings and store keys, so they must be non-blank, at most 256 runes,
// and free of control characters, path separators and "..".
func ValidateProjectName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return New(ErrCodeInvalidName, "project name cannot be empty")
	case utf8.RuneCountInString(name) > maxNameLen:
		return New(ErrCodeInvalidName, "project name longer than %d characters", maxNameLen)
	case strings.ContainsFunc(name, unicode.IsControl):
		return New(ErrCodeInvalidName, "project name contains control characters")
	case strings.ContainsAny(name, `/\`):
		return New(ErrCodeInvalidName, "project name %q contains a path separator", name)
	case strings.Contains(name, ".."):
		return New(ErrCodeInvalidName, "project name %q contains %q", name, "..")
	}
	return nil
}

// ValidateProjectID checks that id looks like a UUID (hex digits and
// hyphens) before it becomes a file name or document key.
func ValidateProjectID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "project id cannot be empty")
	}
	if len(id) > maxIDLen {
		return New(ErrCodeInvalidInput, "project id longer than %d characters", maxIDLen)
	}
	if i := strings.IndexFunc(id, func(r rune) bool {
		return r != '-' && !unicode.Is(unicode.ASCII_Hex_Digit, r)
	}); i >= 0 {
		return New(ErrCodeInvalidInput, "project id contains invalid character %q", id[i])
	}
	return nil
}

// ValidateURL accepts only absolute http and https URLs.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL")
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https, got %q", u.Scheme)
	}
	return nil
}
