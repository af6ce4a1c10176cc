package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath      = errors.New("path cannot be empty")
	ErrPathTooLong    = errors.New("path too long")
	ErrUnsafePath     = errors.New("unsafe path")
	ErrNotRegularFile = errors.New("not a regular file")
	ErrEmptyFile      = errors.New("file is empty")
	ErrFileTooLarge   = errors.New("file too large")
)

// DefaultMaxSourceSize is the largest source file accepted for submission.
const DefaultMaxSourceSize = 256 * 1024

// FilePathValidator validates and normalizes user supplied file paths.
type FilePathValidator struct {
	// AllowHomeExpansion permits a leading ~/.
	AllowHomeExpansion bool
	// AllowRelativePaths permits ./ and paths relative to the working directory.
	AllowRelativePaths bool
	// MaxPathLength is the maximum allowed path length
	MaxPathLength int
	// MaxFileSize bounds ValidateSourceFile; zero disables the check.
	MaxFileSize int64
}

// NewSourceFileValidator accepts the paths people type for a solution file.
func NewSourceFileValidator() *FilePathValidator {
	return &FilePathValidator{
		AllowHomeExpansion: true,
		AllowRelativePaths: true,
		MaxPathLength:      4096,
		MaxFileSize:        DefaultMaxSourceSize,
	}
}

// NewDataFileValidator is used for the database and log paths, which must
// not contain relative components.
func NewDataFileValidator() *FilePathValidator {
	return &FilePathValidator{
		AllowHomeExpansion: true,
		AllowRelativePaths: false,
		MaxPathLength:      4096,
	}
}

// ValidateAndSanitize validates path and returns it cleaned and absolute.
func (v *FilePathValidator) ValidateAndSanitize(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}
	if v.MaxPathLength > 0 && len(path) > v.MaxPathLength {
		return "", fmt.Errorf("%w (max %d characters)", ErrPathTooLong, v.MaxPathLength)
	}
	if err := v.validateCharacters(path); err != nil {
		return "", err
	}

	normalized, err := v.normalizePath(path)
	if err != nil {
		return "", err
	}
	return normalized, nil
}

// validateCharacters checks for dangerous characters in the path
func (v *FilePathValidator) validateCharacters(path string) error {
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: contains null bytes", ErrUnsafePath)
	}

	for _, char := range path {
		if char < 32 && char != '\t' {
			return fmt.Errorf("%w: contains control characters", ErrUnsafePath)
		}
	}

	if v.AllowRelativePaths {
		return nil
	}
	for _, seq := range []string{"../", "..\\", "./", "//", "\\\\"} {
		if strings.Contains(path, seq) {
			return fmt.Errorf("%w: contains %s", ErrUnsafePath, seq)
		}
	}
	return nil
}

// normalizePath expands the home directory and makes the path absolute.
func (v *FilePathValidator) normalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		if !v.AllowHomeExpansion || !strings.HasPrefix(path, "~/") {
			return "", fmt.Errorf("%w: tilde expansion not allowed", ErrUnsafePath)
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		if !v.AllowRelativePaths {
			return "", fmt.Errorf("%w: relative path %q", ErrUnsafePath, path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("cannot make path absolute: %w", err)
		}
		path = abs
	}

	return filepath.Clean(path), nil
}

// ValidateSourceFile checks that path names a readable, non-empty regular
// file within MaxFileSize and returns its absolute path.
func (v *FilePathValidator) ValidateSourceFile(path string) (string, error) {
	validated, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(validated)
	if err != nil {
		return "", fmt.Errorf("checking %s: %w", validated, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotRegularFile, validated)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyFile, validated)
	}
	if v.MaxFileSize > 0 && info.Size() > v.MaxFileSize {
		return "", fmt.Errorf("%w: %s is %d bytes (max %d)", ErrFileTooLarge, validated, info.Size(), v.MaxFileSize)
	}
	return validated, nil
}

// ValidateFile ensures a file path is safe for read/write operations. The
// file need not exist, but the path must not name a directory.
func (v *FilePathValidator) ValidateFile(path string) (string, error) {
	validated, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(validated); err == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", validated)
	}
	return validated, nil
}
