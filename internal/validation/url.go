package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned for a base URL that cannot address a kilonova
// instance.
var ErrInvalidURL = errors.New("invalid URL")

const maxURLLength = 2048

// NormalizeBaseURL validates the API base URL and returns it as
// scheme://host[:port][/path] without a trailing slash. A missing scheme
// defaults to https.
func NormalizeBaseURL(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if len(input) > maxURLLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidURL, maxURLLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("%w: contains invalid characters", ErrInvalidURL)
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("%w: query and fragment are not allowed", ErrInvalidURL)
	}
	if strings.Contains(u.Path, "..") {
		return "", fmt.Errorf("%w: directory traversal in path", ErrInvalidURL)
	}
	if u.User != nil {
		return "", fmt.Errorf("%w: credentials are not allowed", ErrInvalidURL)
	}

	u.Path = strings.TrimRight(u.Path, "/")
	return u.String(), nil
}
