package tui

import "fmt"

// wrapErr prefixes err with context. A nil err stays nil.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
