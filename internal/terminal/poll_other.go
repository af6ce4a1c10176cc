//go:build !unix

package terminal

import "time"

// pollReadable cannot peek at console input here; callers treat the input as
// idle.
func pollReadable(int, time.Duration) (bool, error) {
	return false, nil
}
