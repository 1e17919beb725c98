//go:build !statsview

package statsview

import "github.com/retroenv/retrogolib/log"

// Launch returns ErrUnavailable.
func Launch(_ *log.Logger, _ string) error {
	return ErrUnavailable
}

// Available returns whether the stats server can be launched.
func Available() bool {
	return false
}
