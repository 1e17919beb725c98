//go:build !statsview

package statsview

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestLaunchUnavailable(t *testing.T) {
	assert.False(t, Available())
	err := Launch(log.NewTestLogger(t), "localhost:0")
	assert.True(t, errors.Is(err, ErrUnavailable))
}
