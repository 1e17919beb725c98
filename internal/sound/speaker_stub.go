//go:build !portaudio

package sound

import (
	"errors"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// ErrSpeakerUnavailable is returned when the binary was built without the
// portaudio build tag.
var ErrSpeakerUnavailable = errors.New("speaker output not available, build with -tags portaudio")

// Speaker is not available without portaudio support.
type Speaker struct{}

var _ chip8.AudioSink = (*Speaker)(nil)

// NewSpeaker always fails without portaudio support.
func NewSpeaker(_ *log.Logger) (*Speaker, error) {
	return nil, ErrSpeakerUnavailable
}

// SetTone implements chip8.AudioSink.
func (s *Speaker) SetTone(bool) {}

// Close implements io.Closer.
func (s *Speaker) Close() error {
	return nil
}
