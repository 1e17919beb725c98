//go:build portaudio

package sound

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// Speaker plays the tone on the default audio output device.
type Speaker struct {
	logger *log.Logger
	tone   *toneSwitch
}

var _ chip8.AudioSink = (*Speaker)(nil)

// NewSpeaker initializes the audio output.
func NewSpeaker(logger *log.Logger) (*Speaker, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}
	s := &Speaker{logger: logger}
	s.tone = newToneSwitch(s.play)
	return s, nil
}

// SetTone implements chip8.AudioSink. It does not block on the audio device.
func (s *Speaker) SetTone(on bool) {
	s.tone.set(on)
}

// Close stops the tone, waits for the playback to end and releases the
// audio output.
func (s *Speaker) Close() error {
	if !s.tone.close() {
		return nil
	}
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("terminating portaudio: %w", err)
	}
	return nil
}

// play streams the tone until quit is closed or the device fails.
func (s *Speaker) play(quit <-chan struct{}) {
	osc := newOscillator(1)
	out := make([]float32, bufferSize)
	stream, err := portaudio.OpenDefaultStream(0, format.NumChannels, float64(format.SampleRate), len(out), &out)
	if err != nil {
		s.logger.Error("Opening audio stream failed", log.Err(err))
		return
	}
	defer func() { _ = stream.Close() }()

	if err := stream.Start(); err != nil {
		s.logger.Error("Starting audio stream failed", log.Err(err))
		return
	}
	defer func() { _ = stream.Stop() }()

	for {
		select {
		case <-quit:
			return
		default:
		}

		data, err := osc.next(len(out))
		if err != nil {
			s.logger.Error("Filling audio buffer failed", log.Err(err))
			return
		}
		for i := range data {
			out[i] = float32(data[i])
		}
		if err := stream.Write(); err != nil {
			s.logger.Error("Writing to audio stream failed", log.Err(err))
			return
		}
	}
}
