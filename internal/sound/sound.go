// Package sound provides audio sinks that turn the tone state of the
// machine into audible or recorded sound.
package sound

import (
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/generator"
	"github.com/retroenv/retrochip8/internal/chip8"
)

const (
	bufferSize int     = 512
	note       float64 = 440.0
	bitDepth           = 16
)

var format = audio.FormatMono44100

// oscillator generates the sine tone played while the sound timer is active.
type oscillator struct {
	osc    *generator.Osc
	buffer *audio.FloatBuffer
}

func newOscillator(amplitude float64) *oscillator {
	buffer := &audio.FloatBuffer{
		Data:   make([]float64, bufferSize),
		Format: format,
	}
	osc := generator.NewOsc(generator.WaveSine, note, buffer.Format.SampleRate)
	osc.Amplitude = amplitude
	return &oscillator{osc: osc, buffer: buffer}
}

// next returns the following n samples of the tone. The phase continues
// across calls. The returned slice is only valid until the next call.
func (o *oscillator) next(n int) ([]float64, error) {
	if n > cap(o.buffer.Data) {
		o.buffer.Data = make([]float64, n)
	}
	o.buffer.Data = o.buffer.Data[:n]
	if err := o.osc.Fill(o.buffer); err != nil {
		return nil, err
	}
	return o.buffer.Data, nil
}

// Multi forwards the tone state to all sinks.
type Multi struct {
	mu    sync.Mutex
	sinks []chip8.AudioSink
}

var _ chip8.AudioSink = (*Multi)(nil)

// NewMulti returns a sink that forwards to the given sinks. Nil sinks are skipped.
func NewMulti(sinks ...chip8.AudioSink) *Multi {
	m := &Multi{}
	for _, sink := range sinks {
		if sink != nil {
			m.sinks = append(m.sinks, sink)
		}
	}
	return m
}

// SetTone implements chip8.AudioSink.
func (m *Multi) SetTone(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sink := range m.sinks {
		sink.SetTone(on)
	}
}

// Len returns the number of forwarded sinks.
func (m *Multi) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sinks)
}
