package sound

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// Recorder writes the tone of the machine into a WAV stream. The time
// between two tone changes is rendered as sine samples or silence.
type Recorder struct {
	mu      sync.Mutex
	logger  *log.Logger
	encoder *wav.Encoder
	osc     *oscillator
	now     func() time.Time

	on      bool
	start   time.Time
	samples int
	err     error
	closed  bool
}

var _ chip8.AudioSink = (*Recorder)(nil)

// NewRecorder returns a recorder writing a 16 bit mono WAV stream to w.
// The now function is used as the clock, nil selects time.Now.
func NewRecorder(logger *log.Logger, w io.WriteSeeker, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{
		logger:  logger,
		encoder: wav.NewEncoder(w, format.SampleRate, bitDepth, format.NumChannels, 1),
		osc:     newOscillator(0.5),
		now:     now,
		start:   now(),
	}
}

// SetTone implements chip8.AudioSink.
func (r *Recorder) SetTone(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || on == r.on {
		return
	}
	r.flush()
	r.on = on
}

// Samples returns the number of samples written so far.
func (r *Recorder) Samples() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.samples
}

// Close renders the remaining span and finalizes the WAV header.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return r.err
	}
	r.flush()
	r.closed = true

	if err := r.encoder.Close(); err != nil && r.err == nil {
		r.err = fmt.Errorf("closing wav encoder: %w", err)
	}
	return r.err
}

// flush writes the samples up to the current time.
func (r *Recorder) flush() {
	if r.err != nil {
		return
	}

	elapsed := r.now().Sub(r.start)
	if elapsed <= 0 {
		return
	}
	rate := time.Duration(format.SampleRate)
	target := int((elapsed/time.Second)*rate + (elapsed%time.Second)*rate/time.Second)

	for count := target - r.samples; count > 0; {
		n := min(count, bufferSize)
		if err := r.write(n); err != nil {
			r.err = err
			r.logger.Error("Writing audio recording failed", log.Err(err))
			return
		}
		count -= n
	}
}

func (r *Recorder) write(n int) error {
	buf := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, n),
		SourceBitDepth: bitDepth,
	}

	if r.on {
		data, err := r.osc.next(n)
		if err != nil {
			return fmt.Errorf("generating tone: %w", err)
		}
		for i := range n {
			buf.Data[i] = int(data[i] * math.MaxInt16)
		}
	}

	if err := r.encoder.Write(buf); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	r.samples += n
	return nil
}
