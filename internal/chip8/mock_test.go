package chip8

import (
	"sync"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/log"
)

type pixelChange struct {
	x, y int
	on   bool
}

type mockDisplay struct {
	mu     sync.Mutex
	pixels []pixelChange
	clears int
}

func (m *mockDisplay) SetPixel(x, y int, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pixels = append(m.pixels, pixelChange{x: x, y: y, on: on})
}

func (m *mockDisplay) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
}

type mockAudio struct {
	mu    sync.Mutex
	tones []bool
}

func (m *mockAudio) SetTone(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tones = append(m.tones, on)
}

func (m *mockAudio) last() (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tones) == 0 {
		return false, false
	}
	return m.tones[len(m.tones)-1], true
}

// fakeTicker delivers ticks only when the test sends them.
type fakeTicker struct {
	period  time.Duration
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.once.Do(func() { close(f.stopped) })
}

// tick delivers a single tick and reports whether the activity received it.
func (f *fakeTicker) tick(t *testing.T) bool {
	t.Helper()
	select {
	case <-f.stopped:
		return false
	default:
	}

	select {
	case f.ch <- time.Time{}:
		return true
	case <-f.stopped:
		return false
	case <-time.After(time.Second):
		t.Fatalf("tick with period %s was not received", f.period)
		return false
	}
}

type fakeTickers struct {
	mu      sync.Mutex
	created []*fakeTicker
}

func (f *fakeTickers) factory(period time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticker := &fakeTicker{
		period:  period,
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}
	f.created = append(f.created, ticker)
	return ticker
}

// latest returns the most recently created ticker that is a timer ticker or
// a cycle ticker.
func (f *fakeTickers) latest(t *testing.T, timer bool) *fakeTicker {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.created) - 1; i >= 0; i-- {
		if (f.created[i].period == TimerPeriod) == timer {
			return f.created[i]
		}
	}
	t.Fatal("no matching ticker created")
	return nil
}

func (f *fakeTickers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func newTestVM(t *testing.T, options ...Option) *VM {
	t.Helper()
	options = append([]Option{WithLogger(log.NewTestLogger(t))}, options...)
	vm := New(options...)
	t.Cleanup(vm.Stop)
	return vm
}

// newTestVMWithROM creates a machine with the given instruction words loaded.
func newTestVMWithROM(t *testing.T, words ...uint16) *VM {
	t.Helper()
	vm := newTestVM(t)
	loadWords(t, vm, words...)
	return vm
}

func loadWords(t *testing.T, vm *VM, words ...uint16) {
	t.Helper()
	rom := make([]byte, 0, len(words)*2)
	for _, w := range words {
		rom = append(rom, byte(w>>8), byte(w))
	}
	if err := vm.LoadROM(rom); err != nil {
		t.Fatalf("loading ROM: %v", err)
	}
}

// steps executes n cycles and fails the test on any error.
func steps(t *testing.T, vm *VM, n int) {
	t.Helper()
	for range n {
		if _, err := vm.Step(); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}
}

// waitFor polls the condition until it is true or the deadline expires.
func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
