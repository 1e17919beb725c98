package sound

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

func waitUntil(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestToneSwitchOffDoesNotWaitForPlayer(t *testing.T) {
	release := make(chan struct{})
	var started, returned atomic.Int32
	tone := newToneSwitch(func(quit <-chan struct{}) {
		started.Add(1)
		<-release // a device write that does not return
		<-quit
		returned.Add(1)
	})

	tone.set(true)
	tone.set(true)
	waitUntil(t, func() bool { return started.Load() == 1 })

	done := make(chan struct{})
	go func() {
		tone.set(false)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("turning the tone off blocked on the player")
	}
	assert.False(t, tone.playing())
	assert.Equal(t, int32(0), returned.Load())

	closed := make(chan bool)
	go func() { closed <- tone.close() }()
	select {
	case <-closed:
		t.Fatal("close returned before the player ended")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	assert.True(t, <-closed)
	assert.Equal(t, int32(1), returned.Load())
	assert.False(t, tone.close())
}

func TestToneSwitchRestartsAfterFailedPlayer(t *testing.T) {
	var started atomic.Int32
	tone := newToneSwitch(func(<-chan struct{}) {
		started.Add(1) // opening the device fails
	})

	tone.set(true)
	waitUntil(t, func() bool { return started.Load() == 1 && !tone.playing() })

	tone.set(true)
	waitUntil(t, func() bool { return started.Load() == 2 })
	assert.True(t, tone.close())
}

func TestToneSwitchIgnoresChangesAfterClose(t *testing.T) {
	var started atomic.Int32
	tone := newToneSwitch(func(quit <-chan struct{}) {
		started.Add(1)
		<-quit
	})
	assert.True(t, tone.close())

	tone.set(true)
	assert.False(t, tone.playing())
	assert.Equal(t, int32(0), started.Load())
}
