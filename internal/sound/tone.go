package sound

import "sync"

// toneSwitch runs a player goroutine while the tone is on. Turning the tone
// off only signals the player, it never waits for it, so callers holding the
// machine lock are not blocked by a slow audio device.
type toneSwitch struct {
	// play produces the tone until quit is closed. Returning early marks
	// the tone as off so the next tone change starts a new player.
	play func(quit <-chan struct{})

	mu     sync.Mutex
	wg     sync.WaitGroup
	quit   chan struct{} // open while a player is active
	closed bool
}

func newToneSwitch(play func(quit <-chan struct{})) *toneSwitch {
	return &toneSwitch{play: play}
}

func (t *toneSwitch) set(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	if on {
		t.start()
	} else {
		t.stop()
	}
}

// playing returns whether a player is active.
func (t *toneSwitch) playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.quit != nil
}

// close stops the active player and waits for all players to return. It
// returns false if the switch was already closed.
func (t *toneSwitch) close() bool {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return false
	}
	t.closed = true
	t.stop()
	t.mu.Unlock()

	t.wg.Wait()
	return true
}

func (t *toneSwitch) start() {
	if t.quit != nil {
		return
	}
	quit := make(chan struct{})
	t.quit = quit

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.play(quit)
		t.finished(quit)
	}()
}

func (t *toneSwitch) stop() {
	if t.quit == nil {
		return
	}
	close(t.quit)
	t.quit = nil
}

// finished clears the player marker of a player that returned on its own.
func (t *toneSwitch) finished(quit chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.quit == quit {
		t.quit = nil
	}
}
