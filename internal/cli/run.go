package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/session"
	"github.com/retroenv/retrochip8/internal/sound"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
)

// Control keys of the run command. They must not collide with the keymap.
const (
	keyToggle = ' '
	keyFaster = '+'
	keySlower = '-'
	keyStep   = 'n'
	keyReset  = 'l'
	keyQuit   = 0x11 // ctrl+q
	keyCtrlC  = 0x03
)

func (a *app) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <rom.ch8>",
		Short: "run a ROM in the terminal",
		Long: "Run a ROM in the terminal. Space pauses and resumes, + and - change the speed,\n" +
			"n steps a paused machine, l reloads the ROM and ctrl+q or ctrl+c quits.",
		Args: romArgument,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd, args[0])
		},
	}
}

func (a *app) run(ctx context.Context, cmd *cobra.Command, path string) error {
	keys, err := keymap.Parse(a.settings.Keymap)
	if err != nil {
		return fmt.Errorf("parsing keymap: %w", err)
	}

	audio, closeAudio, err := a.audioSink()
	if err != nil {
		return err
	}
	defer closeAudio()

	screen := terminal.NewScreen()
	var s *session.Session
	s = session.New(a.logger, session.Options{
		Display:   screen,
		Audio:     audio,
		Cycle:     a.settings.Cycle,
		Increment: a.settings.Increment,
		OnHalt: func(error) {
			screen.SetStatus(s.Status())
		},
	})
	defer s.Stop()

	if err := s.LoadFile(path); err != nil {
		return err
	}

	tty, err := terminal.OpenTTY()
	if err != nil {
		return err
	}
	defer func() {
		if err := tty.Close(); err != nil {
			a.logger.Error("Closing terminal failed", log.Err(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	screenDone := make(chan error, 1)
	go func() {
		screenDone <- screen.Run(ctx, cmd.OutOrStdout(), terminal.RefreshPeriod)
	}()

	if err := s.Play(); err != nil {
		return err
	}
	screen.SetStatus(s.Status())

	keyboard := terminal.NewKeyboard(s.VM(), keys, controlHandler(s, screen))
	keyErr := keyboard.Run(ctx, tty)
	cancel()

	if err := <-screenDone; err != nil {
		return err
	}
	return keyErr
}

// statusSink receives the session status after control actions.
type statusSink interface {
	SetStatus(status string)
}

// controlHandler returns the handler for runes that are not mapped to the
// keypad. It returns false for the quit keys.
func controlHandler(s *session.Session, status statusSink) func(r rune) bool {
	return func(r rune) bool {
		var err error
		switch r {
		case keyQuit, keyCtrlC:
			return false
		case keyToggle:
			_, err = s.Toggle()
		case keyFaster:
			s.CycleUp()
		case keySlower:
			s.CycleDown()
		case keyStep:
			_, err = s.Step()
			if errors.Is(err, chip8.ErrRunning) || chip8.IsBreakpoint(err) {
				err = nil
			}
		case keyReset:
			err = s.Reload()
		default:
			return true
		}

		text := s.Status()
		if err != nil {
			text += " | " + err.Error()
		}
		status.SetStatus(text)
		return true
	}
}

// audioSink creates the speaker and the optional WAV recorder. The returned
// function closes all created outputs.
func (a *app) audioSink() (chip8.AudioSink, func(), error) {
	var closers []func() error

	var speaker chip8.AudioSink
	sp, err := sound.NewSpeaker(a.logger)
	switch {
	case errors.Is(err, sound.ErrSpeakerUnavailable):
		a.logger.Debug("Speaker output disabled", log.Err(err))
	case err != nil:
		a.logger.Warn("Opening speaker failed", log.Err(err))
	default:
		speaker = sp
		closers = append(closers, sp.Close)
	}

	var recorder chip8.AudioSink
	if a.settings.WAV != "" {
		file, err := os.Create(a.settings.WAV)
		if err != nil {
			return nil, nil, fmt.Errorf("creating WAV file: %w", err)
		}
		rec := sound.NewRecorder(a.logger, file, nil)
		recorder = rec
		closers = append(closers, rec.Close, file.Close)
		a.logger.Info("Recording sound", log.String("file", a.settings.WAV))
	}

	closeAll := func() {
		for _, closer := range closers {
			if err := closer(); err != nil {
				a.logger.Error("Closing sound output failed", log.Err(err))
			}
		}
	}
	return sound.NewMulti(speaker, recorder), closeAll, nil
}
