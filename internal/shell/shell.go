// Package shell implements the line based debug command interpreter.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/session"
)

// historySize is the number of commands shown by the history command.
const historySize = 14

// ErrUnknownCommand is returned for input that matches no command.
var ErrUnknownCommand = errors.New("unknown command")

// Prompt is printed before every input line.
const Prompt = "> "

type command struct {
	usage   string
	summary string
	run     func(sh *Shell, args []string) error
}

// Shell executes debug commands against a session.
type Shell struct {
	session *session.Session

	mu      sync.Mutex // guards out
	out     io.Writer
	history []string

	viewStart uint16
	quit      bool
}

// New returns a shell writing its output to out.
func New(s *session.Session, out io.Writer) *Shell {
	return &Shell{
		session:   s,
		out:       out,
		viewStart: chip8.ProgramStart,
	}
}

// Run reads commands line by line until the input ends, the context is
// canceled or the quit command is entered.
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	sh.printf("%s", Prompt)

	for ctx.Err() == nil && scanner.Scan() {
		if err := sh.Execute(scanner.Text()); err != nil {
			sh.printf("Error: %s\n", err)
		}
		if sh.quit {
			return nil
		}
		sh.printf("%s", Prompt)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading shell input: %w", err)
	}
	return nil
}

// Execute runs a single command line.
func (sh *Shell) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	sh.history = append(sh.history, line)

	fields := strings.Fields(strings.ToLower(line))
	cmd, args, ok := lookup(fields)
	if !ok {
		return fmt.Errorf("%w '%s', type 'help' for a list of commands", ErrUnknownCommand, line)
	}
	return cmd.run(sh, args)
}

// ReportHalt prints the reason of a run loop halt. It can be used as halt
// handler of the session.
func (sh *Shell) ReportHalt(err error) {
	var hit *chip8.BreakpointHit
	if errors.As(err, &hit) {
		sh.printf("\nBreakpoint hit at address 0x%x\n%s", hit.Address, Prompt)
		return
	}
	sh.printf("\nExecution halted: %s\n%s", err, Prompt)
}

// Quit reports whether the quit command was executed.
func (sh *Shell) Quit() bool {
	return sh.quit
}

func (sh *Shell) printf(format string, args ...any) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, _ = fmt.Fprintf(sh.out, format, args...)
}

// lookup finds the command with the longest name matching the leading fields.
func lookup(fields []string) (command, []string, bool) {
	for n := min(len(fields), 3); n > 0; n-- {
		name := strings.Join(fields[:n], " ")
		if cmd, ok := commands[name]; ok {
			return cmd, fields[n:], true
		}
	}
	return command{}, nil, false
}
