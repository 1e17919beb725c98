package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/session"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// testProgram loads 1 into V0 and loops at 0x202.
var testProgram = []byte{0x60, 0x01, 0x12, 0x02}

func writeROM(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loop.ch8")
	assert.NoError(t, os.WriteFile(path, testProgram, 0o600))
	return path
}

func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(BuildInfo{Version: "1.2.3", Commit: "abcdef"})

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(append([]string{"-q"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "retrochip8 "))
	assert.Contains(t, out, "1.2.3")
}

func TestMissingROMArgument(t *testing.T) {
	commands := []string{"run", "debug", "disasm"}
	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, "", name)
			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
			assert.Equal(t, "missing ROM file argument", usageErr.Error())

			var usage bytes.Buffer
			usageErr.ShowUsage(&usage)
			assert.Contains(t, usage.String(), name+" <rom.ch8>")
		})
	}

	_, err := execute(t, "", "disasm", "a.ch8", "b.ch8")
	assert.ErrorContains(t, err, "unexpected arguments after ROM file: b.ch8")
}

func TestDisasmCommand(t *testing.T) {
	path := writeROM(t)

	out, err := execute(t, "", "disasm", path)
	assert.NoError(t, err)
	assert.Contains(t, out, "; loop.ch8")
	assert.Contains(t, out, disasm.Format(0x6001))
	assert.Contains(t, out, "_label_202:")

	output := filepath.Join(t.TempDir(), "loop.asm")
	out, err = execute(t, "", "disasm", "-o", output, path)
	assert.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Contains(t, string(data), disasm.Format(0x1202))
}

func TestDisasmUnsupportedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.nes")
	assert.NoError(t, os.WriteFile(path, testProgram, 0o600))

	_, err := execute(t, "", "disasm", path)
	assert.True(t, errors.Is(err, loader.ErrUnsupportedFile))
}

func TestDebugCommand(t *testing.T) {
	path := writeROM(t)

	out, err := execute(t, "break set 0x202\nstep\nregs\nquit\n", "debug", path)
	assert.NoError(t, err)
	assert.Contains(t, out, "Loaded loop.ch8 (4 bytes)")
	assert.Contains(t, out, "Breakpoint set to address 0x202")
	assert.Contains(t, out, "V0=01")
}

func TestDebugUsesConfigFile(t *testing.T) {
	path := writeROM(t)
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(configFile, []byte("cycle: 250\nincrement: 5\n"), 0o600))

	out, err := execute(t, "status\nquit\n", "--config", configFile, "debug", path)
	assert.NoError(t, err)
	assert.Contains(t, out, "loop.ch8 | idle | 250 Hz")

	out, err = execute(t, "status\nquit\n", "--config", configFile, "--cycle", "700", "debug", path)
	assert.NoError(t, err)
	assert.Contains(t, out, "loop.ch8 | idle | 700 Hz")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.ErrorContains(t, err, "reading config file")
}

type statusRecorder struct {
	status string
}

func (r *statusRecorder) SetStatus(status string) {
	r.status = status
}

func TestControlHandler(t *testing.T) {
	s := session.New(log.NewTestLogger(t), session.Options{Cycle: 100, Increment: 10})
	t.Cleanup(s.Stop)
	assert.NoError(t, s.Load(loader.ROM{Name: "loop.ch8", Data: testProgram}))

	status := &statusRecorder{}
	control := controlHandler(s, status)

	tests := []struct {
		name     string
		key      rune
		contains string
	}{
		{"faster", keyFaster, "110 Hz"},
		{"slower", keySlower, "100 Hz"},
		{"step", keyStep, "PC 0x202"},
		{"reset", keyReset, "PC 0x200"},
		{"toggle on", keyToggle, "running"},
		{"toggle off", keyToggle, "idle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, control(tt.key))
			assert.Contains(t, status.status, tt.contains)
		})
	}

	status.status = ""
	assert.True(t, control('y'))
	assert.True(t, control(0x1b), "escape starts arrow key sequences and does not quit")
	assert.Empty(t, status.status)
	assert.False(t, control(keyQuit))
	assert.False(t, control(keyCtrlC))
}
