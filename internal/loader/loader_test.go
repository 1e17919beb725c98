package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestLoad(t *testing.T) {
	t.Run("load CHIP-8 file", func(t *testing.T) {
		tmpFile := createTempFile(t, "game.ch8", []byte{0x12, 0x34, 0x56, 0x78})

		loader := New(log.NewTestLogger(t))
		rom, err := loader.Load(tmpFile)
		assert.NoError(t, err)
		assert.Equal(t, "game.ch8", rom.Name)
		assert.Equal(t, 4, rom.Size())
		assert.Equal(t, arch.CHIP8System, rom.System)
		assert.Equal(t, byte(0x12), rom.Data[0])
	})

	t.Run("upper case extension", func(t *testing.T) {
		tmpFile := createTempFile(t, "GAME.CH8", []byte{0x00, 0xE0})

		loader := New(log.NewTestLogger(t))
		_, err := loader.Load(tmpFile)
		assert.NoError(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		tmpFile := createTempFile(t, "game.nes", []byte{0x00})

		loader := New(log.NewTestLogger(t))
		_, err := loader.Load(tmpFile)
		assert.True(t, errors.Is(err, ErrUnsupportedFile))
	})

	t.Run("rom extension", func(t *testing.T) {
		tmpFile := createTempFile(t, "game.rom", []byte{0x00, 0xE0})

		loader := New(log.NewTestLogger(t))
		_, err := loader.Load(tmpFile)
		assert.True(t, errors.Is(err, ErrUnsupportedFile))
	})

	t.Run("missing file", func(t *testing.T) {
		loader := New(log.NewTestLogger(t))
		_, err := loader.Load(filepath.Join(t.TempDir(), "missing.ch8"))
		assert.ErrorContains(t, err, "opening file")
	})

	t.Run("file too large", func(t *testing.T) {
		tmpFile := createTempFile(t, "large.ch8", make([]byte, chip8.MaxROMSize+10))

		loader := New(log.NewTestLogger(t))
		_, err := loader.Load(tmpFile)
		var sizeErr *chip8.ROMSizeError
		assert.True(t, errors.As(err, &sizeErr))
		assert.Equal(t, chip8.MaxROMSize+1, sizeErr.Size)
	})
}

func TestRead(t *testing.T) {
	loader := New(log.NewTestLogger(t))

	rom, err := loader.Read("buffer", bytes.NewReader(make([]byte, chip8.MaxROMSize)))
	assert.NoError(t, err)
	assert.Equal(t, chip8.MaxROMSize, rom.Size())
}

func TestDetectSystem(t *testing.T) {
	tests := []struct {
		file     string
		expected arch.System
	}{
		{"pong.ch8", arch.CHIP8System},
		{"pong.rom", ""},
		{"pong.nes", ""},
		{"pong", ""},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectSystem(tt.file))
		})
	}
}

func createTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}
