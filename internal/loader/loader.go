// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
)

// ErrUnsupportedFile is returned for files that are not CHIP-8 ROMs.
var ErrUnsupportedFile = errors.New("unsupported file type, only .ch8 files are supported")

// ROM is a loaded ROM image.
type ROM struct {
	Name   string
	Data   []byte
	System arch.System
}

// Size returns the size of the ROM in bytes.
func (r ROM) Size() int {
	return len(r.Data)
}

// Loader handles loading ROM files from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new ROM loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load reads the ROM file at path. The file extension has to identify a
// CHIP-8 ROM and the content has to fit into the program space.
func (l *Loader) Load(path string) (ROM, error) {
	system := DetectSystem(path)
	if system != arch.CHIP8System {
		return ROM{}, fmt.Errorf("loading %s: %w", path, ErrUnsupportedFile)
	}

	file, err := os.Open(path)
	if err != nil {
		return ROM{}, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	rom, err := l.Read(filepath.Base(path), file)
	if err != nil {
		return ROM{}, err
	}
	rom.System = system

	l.logger.Debug("Loaded ROM file",
		log.String("file", path),
		log.Int("size", rom.Size()))
	return rom, nil
}

// Read reads a ROM image from the reader. Reading stops one byte past the
// maximum ROM size so oversized input is rejected without reading it fully.
func (l *Loader) Read(name string, r io.Reader) (ROM, error) {
	data, err := io.ReadAll(io.LimitReader(r, chip8.MaxROMSize+1))
	if err != nil {
		return ROM{}, fmt.Errorf("reading ROM file: %w", err)
	}
	if len(data) > chip8.MaxROMSize {
		return ROM{}, &chip8.ROMSizeError{Size: len(data), Max: chip8.MaxROMSize}
	}

	return ROM{
		Name:   name,
		Data:   data,
		System: arch.CHIP8System,
	}, nil
}

// DetectSystem determines the system type based on the file extension.
// An empty system is returned for unknown extensions.
func DetectSystem(filename string) arch.System {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".ch8":
		return arch.CHIP8System
	default:
		return ""
	}
}
