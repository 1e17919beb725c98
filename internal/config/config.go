// Package config handles application configuration and setup
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyCycle     = "cycle"
	KeyIncrement = "increment"
	KeyKeymap    = "keymap"
	KeyWAV       = "wav"
	KeyDebug     = "debug"
	KeyQuiet     = "quiet"
	KeyStats     = "stats"
)

// Defaults of the configurable values.
const (
	DefaultCycle     = 500
	DefaultIncrement = 10
	DefaultStatsAddr = "localhost:18066"

	envPrefix  = "RETROCHIP8"
	configName = ".retrochip8"
)

// Settings contains the resolved configuration values.
type Settings struct {
	Cycle     int               // instruction rate in Hz
	Increment int               // cycle rate change per adjustment
	Keymap    map[string]string // host key to CHIP-8 key overrides
	WAV       string            // path of the WAV recording, empty disables it
	Stats     string            // listen address of the runtime stats server
	Debug     bool
	Quiet     bool
}

// Loader reads the configuration from a file and the environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a loader with the defaults set.
func NewLoader() *Loader {
	v := viper.New()
	v.SetDefault(KeyCycle, DefaultCycle)
	v.SetDefault(KeyIncrement, DefaultIncrement)
	v.SetDefault(KeyStats, DefaultStatsAddr)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Viper returns the underlying viper instance to bind command line flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads the configuration file and returns the resolved settings.
// Without an explicit path the file .retrochip8.yaml is searched in the
// home directory, a missing file there is not an error.
func (l *Loader) Load(path string) (Settings, error) {
	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return Settings{}, fmt.Errorf("finding home directory: %w", err)
		}
		l.v.AddConfigPath(home)
		l.v.SetConfigName(configName)
		l.v.SetConfigType("yaml")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return Settings{
		Cycle:     l.v.GetInt(KeyCycle),
		Increment: l.v.GetInt(KeyIncrement),
		Keymap:    l.v.GetStringMapString(KeyKeymap),
		WAV:       l.v.GetString(KeyWAV),
		Stats:     l.v.GetString(KeyStats),
		Debug:     l.v.GetBool(KeyDebug),
		Quiet:     l.v.GetBool(KeyQuiet),
	}, nil
}

// ConfigFileUsed returns the path of the read configuration file or an
// empty string if none was read.
func (l *Loader) ConfigFileUsed() string {
	used := l.v.ConfigFileUsed()
	if used == "" {
		return ""
	}
	return filepath.Clean(used)
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
