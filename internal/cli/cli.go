// Package cli handles command line interface logic
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/session"
	"github.com/retroenv/retrochip8/internal/statsview"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
)

// BuildInfo contains the version information embedded at build time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// app contains the state shared by all commands.
type app struct {
	build      BuildInfo
	config     *config.Loader
	configFile string
	stats      bool

	settings config.Settings
	logger   *log.Logger
}

// NewRootCommand returns the root command with all sub commands attached.
func NewRootCommand(build BuildInfo) *cobra.Command {
	a := &app{
		build:  build,
		config: config.NewLoader(),
	}

	root := &cobra.Command{
		Use:               "retrochip8 [command]",
		Short:             "CHIP-8 emulator and debugger",
		Long:              "retrochip8 runs CHIP-8 ROMs in the terminal, debugs them in an interactive shell and disassembles them.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default $HOME/.retrochip8.yaml)")
	flags.Bool(config.KeyDebug, false, "enable debug logging")
	flags.BoolP(config.KeyQuiet, "q", false, "quiet mode")
	flags.IntP(config.KeyCycle, "c", config.DefaultCycle, "instruction rate in Hz")
	flags.Int(config.KeyIncrement, config.DefaultIncrement, "instruction rate change per speed adjustment")
	flags.String(config.KeyWAV, "", "record the sound output to the given WAV file")
	flags.BoolVar(&a.stats, "stats", false, "serve runtime statistics over HTTP")

	v := a.config.Viper()
	for _, key := range []string{config.KeyDebug, config.KeyQuiet, config.KeyCycle, config.KeyIncrement, config.KeyWAV} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %s", key, err))
		}
	}

	root.AddCommand(
		a.runCommand(),
		a.debugCommand(),
		a.disasmCommand(),
		a.versionCommand(),
	)
	return root
}

// setup loads the configuration and creates the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	settings, err := a.config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger = config.CreateLogger(settings.Debug, settings.Quiet)

	if used := a.config.ConfigFileUsed(); used != "" {
		a.logger.Debug("Using config file", log.String("path", used))
	}
	if cmd.Name() != "version" {
		session.PrintBanner(a.logger, settings.Quiet, a.build.Version, a.build.Commit, a.build.Date)
	}

	if a.stats {
		if err := statsview.Launch(a.logger, settings.Stats); err != nil {
			a.logger.Warn("Stats server not started", log.Err(err))
		}
	}
	return nil
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "retrochip8 %s\n",
				session.VersionString(a.build.Version, a.build.Commit, a.build.Date))
			return err
		},
	}
}

// romArgument validates that exactly one ROM file is passed.
func romArgument(cmd *cobra.Command, args []string) error {
	switch {
	case len(args) == 0:
		return &UsageError{cmd: cmd, msg: "missing ROM file argument"}
	case len(args) > 1:
		return &UsageError{
			cmd: cmd,
			msg: fmt.Sprintf("unexpected arguments after ROM file: %s", strings.Join(args[1:], " ")),
		}
	default:
		return nil
	}
}

// UsageError represents an error that should show usage information
type UsageError struct {
	cmd *cobra.Command
	msg string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the error and the usage of the failed command to w.
func (e *UsageError) ShowUsage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Error: %s\n\n%s", e.msg, e.cmd.UsageString())
}
