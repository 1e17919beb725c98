package cli

import (
	"context"
	"fmt"

	"github.com/retroenv/retrochip8/internal/session"
	"github.com/retroenv/retrochip8/internal/shell"
	"github.com/spf13/cobra"
)

func (a *app) debugCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "debug <rom.ch8>",
		Short: "debug a ROM in an interactive shell",
		Long:  "Load a ROM and read debug commands from the standard input. Type 'help' for a list of commands.",
		Args:  romArgument,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.debug(cmd.Context(), cmd, args[0])
		},
	}
}

func (a *app) debug(ctx context.Context, cmd *cobra.Command, path string) error {
	var sh *shell.Shell
	s := session.New(a.logger, session.Options{
		Cycle:     a.settings.Cycle,
		Increment: a.settings.Increment,
		OnHalt: func(err error) {
			sh.ReportHalt(err)
		},
	})
	defer s.Stop()
	sh = shell.New(s, cmd.OutOrStdout())

	if err := s.LoadFile(path); err != nil {
		return err
	}

	rom, _ := s.ROM()
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s (%d bytes), type 'help' for a list of commands\n",
		rom.Name, rom.Size()); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return sh.Run(ctx, cmd.InOrStdin())
}
