package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
)

func (a *app) disasmCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "disasm <rom.ch8>",
		Short: "print the instruction listing of a ROM",
		Args:  romArgument,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.disassemble(cmd.OutOrStdout(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "name of the output .asm file, printed on console if no name given")
	return cmd
}

func (a *app) disassemble(stdout io.Writer, path, output string) error {
	rom, err := loader.New(a.logger).Load(path)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "; %s\n", rom.Name)
	disasm.Write(&sb, disasm.ROM(rom.Data))

	if output == "" {
		if _, err := io.WriteString(stdout, sb.String()); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(output, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing listing file: %w", err)
	}
	a.logger.Info("Listing written", log.String("file", output))
	return nil
}
