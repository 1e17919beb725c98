package shell

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/disasm"
)

const clearScreen = "\x1b[2J\x1b[H"

// listingContext is the number of instructions shown around the target of
// the goto instruction command.
const listingContext = 8

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":                 {"help", "show this help", cmdHelp},
		"clear":                {"clear", "clear the terminal", cmdClear},
		"history":              {"history", "show the last entered commands", cmdHistory},
		"quit":                 {"quit", "leave the shell", cmdQuit},
		"exit":                 {"exit", "leave the shell", cmdQuit},
		"status":               {"status", "show the session state", cmdStatus},
		"run":                  {"run", "start execution", cmdRun},
		"stop":                 {"stop", "stop execution", cmdStop},
		"step":                 {"step [count]", "execute single instructions", cmdStep},
		"reset":                {"reset", "reload the ROM and reset the machine", cmdReset},
		"regs":                 {"regs", "show the registers", cmdRegisters},
		"break set":            {"break set <address>", "set a breakpoint", cmdBreakSet},
		"break remove":         {"break remove <address>", "remove a breakpoint", cmdBreakRemove},
		"break clear":          {"break clear", "remove all breakpoints", cmdBreakClear},
		"break list":           {"break list", "list all breakpoints", cmdBreakList},
		"set cycle":            {"set cycle <hz>", "set the instruction rate", cmdSetCycle},
		"set cycle increment":  {"set cycle increment <n>", "set the instruction rate step", cmdSetIncrement},
		"goto memory":          {"goto memory <address>", "show memory at the address", cmdGotoMemory},
		"goto instruction":     {"goto instruction <address>", "show instructions at the address", cmdGotoInstruction},
		"memory next":          {"memory next", "show the next memory page", cmdMemoryNext},
		"memory previous":      {"memory previous", "show the previous memory page", cmdMemoryPrevious},
		"dis":                  {"dis", "show instructions around PC", cmdDisassemble},
	}
}

func cmdHelp(sh *Shell, _ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(&sb, "  %-28s %s\n", cmd.usage, cmd.summary)
	}
	sh.printf("%s", sb.String())
	return nil
}

func cmdClear(sh *Shell, _ []string) error {
	sh.printf("%s", clearScreen)
	return nil
}

func cmdHistory(sh *Shell, _ []string) error {
	// the history command itself is the last entry
	entries := sh.history[:len(sh.history)-1]
	if len(entries) > historySize {
		entries = entries[len(entries)-historySize:]
	}
	for i, entry := range entries {
		sh.printf("%2d  %s\n", i+1, entry)
	}
	return nil
}

func cmdQuit(sh *Shell, _ []string) error {
	sh.session.Stop()
	sh.quit = true
	return nil
}

func cmdStatus(sh *Shell, _ []string) error {
	sh.printf("%s\n", sh.session.Status())
	return nil
}

func cmdRun(sh *Shell, _ []string) error {
	if err := sh.session.Play(); err != nil {
		return err
	}
	sh.printf("Running at %d Hz\n", sh.session.Cycle())
	return nil
}

func cmdStop(sh *Shell, _ []string) error {
	sh.session.Stop()
	sh.printf("Stopped at address 0x%x\n", sh.session.VM().PC())
	return nil
}

func cmdStep(sh *Shell, args []string) error {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid step count '%s'", args[0])
		}
		count = n
	}

	for range count {
		pc, err := sh.session.Step()
		switch {
		case errors.Is(err, chip8.ErrRunning):
			return errors.New("machine is running, stop it before stepping")
		case chip8.IsBreakpoint(err):
			sh.printf("Breakpoint hit at address 0x%x\n", pc)
			return nil
		case err != nil:
			return err
		}
	}

	mem := sh.session.VM().Memory()
	pc := sh.session.VM().PC()
	word := uint16(mem[pc&chip8.MaxAddress])<<8 | uint16(mem[(pc+1)&chip8.MaxAddress])
	sh.printf("PC 0x%03X: %s\n", pc, disasm.Format(word))
	return nil
}

func cmdReset(sh *Shell, _ []string) error {
	if err := sh.session.Reload(); err != nil {
		return err
	}
	sh.viewStart = chip8.ProgramStart
	sh.printf("Machine has been reset.\n")
	return nil
}

func cmdRegisters(sh *Shell, _ []string) error {
	regs := sh.session.VM().Registers()

	var sb strings.Builder
	for i, v := range regs.V {
		fmt.Fprintf(&sb, "V%X=%02X", i, v)
		if i%8 == 7 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	fmt.Fprintf(&sb, "PC=%03X I=%03X SP=%02X DT=%02X ST=%02X\n", regs.PC, regs.I, regs.SP, regs.Delay, regs.Sound)
	sb.WriteString("Stack:")
	for _, address := range regs.Stack {
		fmt.Fprintf(&sb, " %03X", address)
	}
	sb.WriteByte('\n')
	sh.printf("%s", sb.String())
	return nil
}

func cmdBreakSet(sh *Shell, args []string) error {
	address, err := addressArgument(args)
	if err != nil {
		return err
	}

	aligned, err := sh.session.VM().SetBreakpoint(address)
	if err != nil {
		sh.printf("Breakpoint not set. %s\n", rangeMessage(err))
		return nil
	}
	sh.printf("Breakpoint set to address 0x%x\n", aligned)
	return nil
}

func cmdBreakRemove(sh *Shell, args []string) error {
	address, err := addressArgument(args)
	if err != nil {
		return err
	}

	aligned, err := sh.session.VM().RemoveBreakpoint(address)
	switch {
	case errors.Is(err, chip8.ErrBreakpointNotFound):
		sh.printf("Breakpoint not found.\n")
	case err != nil:
		sh.printf("Breakpoint not removed. %s\n", rangeMessage(err))
	default:
		sh.printf("Breakpoint removed at address 0x%x.\n", aligned)
	}
	return nil
}

func cmdBreakClear(sh *Shell, _ []string) error {
	sh.session.VM().ClearBreakpoints()
	sh.printf("Breakpoints have been cleared.\n")
	return nil
}

func cmdBreakList(sh *Shell, _ []string) error {
	breakpoints := sh.session.VM().Breakpoints()
	if len(breakpoints) == 0 {
		sh.printf("No breakpoints set.\n")
		return nil
	}
	for _, address := range breakpoints {
		sh.printf("0x%x\n", address)
	}
	return nil
}

func cmdSetCycle(sh *Shell, args []string) error {
	value, err := intArgument(args)
	if err != nil {
		return err
	}
	sh.printf("Cycle set to %d Hz\n", sh.session.SetCycle(value))
	return nil
}

func cmdSetIncrement(sh *Shell, args []string) error {
	value, err := intArgument(args)
	if err != nil {
		return err
	}
	sh.printf("Cycle increment set to %d\n", sh.session.SetCycleIncrement(value))
	return nil
}

func cmdGotoMemory(sh *Shell, args []string) error {
	address, err := addressArgument(args)
	if err != nil {
		return err
	}
	sh.viewStart = disasm.ClampViewStart(int(address))
	return sh.showMemory()
}

func cmdMemoryNext(sh *Shell, _ []string) error {
	sh.viewStart = disasm.NextPage(sh.viewStart)
	return sh.showMemory()
}

func cmdMemoryPrevious(sh *Shell, _ []string) error {
	sh.viewStart = disasm.PreviousPage(sh.viewStart)
	return sh.showMemory()
}

func (sh *Shell) showMemory() error {
	mem := sh.session.VM().Memory()
	sh.printf("%s", disasm.MemoryView(mem[:], sh.viewStart, int(sh.session.VM().Registers().I)))
	return nil
}

func cmdGotoInstruction(sh *Shell, args []string) error {
	address, err := addressArgument(args)
	if err != nil {
		return err
	}
	address &^= 1
	end := int(address) + 2*listingContext
	if end > chip8.MaxAddress {
		end = chip8.MaxAddress
	}
	mem := sh.session.VM().Memory()
	sh.printListing(disasm.Listing(mem[:], address, uint16(end)))
	return nil
}

func cmdDisassemble(sh *Shell, _ []string) error {
	mem := sh.session.VM().Memory()
	sh.printListing(sh.session.Tracker().Window(mem[:], 4, listingContext))
	return nil
}

func (sh *Shell) printListing(lines []disasm.Line) {
	pc := sh.session.VM().PC()
	breakpoints := sh.session.VM().Breakpoints()

	var sb strings.Builder
	for _, line := range lines {
		marker := "  "
		if line.Address == pc {
			marker = "> "
		}
		if _, found := slices.BinarySearch(breakpoints, line.Address); found {
			marker = marker[:1] + "*"
		}
		if line.Label != "" {
			fmt.Fprintf(&sb, "    %s:\n", line.Label)
		}
		fmt.Fprintf(&sb, "%s %s\n", marker, line)
	}
	sh.printf("%s", sb.String())
}

// rangeMessage returns the user facing text of a breakpoint range error.
func rangeMessage(err error) string {
	var rangeErr *chip8.AddressRangeError
	if !errors.As(err, &rangeErr) {
		return err.Error()
	}
	if rangeErr.Address > rangeErr.Max {
		return fmt.Sprintf("Address 0x%x is larger than the ROM's last address 0x%x.", rangeErr.Address, rangeErr.Max)
	}
	return fmt.Sprintf("Address 0x%x is smaller than the ROM's first address 0x%x.", rangeErr.Address, rangeErr.Min)
}

// addressArgument parses a hex address given as 0x200, $200 or 200.
func addressArgument(args []string) (uint16, error) {
	if len(args) != 1 {
		return 0, errors.New("expected a single address argument")
	}
	return ParseAddress(args[0])
}

// ParseAddress parses a hex address given as 0x200, $200 or 200.
func ParseAddress(s string) (uint16, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "0x"), "$")
	value, err := strconv.ParseUint(trimmed, 16, 16)
	if err != nil || trimmed == "" {
		return 0, fmt.Errorf("invalid address '%s'", s)
	}
	return uint16(value), nil
}

func intArgument(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected a single numeric argument")
	}
	value, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number '%s'", args[0])
	}
	return value, nil
}
