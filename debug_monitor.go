package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"golang.design/x/clipboard"
)

// DebugMonitor is the interactive debugger REPL: a line-oriented command
// interpreter over stdin/stdout, built on x/term's line-editing Terminal
// rather than a raw byte pump, since commands here are whole lines, not
// individual keystrokes routed to emulated hardware.
type DebugMonitor struct {
	runner *Runner
	bus    *Bus
	term   *term.Terminal
	fd     int
	state  *term.State

	clipboardOK bool
	lastOutput  string
}

func NewDebugMonitor(runner *Runner, bus *Bus, fd int) (*DebugMonitor, error) {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("debug monitor: raw mode: %w", err)
	}
	t := term.NewTerminal(&stdioReadWriter{}, "(beastem) ")
	m := &DebugMonitor{runner: runner, bus: bus, term: t, fd: fd, state: oldState}
	m.clipboardOK = clipboard.Init() == nil
	return m, nil
}

func (m *DebugMonitor) Close() {
	if m.state != nil {
		term.Restore(m.fd, m.state)
	}
}

// RunLoop reads and dispatches commands until the user quits or the
// terminal is closed.
func (m *DebugMonitor) RunLoop() {
	for {
		line, err := m.term.ReadLine()
		if err != nil {
			m.runner.SetMode(ModeQuit)
			return
		}
		if m.dispatch(strings.TrimSpace(line)) {
			return
		}
	}
}

// dispatch executes one command line; returns true if the monitor should
// stop reading (quit requested).
func (m *DebugMonitor) dispatch(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "quit", "q":
		m.runner.SetMode(ModeQuit)
		return true
	case "run", "c", "continue":
		m.runner.SetMode(ModeRun)
		return true
	case "step", "s":
		m.runner.SetMode(ModeStep)
		return true
	case "over", "o":
		m.runner.StartOver()
		return true
	case "out":
		m.runner.StartOut()
		return true
	case "take", "t":
		m.runner.StartTake()
		return true
	case "break", "b":
		m.cmdBreak(args)
	case "watch", "w":
		m.cmdWatch(args)
	case "delete", "d":
		m.cmdDelete(args)
	case "regs", "r":
		m.printRegisters()
	case "mem", "m":
		m.cmdMem(args)
	case "disasm", "dis":
		m.cmdDisasm(args)
	case "list", "l":
		m.cmdListBreakpoints()
	case "copy":
		m.cmdCopy()
	case "help", "h", "?":
		m.printHelp()
	default:
		fmt.Fprintf(m.term, "unknown command %q (try \"help\")\r\n", cmd)
	}
	return false
}

func (m *DebugMonitor) cmdBreak(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(m.term, "usage: break <hex-addr> [physical]")
		return
	}
	addr, err := strconv.ParseUint(args[0], 16, 32)
	if err != nil {
		fmt.Fprintf(m.term, "bad address %q\r\n", args[0])
		return
	}
	kind := BreakLogical
	if len(args) > 1 && args[1] == "physical" {
		kind = BreakPhysical
	}
	idx := m.bus.Debug().AddBreakpoint(kind, uint32(addr), nil)
	if idx == NoIndex {
		fmt.Fprintln(m.term, "breakpoint slots full")
		return
	}
	fmt.Fprintf(m.term, "breakpoint %d set at %04X\r\n", idx, addr)
}

func (m *DebugMonitor) cmdWatch(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(m.term, "usage: watch <hex-addr> <length> [r|w|rw]")
		return
	}
	addr, err := strconv.ParseUint(args[0], 16, 32)
	if err != nil {
		fmt.Fprintf(m.term, "bad address %q\r\n", args[0])
		return
	}
	length, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(m.term, "bad length %q\r\n", args[1])
		return
	}
	flags := WatchWrite
	if len(args) > 2 {
		switch args[2] {
		case "r":
			flags = WatchRead
		case "rw":
			flags = WatchRead | WatchWrite
		}
	}
	idx := m.bus.Debug().AddWatchpoint(flags, uint32(addr), uint32(length))
	if idx == NoIndex {
		fmt.Fprintln(m.term, "watchpoint slots full")
		return
	}
	fmt.Fprintf(m.term, "watchpoint %d set at %04X+%d\r\n", idx, addr, length)
}

func (m *DebugMonitor) cmdDelete(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(m.term, "usage: delete break|watch <index>")
		return
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(m.term, "bad index %q\r\n", args[1])
		return
	}
	if args[0] == "watch" {
		m.bus.Debug().RemoveWatchpoint(idx)
	} else {
		m.bus.Debug().RemoveBreakpoint(idx)
	}
}

func (m *DebugMonitor) cmdListBreakpoints() {
	for _, idx := range m.bus.Debug().ListBreakpoints() {
		addr, _ := m.bus.Debug().BreakpointAddr(idx)
		fmt.Fprintf(m.term, "  bp %d: %04X\r\n", idx, addr)
	}
	for _, idx := range m.bus.Debug().ListWatchpoints() {
		fmt.Fprintf(m.term, "  wp %d\r\n", idx)
	}
}

func (m *DebugMonitor) printRegisters() {
	var sb strings.Builder
	for _, r := range RegisterDump(m.runner.cpu) {
		if r.Width == 8 {
			fmt.Fprintf(&sb, "%-4s %02X\n", r.Name, r.Value)
		} else {
			fmt.Fprintf(&sb, "%-4s %04X\n", r.Name, r.Value)
		}
	}
	m.lastOutput = sb.String()
	fmt.Fprint(m.term, strings.ReplaceAll(m.lastOutput, "\n", "\r\n"))
}

func (m *DebugMonitor) cmdMem(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(m.term, "usage: mem <hex-addr> [count]")
		return
	}
	addr, err := strconv.ParseUint(args[0], 16, 16)
	if err != nil {
		fmt.Fprintf(m.term, "bad address %q\r\n", args[0])
		return
	}
	count := 16
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			count = n
		}
	}
	var sb strings.Builder
	for i := 0; i < count; i++ {
		fmt.Fprintf(&sb, "%02X ", m.bus.Read(uint16(addr)+uint16(i)))
	}
	m.lastOutput = fmt.Sprintf("%04X: %s\n", addr, sb.String())
	fmt.Fprint(m.term, strings.ReplaceAll(m.lastOutput, "\n", "\r\n"))
}

func (m *DebugMonitor) cmdDisasm(args []string) {
	addr := uint64(m.runner.cpu.PC)
	if len(args) > 0 {
		if v, err := strconv.ParseUint(args[0], 16, 16); err == nil {
			addr = v
		}
	}
	count := 10
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			count = n
		}
	}
	lines := disassembleZ80(func(a uint64, size int) []byte {
		data := make([]byte, size)
		for i := range data {
			data[i] = m.bus.Read(uint16(a) + uint16(i))
		}
		return data
	}, addr, count)
	pc := uint64(m.runner.cpu.PC)
	var sb strings.Builder
	for _, l := range lines {
		marker := "  "
		if l.Address == pc {
			marker = "->"
		}
		fmt.Fprintf(&sb, "%s %04X  %-12s %s\n", marker, l.Address, l.HexBytes, l.Mnemonic)
	}
	m.lastOutput = sb.String()
	fmt.Fprint(m.term, strings.ReplaceAll(m.lastOutput, "\n", "\r\n"))
}

// cmdCopy sends the most recently printed regs/mem/disasm page to the host
// clipboard, letting a user paste a register dump or listing page
// elsewhere without retyping it.
func (m *DebugMonitor) cmdCopy() {
	if !m.clipboardOK {
		fmt.Fprintln(m.term, "clipboard unavailable on this host")
		return
	}
	if m.lastOutput == "" {
		fmt.Fprintln(m.term, "nothing to copy yet")
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(m.lastOutput))
	fmt.Fprintln(m.term, "copied to clipboard")
}

func (m *DebugMonitor) printHelp() {
	fmt.Fprint(m.term, "commands: run|c, step|s, over|o, out, take|t, break|b <addr>, watch|w <addr> <len>, "+
		"delete break|watch <idx>, list|l, regs|r, mem|m <addr> [n], disasm|dis [addr] [n], copy, quit|q\r\n")
}

// stdioReadWriter pairs stdin/stdout into the io.ReadWriter term.NewTerminal
// wants; the fd passed to MakeRaw/Restore is still the plain stdin fd.
type stdioReadWriter struct{}

func (stdioReadWriter) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriter) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
