package main

import (
	"fmt"
	"strings"
)

// RunMode is the outer state machine's current state.
type RunMode int

const (
	ModeRun RunMode = iota
	ModeStep
	ModeOver
	ModeOut
	ModeTake
	ModeDebug
	ModeFiles
	ModeBreakpoints
	ModeWatchpoints
	ModeQuit
)

// Runner drives the CPU + bus through the outer run-mode state machine
//, including the synthetic breakpoint OVER installs (and the call depth
// OUT tracks) to regain control without single-stepping through a whole
// subroutine.
type Runner struct {
	cpu  *CPU_Z80
	bus  *Bus
	mode RunMode

	callDepth int

	overBPIndex int
	outArmed    bool

	takeStartPC uint16
}

func NewRunner(cpu *CPU_Z80, bus *Bus) *Runner {
	bus.AttachCPU(cpu)
	bus.debug.SetRegisterSource(func(name string) (uint16, bool) {
		return registerByName(cpu, name)
	})
	return &Runner{cpu: cpu, bus: bus, mode: ModeDebug, overBPIndex: NoIndex}
}

func (r *Runner) Mode() RunMode    { return r.mode }
func (r *Runner) SetMode(m RunMode) { r.mode = m }

// peekInstruction decodes the instruction at PC without mutating CPU
// state, used by OVER/OUT/TAKE to classify it.
func (r *Runner) peekInstruction() (size int, mnemonic string) {
	var data [4]byte
	for i := range data {
		data[i] = r.bus.Read(r.cpu.PC + uint16(i))
	}
	return decodeZ80Instruction(data[:], r.cpu.PC)
}

func classify(mnemonic string) (isCall, isRet, isUncondJump, isCondBranch bool) {
	m := strings.Fields(mnemonic)
	if len(m) == 0 {
		return
	}
	switch m[0] {
	case "CALL":
		isCall = true
		isCondBranch = len(m) > 1 && strings.HasSuffix(m[1], ",")
	case "RET", "RETI", "RETN":
		isRet = true
	case "JP":
		if len(m) > 1 && m[1] == "(HL)" {
			isUncondJump = true
			return
		}
		if len(m) > 1 && strings.HasSuffix(m[1], ",") {
			isCondBranch = true
		} else {
			isUncondJump = true
		}
	case "JR":
		if len(m) > 1 && strings.HasSuffix(m[1], ",") {
			isCondBranch = true
		} else {
			isUncondJump = true
		}
	case "DJNZ":
		isCondBranch = true
	}
	return
}

// RunOne advances exactly one opcode through the CPU engine, then applies
// the current mode's transition rule.
func (r *Runner) RunOne() {
	_, mnemonic := r.peekInstruction()
	isCall, isRet, isUncond, isCond := classify(mnemonic)
	pcBefore := r.cpu.PC

	r.cpu.Step()

	switch {
	case isCall:
		r.callDepth++
	case isRet:
		r.callDepth--
	}

	phys := r.bus.mem.PhysicalForBreakpoint(r.cpu.PC)
	if idx := r.bus.debug.CheckBreakpoint(r.cpu.PC, phys); idx != NoIndex {
		r.bus.debug.recordHit(BreakpointEvent{Kind: "breakpoint", Address: r.cpu.PC})
		r.mode = ModeDebug
		return
	}

	switch r.mode {
	case ModeStep:
		r.mode = ModeDebug
	case ModeOver:
		r.applyOver(pcBefore, isCall, isUncond, isCond)
	case ModeOut:
		if r.callDepth < 0 {
			r.mode = ModeDebug
		}
	case ModeTake:
		if r.cpu.PC != pcBefore || isUncond {
			r.mode = ModeDebug
		}
	}
}

// applyOver installs a synthetic breakpoint at the instruction after an
// unconditional CALL so OVER doesn't single-step the whole callee; any
// other instruction degrades OVER to plain STEP semantics. Once the
// breakpoint is armed, the instructions run inside the callee do not
// end OVER.
func (r *Runner) applyOver(pcBefore uint16, isCall, isUncond, isCond bool) {
	if r.overBPIndex == NoIndex {
		if !isCall || isCond {
			r.mode = ModeDebug
			return
		}
		size, _ := decodeZ80Instruction(readFour(r.bus, pcBefore), pcBefore)
		r.overBPIndex = r.bus.debug.AddSystemBreakpoint(BreakLogical, uint32(pcBefore)+uint32(size))
	}
	if idx := r.bus.debug.CheckBreakpoint(r.cpu.PC, r.bus.mem.PhysicalForBreakpoint(r.cpu.PC)); idx == r.overBPIndex {
		r.bus.debug.RemoveBreakpoint(r.overBPIndex)
		r.overBPIndex = NoIndex
		r.mode = ModeDebug
	}
}

func readFour(b *Bus, addr uint16) []byte {
	var data [4]byte
	for i := range data {
		data[i] = b.Read(addr + uint16(i))
	}
	return data[:]
}

// Run ticks freely until the mode leaves ModeRun (breakpoint, watchpoint,
// or an explicit mode change from a host event).11.
func (r *Runner) Run() {
	for r.mode == ModeRun {
		r.RunOne()
	}
}

// StartOver/StartOut/StartTake enter the corresponding mode, computing the
// call-depth baseline OUT needs.
func (r *Runner) StartOver() { r.mode = ModeOver }
func (r *Runner) StartOut() {
	r.callDepth = 0
	r.mode = ModeOut
}
func (r *Runner) StartTake() {
	r.takeStartPC = r.cpu.PC
	r.mode = ModeTake
}

func registerByName(cpu *CPU_Z80, name string) (uint16, bool) {
	switch strings.ToUpper(name) {
	case "A":
		return uint16(cpu.A), true
	case "B":
		return uint16(cpu.B), true
	case "C":
		return uint16(cpu.C), true
	case "D":
		return uint16(cpu.D), true
	case "E":
		return uint16(cpu.E), true
	case "H":
		return uint16(cpu.H), true
	case "L":
		return uint16(cpu.L), true
	case "AF":
		return cpu.AF(), true
	case "BC":
		return cpu.BC(), true
	case "DE":
		return cpu.DE(), true
	case "HL":
		return cpu.HL(), true
	case "IX":
		return cpu.IX, true
	case "IY":
		return cpu.IY, true
	case "SP":
		return cpu.SP, true
	case "PC":
		return cpu.PC, true
	}
	return 0, false
}

// OverlayEnabled reports whether the on-screen debugger overlay should be
// drawn: any mode other than free-running RUN.
func (r *Runner) OverlayEnabled() bool { return r.mode != ModeRun }

var runModeNames = map[RunMode]string{
	ModeRun: "RUN", ModeStep: "STEP", ModeOver: "OVER", ModeOut: "OUT",
	ModeTake: "TAKE", ModeDebug: "DEBUG", ModeFiles: "FILES",
	ModeBreakpoints: "BREAKPOINTS", ModeWatchpoints: "WATCHPOINTS", ModeQuit: "QUIT",
}

// OverlayLines renders the current mode and register file as short text
// lines for the ebiten host's debugger overlay.
func (r *Runner) OverlayLines() []string {
	lines := []string{"mode: " + runModeNames[r.mode]}
	for _, reg := range RegisterDump(r.cpu) {
		if reg.Width == 8 {
			lines = append(lines, fmt.Sprintf("%-3s %02X", reg.Name, reg.Value))
		} else {
			lines = append(lines, fmt.Sprintf("%-3s %04X", reg.Name, reg.Value))
		}
	}
	if ev, ok := r.bus.debug.TakeHit(); ok {
		lines = append(lines, fmt.Sprintf("hit: %s @ %04X", ev.Kind, ev.Address))
	}
	return lines
}

// RegisterDump returns every register for the monitor's `registers`
// command.
func RegisterDump(cpu *CPU_Z80) []RegisterInfo {
	return []RegisterInfo{
		{Name: "AF", Value: cpu.AF(), Width: 16},
		{Name: "BC", Value: cpu.BC(), Width: 16},
		{Name: "DE", Value: cpu.DE(), Width: 16},
		{Name: "HL", Value: cpu.HL(), Width: 16},
		{Name: "AF'", Value: cpu.AF2(), Width: 16},
		{Name: "BC'", Value: cpu.BC2(), Width: 16},
		{Name: "DE'", Value: cpu.DE2(), Width: 16},
		{Name: "HL'", Value: cpu.HL2(), Width: 16},
		{Name: "IX", Value: cpu.IX, Width: 16},
		{Name: "IY", Value: cpu.IY, Width: 16},
		{Name: "SP", Value: cpu.SP, Width: 16},
		{Name: "PC", Value: cpu.PC, Width: 16},
		{Name: "I", Value: uint16(cpu.I), Width: 8},
		{Name: "R", Value: uint16(cpu.R), Width: 8},
	}
}
