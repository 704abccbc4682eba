package lp55231

import (
	"errors"
	"time"

	"lp55231-go/x/conv"
)

// Word is one 16-bit program memory entry, MSB first on the wire.
type Word uint16

func (w Word) MSB() uint8 { return uint8(w >> 8) }
func (w Word) LSB() uint8 { return uint8(w) }

func (w Word) String() string {
	var b [4]byte
	return "0x" + string(conv.U16Hex(b[:], uint16(w)))
}

// Instruction is one engine instruction. Implementations are small
// comparable structs; Encode validates every field and never truncates.
type Instruction interface {
	Encode() (Word, error)
}

var ErrNilInstruction = errors.New("lp55231: nil instruction")

// Encode converts in to its program word.
func Encode(in Instruction) (Word, error) {
	if in == nil {
		return 0, ErrNilInstruction
	}
	return in.Encode()
}

// Opcode bits.
const (
	opSetPWM      Word = 0x4000
	opRampVar     Word = 0x8400
	opSetPWMVar   Word = 0x8460
	opBranchVar   Word = 0x8600
	opJump        Word = 0x8800
	opLd          Word = 0x9000
	opAdd         Word = 0x9100
	opSub         Word = 0x9200
	opArithVar    Word = 0x9300
	opSubVarFlag  Word = 0x0010
	opMuxMapStart Word = 0x9C00
	opMuxLdEnd    Word = 0x9C80
	opMuxSelect   Word = 0x9D00
	opMuxMapNext  Word = 0x9D80
	opMuxMapPrev  Word = 0x9DC0
	opMuxLdNext   Word = 0x9D81
	opMuxLdPrev   Word = 0x9DC1
	opMuxLdStart  Word = 0x9E00
	opMuxLdAddr   Word = 0x9F00
	opMuxMapAddr  Word = 0x9F80
	opBranch      Word = 0xA000
	opEnd         Word = 0xC000
	opInt         Word = 0xC400

	endInterruptBit Word = 1 << 12
	endResetBit     Word = 1 << 11
	mapAddrFlag     Word = 0x80
)

// Field limits.
const (
	maxPWM       = 255
	maxStepTime  = 31
	maxLoops     = 63
	maxSkip      = 31
	maxLEDSelect = 16
	maxAddr      = MaxInstructions - 1
	channelBits  = 1<<NumChannels - 1
)

func checkPreScale(p PreScale) error   { return checkRange("prescale", int(p), 0, 1) }
func checkDirection(d Direction) error { return checkRange("direction", int(d), 0, 1) }
func checkVar(field string, v Variable) error {
	return checkRange(field, int(v), int(VarA), int(VarD))
}

// checkTarget limits arithmetic targets to A..C; D-target patterns are the
// mux instructions.
func checkTarget(v Variable) error { return checkRange("target variable", int(v), int(VarA), int(VarC)) }

// ---------------- Mapping ----------------

// MapChannels is a mapping-table data word binding channels to the engine.
type MapChannels struct{ Channels ChannelSet }

// Map builds a MapChannels entry; argument order does not matter.
func Map(chs ...Channel) MapChannels { return MapChannels{Channels: Channels(chs...)} }

func (i MapChannels) Encode() (Word, error) {
	if err := checkRange("channel set", int(i.Channels), 0, channelBits); err != nil {
		return 0, err
	}
	return Word(i.Channels), nil
}

// MuxLdStart marks the start of the mapping table.
type MuxLdStart struct{ Addr int }

func (i MuxLdStart) Encode() (Word, error) { return encodeAddr(opMuxLdStart, "mux_ld_start address", i.Addr) }

// MuxMapStart sets the table start and maps its first row.
type MuxMapStart struct{ Addr int }

func (i MuxMapStart) Encode() (Word, error) {
	return encodeAddr(opMuxMapStart, "mux_map_start address", i.Addr)
}

// MuxLdEnd marks the end of the mapping table.
type MuxLdEnd struct{ Addr int }

func (i MuxLdEnd) Encode() (Word, error) { return encodeAddr(opMuxLdEnd, "mux_ld_end address", i.Addr) }

// MuxLdAddr points the table index at Addr without mapping.
type MuxLdAddr struct{ Addr int }

func (i MuxLdAddr) Encode() (Word, error) { return encodeAddr(opMuxLdAddr, "mux_ld_addr address", i.Addr) }

// MuxMapAddr points the table index at Addr and maps that row.
type MuxMapAddr struct{ Addr int }

func (i MuxMapAddr) Encode() (Word, error) {
	return encodeAddr(opMuxMapAddr, "mux_map_addr address", i.Addr)
}

// MuxSel maps a single output (1..9 = D1..D9, 16 = GPO).
type MuxSel struct{ LED int }

func (i MuxSel) Encode() (Word, error) {
	if err := checkRange("mux_sel led", i.LED, 1, maxLEDSelect); err != nil {
		return 0, err
	}
	return opMuxSelect | Word(i.LED), nil
}

// MuxClr unmaps every output from the engine.
type MuxClr struct{}

func (MuxClr) Encode() (Word, error) { return opMuxSelect, nil }

type MuxMapNext struct{}

func (MuxMapNext) Encode() (Word, error) { return opMuxMapNext, nil }

type MuxMapPrev struct{}

func (MuxMapPrev) Encode() (Word, error) { return opMuxMapPrev, nil }

type MuxLdNext struct{}

func (MuxLdNext) Encode() (Word, error) { return opMuxLdNext, nil }

type MuxLdPrev struct{}

func (MuxLdPrev) Encode() (Word, error) { return opMuxLdPrev, nil }

func encodeAddr(op Word, field string, addr int) (Word, error) {
	if err := checkRange(field, addr, 0, maxAddr); err != nil {
		return 0, err
	}
	return op | Word(addr), nil
}

// ---------------- Driver ----------------

// SetPWM sets the mapped outputs to Level immediately.
type SetPWM struct{ Level int }

func (i SetPWM) Encode() (Word, error) {
	if err := checkRange("pwm level", i.Level, 0, maxPWM); err != nil {
		return 0, err
	}
	return opSetPWM | Word(i.Level), nil
}

// SetPWMVar sets the mapped outputs to the value of Var.
type SetPWMVar struct{ Var Variable }

func (i SetPWMVar) Encode() (Word, error) {
	if err := checkVar("pwm variable", i.Var); err != nil {
		return 0, err
	}
	return opSetPWMVar | Word(i.Var), nil
}

// Ramp changes the PWM level by one every StepTime cycles, Increments times.
type Ramp struct {
	PreScale   PreScale
	StepTime   int
	Dir        Direction
	Increments int
}

func (i Ramp) Encode() (Word, error) {
	if err := checkPreScale(i.PreScale); err != nil {
		return 0, err
	}
	if err := checkRange("ramp step time", i.StepTime, 1, maxStepTime); err != nil {
		return 0, err
	}
	if err := checkDirection(i.Dir); err != nil {
		return 0, err
	}
	if err := checkRange("ramp increments", i.Increments, 0, maxPWM); err != nil {
		return 0, err
	}
	return Word(i.PreScale)<<14 | Word(i.StepTime)<<9 | Word(i.Dir)<<8 | Word(i.Increments), nil
}

// RampVar is a ramp whose step time and increment count come from variables.
type RampVar struct {
	PreScale      PreScale
	Dir           Direction
	StepTimeVar   Variable
	IncrementsVar Variable
}

func (i RampVar) Encode() (Word, error) {
	if err := checkPreScale(i.PreScale); err != nil {
		return 0, err
	}
	if err := checkDirection(i.Dir); err != nil {
		return 0, err
	}
	if err := checkVar("step time variable", i.StepTimeVar); err != nil {
		return 0, err
	}
	if err := checkVar("increments variable", i.IncrementsVar); err != nil {
		return 0, err
	}
	return opRampVar | Word(i.PreScale)<<6 | Word(i.Dir)<<5 | Word(i.StepTimeVar)<<2 | Word(i.IncrementsVar), nil
}

// Wait pauses for Ticks cycles of PreScale. On the wire it is a ramp with
// no increments.
type Wait struct {
	PreScale PreScale
	Ticks    int
}

func (i Wait) Encode() (Word, error) {
	if err := checkPreScale(i.PreScale); err != nil {
		return 0, err
	}
	if err := checkRange("wait ticks", i.Ticks, 1, maxStepTime); err != nil {
		return 0, err
	}
	return Word(i.PreScale)<<14 | Word(i.Ticks)<<9, nil
}

// Duration returns the nominal wait time.
func (i Wait) Duration() time.Duration { return i.PreScale.Duration() * time.Duration(i.Ticks) }

// ---------------- Branch ----------------

// Rst resets the program counter and starts over.
type Rst struct{}

func (Rst) Encode() (Word, error) { return 0, nil }

// Branch jumps to Target, Loops times (0 loops forever).
type Branch struct {
	Loops  int
	Target int
}

func (i Branch) Encode() (Word, error) {
	if err := checkRange("branch loop count", i.Loops, 0, maxLoops); err != nil {
		return 0, err
	}
	if err := checkRange("branch target", i.Target, 0, maxAddr); err != nil {
		return 0, err
	}
	return opBranch | Word(i.Loops)<<7 | Word(i.Target), nil
}

// BranchVar jumps to Target, repeating as many times as LoopVar holds.
type BranchVar struct {
	LoopVar Variable
	Target  int
}

func (i BranchVar) Encode() (Word, error) {
	if err := checkVar("loop variable", i.LoopVar); err != nil {
		return 0, err
	}
	if err := checkRange("branch target", i.Target, 0, maxAddr); err != nil {
		return 0, err
	}
	return opBranchVar | Word(i.Target)<<2 | Word(i.LoopVar), nil
}

// Int raises the engine interrupt and continues.
type Int struct{}

func (Int) Encode() (Word, error) { return opInt, nil }

// End stops the engine, optionally raising an interrupt and resetting the PC.
type End struct {
	Interrupt bool
	ResetPC   bool
}

func (i End) Encode() (Word, error) {
	w := opEnd
	if i.Interrupt {
		w |= endInterruptBit
	}
	if i.ResetPC {
		w |= endResetBit
	}
	return w, nil
}

// JumpCond selects the comparison of a conditional jump.
type JumpCond uint8

const (
	JumpNE JumpCond = iota // Var1 != Var2
	JumpLT                 // Var1 < Var2
	JumpGE                 // Var1 >= Var2
	JumpEQ                 // Var1 == Var2
)

// Jump skips the next Skip instructions when Cond holds for Var1 and Var2.
type Jump struct {
	Cond       JumpCond
	Skip       int
	Var1, Var2 Variable
}

func (i Jump) Encode() (Word, error) {
	if err := checkRange("jump condition", int(i.Cond), int(JumpNE), int(JumpEQ)); err != nil {
		return 0, err
	}
	if err := checkRange("jump skip", i.Skip, 0, maxSkip); err != nil {
		return 0, err
	}
	if err := checkVar("jump variable 1", i.Var1); err != nil {
		return 0, err
	}
	if err := checkVar("jump variable 2", i.Var2); err != nil {
		return 0, err
	}
	return opJump | Word(i.Cond)<<9 | Word(i.Skip)<<4 | Word(i.Var1)<<2 | Word(i.Var2), nil
}

// ---------------- Arithmetic ----------------

// Ld loads Value into Target.
type Ld struct {
	Target Variable
	Value  int
}

func (i Ld) Encode() (Word, error) { return encodeNumerical(opLd, i.Target, i.Value) }

// Add adds Value to Target (mod 256).
type Add struct {
	Target Variable
	Value  int
}

func (i Add) Encode() (Word, error) { return encodeNumerical(opAdd, i.Target, i.Value) }

// Sub subtracts Value from Target (mod 256).
type Sub struct {
	Target Variable
	Value  int
}

func (i Sub) Encode() (Word, error) { return encodeNumerical(opSub, i.Target, i.Value) }

// AddVar stores Var1 + Var2 into Target.
type AddVar struct {
	Target     Variable
	Var1, Var2 Variable
}

func (i AddVar) Encode() (Word, error) { return encodeArithVar(0, i.Target, i.Var1, i.Var2) }

// SubVar stores Var1 - Var2 into Target.
type SubVar struct {
	Target     Variable
	Var1, Var2 Variable
}

func (i SubVar) Encode() (Word, error) { return encodeArithVar(opSubVarFlag, i.Target, i.Var1, i.Var2) }

func encodeNumerical(op Word, target Variable, value int) (Word, error) {
	if err := checkTarget(target); err != nil {
		return 0, err
	}
	if err := checkRange("value", value, 0, 255); err != nil {
		return 0, err
	}
	return op | Word(target)<<10 | Word(value), nil
}

func encodeArithVar(flag Word, target, v1, v2 Variable) (Word, error) {
	if err := checkTarget(target); err != nil {
		return 0, err
	}
	if err := checkVar("variable 1", v1); err != nil {
		return 0, err
	}
	if err := checkVar("variable 2", v2); err != nil {
		return 0, err
	}
	return opArithVar | flag | Word(target)<<10 | Word(v1)<<2 | Word(v2), nil
}
