package lp55231

import "time"

// Channel identifies one of the nine LED outputs.
type Channel uint8

const (
	D1 Channel = iota
	D2
	D3
	D4
	D5
	D6
	D7
	D8
	D9
)

func (c Channel) Valid() bool { return c < NumChannels }

func (c Channel) String() string {
	if !c.Valid() {
		return "D?"
	}
	return "D" + string(rune('1'+c))
}

// ChannelSet is a mapping-table bit pattern: bit n is channel D(n+1).
type ChannelSet uint16

// Channels builds a set; order and duplicates do not matter.
func Channels(chs ...Channel) ChannelSet {
	var s ChannelSet
	for _, c := range chs {
		s |= 1 << c
	}
	return s
}

func (s ChannelSet) Has(c Channel) bool { return s&(1<<c) != 0 }

// List returns the members in chip order (D1 first).
func (s ChannelSet) List() []Channel {
	var out []Channel
	for c := D1; c <= D9; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Engine identifies one of the three program execution engines.
type Engine uint8

const (
	E1 Engine = iota
	E2
	E3
)

func (e Engine) Valid() bool { return e < NumEngines }

func (e Engine) String() string {
	if !e.Valid() {
		return "E?"
	}
	return "E" + string(rune('1'+e))
}

// Fader identifies a master fader.
type Fader uint8

const (
	F1 Fader = iota
	F2
	F3
)

// ExecMode is the 2-bit ENGINEx_EXEC field: what the engine clock does.
type ExecMode uint8

const (
	Hold ExecMode = iota
	Step
	Free
	ExecuteOnce
)

func (x ExecMode) String() string {
	switch x {
	case Hold:
		return "hold"
	case Step:
		return "step"
	case Free:
		return "free"
	case ExecuteOnce:
		return "execute-once"
	default:
		return "exec?"
	}
}

// EngineMode is the 2-bit ENGINEx_MODE field.
type EngineMode uint8

const (
	Disabled EngineMode = iota
	LoadProgram
	RunProgram
	Halt
)

func (m EngineMode) String() string {
	switch m {
	case Disabled:
		return "disabled"
	case LoadProgram:
		return "load"
	case RunProgram:
		return "run"
	case Halt:
		return "halt"
	default:
		return "mode?"
	}
}

// EngineState is the controller's cached view of one engine.
type EngineState struct {
	Exec       ExecMode
	Mode       EngineMode
	PC         uint8
	EntryPoint uint8
}

func (s EngineState) String() string { return s.Exec.String() + "+" + s.Mode.String() }

// PreScale selects the ramp/wait cycle time.
type PreScale uint8

const (
	CT0_488  PreScale = iota // 0.488 ms
	CT15_625                 // 15.625 ms
)

// Duration returns the length of one cycle.
func (p PreScale) Duration() time.Duration {
	if p == CT15_625 {
		return 15625 * time.Microsecond
	}
	return 488 * time.Microsecond
}

func (p PreScale) String() string {
	if p == CT15_625 {
		return "ct15_625"
	}
	return "ct0_488"
}

// Direction of a ramp.
type Direction uint8

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// Variable is one of the engine variables.
type Variable uint8

const (
	VarA Variable = iota
	VarB
	VarC
	VarD
)

func (v Variable) String() string {
	if v > VarD {
		return "?"
	}
	return string(rune('a' + v))
}

// ChargePumpMode is the MISC CP_MODE field.
type ChargePumpMode uint8

const (
	ChargePumpOff ChargePumpMode = iota
	ChargePumpBypass
	ChargePumpBoosted
	ChargePumpAuto
)

// ClockSelection is the MISC CLK_DET_EN/INT_CLK_EN field.
type ClockSelection uint8

const (
	ClockForceExternal ClockSelection = iota
	ClockForceInternal
	ClockAutomatic
	ClockPreferInternal
)

// Misc mirrors the MISC register.
type Misc struct {
	AutoIncrement  bool // EN_AUTO_INCR
	Powersave      bool // POWERSAVE_EN
	ChargePump     ChargePumpMode
	PWMPowersave   bool // PWM_PS_EN
	ClockSelection ClockSelection
}

func (m Misc) encode() uint8 {
	return maskEnAutoIncr.With(b2u(m.AutoIncrement)) |
		maskPowersave.With(b2u(m.Powersave)) |
		maskCPMode.With(uint8(m.ChargePump)) |
		maskPWMPSEn.With(b2u(m.PWMPowersave)) |
		maskClkDetEn.With(uint8(m.ClockSelection))
}

func decodeMisc(v uint8) Misc {
	return Misc{
		AutoIncrement:  maskEnAutoIncr.IsSet(v),
		Powersave:      maskPowersave.IsSet(v),
		ChargePump:     ChargePumpMode(maskCPMode.Value(v)),
		PWMPowersave:   maskPWMPSEn.IsSet(v),
		ClockSelection: ClockSelection(maskClkDetEn.Value(v)),
	}
}

// Status mirrors the STATUS/INTERRUPT register.
type Status uint8

func (s Status) LEDTestDone() bool             { return maskLEDTestDone.IsSet(uint8(s)) }
func (s Status) MaskBusy() bool                { return maskMaskBusy.IsSet(uint8(s)) }
func (s Status) StartupBusy() bool             { return maskStartupBusy.IsSet(uint8(s)) }
func (s Status) EngineBusy() bool              { return maskEngineBusy.IsSet(uint8(s)) }
func (s Status) ExternalClock() bool           { return maskExtClkUsed.IsSet(uint8(s)) }
func (s Status) EngineInterrupt(e Engine) bool { return interruptMask(e).IsSet(uint8(s)) }

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
