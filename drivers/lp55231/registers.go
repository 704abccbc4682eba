package lp55231

const (
	// 7-bit I2C address with ASEL1/ASEL0 tied low.
	AddressDefault = 0x32

	// --- Register addresses (8-bit) ---
	regEnableEngineCntrl1 = 0x00 // CHIP_EN, ENGINEx_EXEC
	regEngineCntrl2       = 0x01 // ENGINEx_MODE
	regOutputRatioMSB     = 0x02 // D9 ratiometric
	regOutputRatioLSB     = 0x03 // D8..D1 ratiometric
	regOutputOnOffMSB     = 0x04 // D9 on/off
	regOutputOnOffLSB     = 0x05 // D8..D1 on/off
	regD1Control          = 0x06 // ..0x0E: LOG_EN, MAPPING
	regD1PWM              = 0x16 // ..0x1E
	regD1Current          = 0x26 // ..0x2E
	regMisc               = 0x36
	regEngine1PC          = 0x37 // ..0x39
	regStatusInterrupt    = 0x3A // read clears interrupt bits
	regINTGPO             = 0x3B
	regVariable           = 0x3C
	regReset              = 0x3D
	regEngine1VarA        = 0x45
	regMasterFader1       = 0x48 // ..0x4A
	regEng1ProgStartAddr  = 0x4C // ..0x4E
	regProgMemPageSel     = 0x4F
	regProgMemBase        = 0x50 // 16 words, MSB at even offsets

	resetValue = 0xFF
)

// Program memory geometry.
const (
	MaxInstructions      = 96
	InstructionsPerPage  = 16
	MaxPages             = MaxInstructions / InstructionsPerPage
	NumEngines           = 3
	NumChannels          = 9
	programCounterMask   = 0x7F
	defaultEntryPointGap = 8
)

// Mask is a contiguous bitfield within a register.
type Mask uint8

const (
	// 0x00 ENABLE / ENGINE CNTRL1
	maskChipEn      Mask = 0b0100_0000
	maskEngine1Exec Mask = 0b0011_0000
	maskEngine2Exec Mask = 0b0000_1100
	maskEngine3Exec Mask = 0b0000_0011

	// 0x01 ENGINE CNTRL2
	maskEngine1Mode Mask = 0b0011_0000
	maskEngine2Mode Mask = 0b0000_1100
	maskEngine3Mode Mask = 0b0000_0011

	// 0x06..0x0E Dx CONTROL
	maskMapping Mask = 0b1100_0000
	maskLogEn   Mask = 0b0010_0000

	// 0x36 MISC
	maskEnAutoIncr Mask = 0b0100_0000
	maskPowersave  Mask = 0b0010_0000
	maskCPMode     Mask = 0b0001_1000
	maskPWMPSEn    Mask = 0b0000_0100
	maskClkDetEn   Mask = 0b0000_0011

	// 0x3A STATUS / INTERRUPT
	maskLEDTestDone Mask = 0b1000_0000
	maskMaskBusy    Mask = 0b0100_0000
	maskStartupBusy Mask = 0b0010_0000
	maskEngineBusy  Mask = 0b0001_0000
	maskExtClkUsed  Mask = 0b0000_1000
	maskEng1Int     Mask = 0b0000_0100
	maskEng2Int     Mask = 0b0000_0010
	maskEng3Int     Mask = 0b0000_0001

	// 0x4F PROG MEM PAGE SEL
	maskPageSel Mask = 0b0000_0111
)

func (m Mask) shift() uint {
	s := uint(0)
	for v := uint8(m); v != 0 && v&1 == 0; v >>= 1 {
		s++
	}
	return s
}

// With places value at the mask bits.
func (m Mask) With(value uint8) uint8 { return (value << m.shift()) & uint8(m) }

// Apply replaces the mask bits of b with value.
func (m Mask) Apply(value, b uint8) uint8 { return b&^uint8(m) | m.With(value) }

// Value extracts the field at the mask bits.
func (m Mask) Value(b uint8) uint8 { return (b & uint8(m)) >> m.shift() }

// IsSet reports whether any mask bit is set in b.
func (m Mask) IsSet(b uint8) bool { return b&uint8(m) != 0 }

func execMask(e Engine) Mask {
	switch e {
	case E1:
		return maskEngine1Exec
	case E2:
		return maskEngine2Exec
	default:
		return maskEngine3Exec
	}
}

func modeMask(e Engine) Mask {
	switch e {
	case E1:
		return maskEngine1Mode
	case E2:
		return maskEngine2Mode
	default:
		return maskEngine3Mode
	}
}

func interruptMask(e Engine) Mask {
	switch e {
	case E1:
		return maskEng1Int
	case E2:
		return maskEng2Int
	default:
		return maskEng3Int
	}
}

func regControl(c Channel) uint8       { return regD1Control + uint8(c) }
func regPWM(c Channel) uint8           { return regD1PWM + uint8(c) }
func regCurrent(c Channel) uint8       { return regD1Current + uint8(c) }
func regFader(f Fader) uint8           { return regMasterFader1 + uint8(f) }
func regProgramCounter(e Engine) uint8 { return regEngine1PC + uint8(e) }
func regEntryPoint(e Engine) uint8     { return regEng1ProgStartAddr + uint8(e) }

// regName labels register addresses in trace output.
func regName(r uint8) string {
	switch {
	case r == regEnableEngineCntrl1:
		return "ENABLE_ENGINE_CNTRL1"
	case r == regEngineCntrl2:
		return "ENGINE_CNTRL2"
	case r == regOutputRatioMSB:
		return "OUTPUT_RATIOMETRIC_MSB"
	case r == regOutputRatioLSB:
		return "OUTPUT_RATIOMETRIC_LSB"
	case r == regOutputOnOffMSB:
		return "OUTPUT_ON_OFF_MSB"
	case r == regOutputOnOffLSB:
		return "OUTPUT_ON_OFF_LSB"
	case r >= regD1Control && r < regD1Control+NumChannels:
		return "D" + string(rune('1'+r-regD1Control)) + "_CONTROL"
	case r >= regD1PWM && r < regD1PWM+NumChannels:
		return "D" + string(rune('1'+r-regD1PWM)) + "_PWM"
	case r >= regD1Current && r < regD1Current+NumChannels:
		return "D" + string(rune('1'+r-regD1Current)) + "_CURRENT_CONTROL"
	case r == regMisc:
		return "MISC"
	case r >= regEngine1PC && r < regEngine1PC+NumEngines:
		return "ENGINE" + string(rune('1'+r-regEngine1PC)) + "_PC"
	case r == regStatusInterrupt:
		return "STATUS_INTERRUPT"
	case r == regINTGPO:
		return "INT_GPO"
	case r == regVariable:
		return "VARIABLE"
	case r == regReset:
		return "RESET"
	case r >= regMasterFader1 && r < regMasterFader1+3:
		return "MASTER_FADER" + string(rune('1'+r-regMasterFader1))
	case r >= regEng1ProgStartAddr && r < regEng1ProgStartAddr+NumEngines:
		return "ENG" + string(rune('1'+r-regEng1ProgStartAddr)) + "_PROG_START_ADDR"
	case r == regProgMemPageSel:
		return "PROG_MEM_PAGE_SEL"
	case r >= regProgMemBase && r < regProgMemBase+2*InstructionsPerPage:
		return "PROG_MEM"
	default:
		return "REG"
	}
}
