package lp55231

import "lp55231-go/errcode"

// DecodeError reports a word that is not a valid instruction encoding.
type DecodeError struct{ Word Word }

func (e *DecodeError) Error() string { return "lp55231: invalid instruction word " + e.Word.String() }

func (e *DecodeError) Code() errcode.Code { return errcode.InvalidParams }

// Decode is the inverse of Encode. A word is accepted only if the decoded
// instruction encodes back to exactly the same word.
//
// Words with the ramp opcode and a zero step time are mapping-table data
// (MapChannels), except 0x0000 (Rst) and 0x40xx (SetPWM).
func Decode(w Word) (Instruction, error) {
	in := decode(w)
	if in == nil {
		return nil, &DecodeError{Word: w}
	}
	if back, err := in.Encode(); err != nil || back != w {
		return nil, &DecodeError{Word: w}
	}
	return in, nil
}

// DecodeProgram decodes every word of p.
func DecodeProgram(p Program) ([]Instruction, error) {
	out := make([]Instruction, len(p))
	for i, w := range p {
		in, err := Decode(w)
		if err != nil {
			return nil, err
		}
		out[i] = in
	}
	return out, nil
}

func decode(w Word) Instruction {
	lsb := int(w.LSB())
	switch {
	case w == 0:
		return Rst{}
	case w&0x8000 == 0:
		return decodeRamp(w)
	case w&0xE000 == opBranch:
		return Branch{Loops: int(w>>7) & maxLoops, Target: int(w) & 0x7F}
	case w&0xFF00 == opRampVar:
		if w&0xFFFC == opSetPWMVar {
			return SetPWMVar{Var: Variable(lsb & 3)}
		}
		return RampVar{
			PreScale:      PreScale(lsb >> 6 & 1),
			Dir:           Direction(lsb >> 5 & 1),
			StepTimeVar:   Variable(lsb >> 2 & 3),
			IncrementsVar: Variable(lsb & 3),
		}
	case w&0xFE00 == opBranchVar:
		return BranchVar{LoopVar: Variable(lsb & 3), Target: int(w>>2) & 0x7F}
	case w&0xF800 == opJump:
		return Jump{
			Cond: JumpCond(w >> 9 & 3),
			Skip: int(w>>4) & maxSkip,
			Var1: Variable(lsb >> 2 & 3),
			Var2: Variable(lsb & 3),
		}
	case w&0xF000 == opLd:
		return decodeArith(w)
	case w == opInt:
		return Int{}
	case w&^(endInterruptBit|endResetBit) == opEnd:
		return End{Interrupt: w&endInterruptBit != 0, ResetPC: w&endResetBit != 0}
	}
	return nil
}

func decodeRamp(w Word) Instruction {
	ps := PreScale(w >> 14 & 1)
	step := int(w>>9) & maxStepTime
	dir := Direction(w >> 8 & 1)
	inc := int(w.LSB())
	if step == 0 {
		switch {
		case w&0xFF00 == opSetPWM:
			return SetPWM{Level: inc}
		case w&0xFE00 == 0:
			return MapChannels{Channels: ChannelSet(w & channelBits)}
		}
		return nil
	}
	if inc == 0 && dir == Up {
		return Wait{PreScale: ps, Ticks: step}
	}
	return Ramp{PreScale: ps, StepTime: step, Dir: dir, Increments: inc}
}

func decodeArith(w Word) Instruction {
	target := Variable(w >> 10 & 3)
	lsb := int(w.LSB())
	if target == VarD {
		return decodeMux(w)
	}
	switch w >> 8 & 3 {
	case 0:
		return Ld{Target: target, Value: lsb}
	case 1:
		return Add{Target: target, Value: lsb}
	case 2:
		return Sub{Target: target, Value: lsb}
	}
	v1, v2 := Variable(lsb>>2&3), Variable(lsb&3)
	if w&opSubVarFlag != 0 {
		return SubVar{Target: target, Var1: v1, Var2: v2}
	}
	return AddVar{Target: target, Var1: v1, Var2: v2}
}

func decodeMux(w Word) Instruction {
	addr := int(w.LSB() &^ uint8(mapAddrFlag))
	mapped := w&mapAddrFlag != 0
	switch w & 0xFF00 {
	case opMuxMapStart:
		if mapped {
			return MuxLdEnd{Addr: addr}
		}
		return MuxMapStart{Addr: addr}
	case opMuxLdStart:
		return MuxLdStart{Addr: addr}
	case opMuxLdAddr:
		if mapped {
			return MuxMapAddr{Addr: addr}
		}
		return MuxLdAddr{Addr: addr}
	}
	switch w {
	case opMuxSelect:
		return MuxClr{}
	case opMuxMapNext:
		return MuxMapNext{}
	case opMuxMapPrev:
		return MuxMapPrev{}
	case opMuxLdNext:
		return MuxLdNext{}
	case opMuxLdPrev:
		return MuxLdPrev{}
	}
	return MuxSel{LED: int(w.LSB())}
}
