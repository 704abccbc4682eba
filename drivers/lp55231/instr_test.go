package lp55231

import (
	"errors"
	"testing"

	"lp55231-go/errcode"
)

func TestSetPWMRoundTrip(t *testing.T) {
	for level := 0; level <= 255; level++ {
		w, err := Encode(SetPWM{Level: level})
		if err != nil {
			t.Fatalf("SetPWM(%d): %v", level, err)
		}
		if w != 0x4000|Word(level) {
			t.Fatalf("SetPWM(%d) = %s", level, w)
		}
		in, err := Decode(w)
		if err != nil {
			t.Fatalf("Decode(%s): %v", w, err)
		}
		if in != (SetPWM{Level: level}) {
			t.Fatalf("Decode(%s) = %#v", w, in)
		}
	}
}

func TestEncodeWords(t *testing.T) {
	for _, c := range []struct {
		in   Instruction
		want Word
	}{
		{Rst{}, 0x0000},
		{Map(D9), 0x0100},
		{Map(D1, D2, D3), 0x0007},
		{SetPWM{Level: 255}, 0x40FF},
		{Wait{PreScale: CT15_625, Ticks: 30}, 0x7C00},
		{Ramp{PreScale: CT15_625, StepTime: 2, Dir: Down, Increments: 128}, 0x4580},
		{Ramp{PreScale: CT0_488, StepTime: 31, Dir: Down, Increments: 1}, 0x3F01},
		{RampVar{PreScale: CT0_488, Dir: Up, StepTimeVar: VarB, IncrementsVar: VarC}, 0x8406},
		{SetPWMVar{Var: VarD}, 0x8463},
		{Branch{Loops: 0, Target: 1}, 0xA001},
		{Branch{Loops: 63, Target: 95}, 0xBFDF},
		{BranchVar{LoopVar: VarC, Target: 10}, 0x862A},
		{Int{}, 0xC400},
		{End{}, 0xC000},
		{End{Interrupt: true, ResetPC: true}, 0xD800},
		{Jump{Cond: JumpNE, Skip: 1, Var1: VarA, Var2: VarB}, 0x8811},
		{Jump{Cond: JumpEQ, Skip: 3, Var1: VarA, Var2: VarB}, 0x8E31},
		{Ld{Target: VarB, Value: 10}, 0x940A},
		{Add{Target: VarC, Value: 1}, 0x9901},
		{Sub{Target: VarA, Value: 2}, 0x9202},
		{AddVar{Target: VarB, Var1: VarC, Var2: VarD}, 0x970B},
		{SubVar{Target: VarA, Var1: VarA, Var2: VarB}, 0x9311},
		{MuxMapStart{Addr: 0}, 0x9C00},
		{MuxLdEnd{Addr: 5}, 0x9C85},
		{MuxSel{LED: 9}, 0x9D09},
		{MuxClr{}, 0x9D00},
		{MuxMapNext{}, 0x9D80},
		{MuxMapPrev{}, 0x9DC0},
		{MuxLdNext{}, 0x9D81},
		{MuxLdPrev{}, 0x9DC1},
		{MuxLdStart{Addr: 3}, 0x9E03},
		{MuxLdAddr{Addr: 4}, 0x9F04},
		{MuxMapAddr{Addr: 4}, 0x9F84},
	} {
		w, err := Encode(c.in)
		if err != nil {
			t.Errorf("%#v: %v", c.in, err)
			continue
		}
		if w != c.want {
			t.Errorf("%#v = %s, want %s", c.in, w, c.want)
			continue
		}
		back, err := Decode(w)
		if err != nil {
			t.Errorf("Decode(%s): %v", w, err)
			continue
		}
		if back != c.in {
			t.Errorf("Decode(%s) = %#v, want %#v", w, back, c.in)
		}
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	for _, in := range []Instruction{
		SetPWM{Level: -1},
		SetPWM{Level: 256},
		Ramp{StepTime: 0, Increments: 1},
		Ramp{StepTime: 32, Increments: 1},
		Ramp{StepTime: 1, Increments: 256},
		Ramp{PreScale: 2, StepTime: 1},
		Wait{Ticks: 0},
		Wait{Ticks: 32},
		Branch{Loops: 64},
		Branch{Target: 96},
		BranchVar{Target: -1},
		MuxMapStart{Addr: 96},
		MuxSel{LED: 0},
		MuxSel{LED: 17},
		MapChannels{Channels: 1 << 9},
		Ld{Target: VarD, Value: 1},
		Ld{Target: VarA, Value: 256},
		AddVar{Target: VarA, Var1: 4},
		Jump{Skip: 32},
		Jump{Cond: 4},
	} {
		_, err := Encode(in)
		var re *RangeError
		if !errors.As(err, &re) {
			t.Errorf("%#v: err = %v, want *RangeError", in, err)
			continue
		}
		if errcode.Of(err) != errcode.OutOfRange {
			t.Errorf("%#v: code = %q", in, errcode.Of(err))
		}
	}
}

func TestEncodeNil(t *testing.T) {
	if _, err := Encode(nil); !errors.Is(err, ErrNilInstruction) {
		t.Fatalf("Encode(nil) = %v", err)
	}
}

func TestMapChannelsOrderIndependent(t *testing.T) {
	want, err := Encode(Map(D1, D3, D5))
	if err != nil {
		t.Fatal(err)
	}
	if want != 0x0015 {
		t.Fatalf("Map(D1, D3, D5) = %s", want)
	}
	for _, chs := range [][]Channel{
		{D5, D3, D1},
		{D3, D1, D5},
		{D5, D5, D1, D3, D1},
	} {
		got, err := Encode(Map(chs...))
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Map(%v) = %s, want %s", chs, got, want)
		}
	}
}

func TestWaitDecodesAsWait(t *testing.T) {
	// a zero-increment upward ramp is the same word as a wait
	w, err := Encode(Ramp{PreScale: CT0_488, StepTime: 4, Dir: Up, Increments: 0})
	if err != nil {
		t.Fatal(err)
	}
	in, err := Decode(w)
	if err != nil {
		t.Fatal(err)
	}
	if in != (Wait{PreScale: CT0_488, Ticks: 4}) {
		t.Fatalf("Decode(%s) = %#v", w, in)
	}
	if d := in.(Wait).Duration(); d != 4*488*1000 {
		t.Fatalf("Duration = %v", d)
	}
}

func TestRampVarAliasesSetPWMVar(t *testing.T) {
	w, err := Encode(RampVar{PreScale: CT15_625, Dir: Down, StepTimeVar: VarA, IncrementsVar: VarB})
	if err != nil {
		t.Fatal(err)
	}
	in, err := Decode(w)
	if err != nil {
		t.Fatal(err)
	}
	if in != (SetPWMVar{Var: VarB}) {
		t.Fatalf("Decode(%s) = %#v", w, in)
	}
}

func TestDecodeRejects(t *testing.T) {
	for _, w := range []Word{
		0x4100, // prescale with zero step time and sign
		0xFFFF,
		0xE000,
		0x9D11, // mux_sel 17
		0xA060, // branch target 96
		0x8490, // ramp_var reserved bits
		0x9320, // add_var reserved bits
		0x9E80,
		0xC001,
	} {
		_, err := Decode(w)
		var de *DecodeError
		if !errors.As(err, &de) || de.Word != w {
			t.Errorf("Decode(%s) err = %v", w, err)
		}
	}
}

func TestDecodeProgram(t *testing.T) {
	ins := []Instruction{Map(D2), SetPWM{Level: 7}, Branch{Target: 1}}
	p := MustAssemble(ins...)
	got, err := DecodeProgram(p)
	if err != nil {
		t.Fatal(err)
	}
	for i := range ins {
		if got[i] != ins[i] {
			t.Errorf("[%d] = %#v, want %#v", i, got[i], ins[i])
		}
	}
	if _, err := DecodeProgram(Program{0x40FF, 0xFFFF}); err == nil {
		t.Fatal("expected error for invalid word")
	}
}
