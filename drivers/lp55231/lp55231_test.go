package lp55231

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"lp55231-go/errcode"
)

func TestNewDefaults(t *testing.T) {
	d := New(newFakeChip(), Config{})
	cfg := d.Config()
	if cfg.Address != AddressDefault || cfg.PollInterval != 250*time.Microsecond ||
		cfg.LoadTimeout != 50*time.Millisecond || cfg.LoadSettle != time.Millisecond {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	for e := E1; e <= E3; e++ {
		s := d.EngineState(e)
		if s.Exec != Hold || s.Mode != Disabled || s.EntryPoint != uint8(e)*8 {
			t.Fatalf("%s initial state = %+v", e, s)
		}
	}
}

func TestVerifyEchoNeverFails(t *testing.T) {
	d := newTestDevice(&echoI2C{}, Config{VerifyWrites: true})
	for c := D1; c <= D9; c++ {
		for _, v := range []uint8{0, 1, 0x55, 0xAA, 0xFF} {
			if err := d.SetChannelPWM(c, v); err != nil {
				t.Fatalf("SetChannelPWM(%s, %d): %v", c, v, err)
			}
			if err := d.SetChannelCurrent(c, v); err != nil {
				t.Fatalf("SetChannelCurrent(%s, %d): %v", c, v, err)
			}
		}
	}
}

func TestVerifyWrongValueFails(t *testing.T) {
	d := newTestDevice(&fixedI2C{v: 0xAA}, Config{VerifyWrites: true})
	for c := D1; c <= D9; c++ {
		for _, v := range []uint8{0, 0x55, 0xFF} {
			err := d.SetChannelPWM(c, v)
			var ve *VerifyError
			if !errors.As(err, &ve) {
				t.Fatalf("SetChannelPWM(%s, %d) err = %v", c, v, err)
			}
			if ve.Reg != regPWM(c) || ve.Expected != v || ve.Actual != 0xAA {
				t.Fatalf("VerifyError = %+v", ve)
			}
			if errcode.Of(err) != errcode.VerifyFailed {
				t.Fatalf("code = %q", errcode.Of(err))
			}
		}
	}
}

func TestVerifyDisabled(t *testing.T) {
	d := newTestDevice(&fixedI2C{v: 0xAA}, Config{})
	if err := d.SetChannelPWM(D1, 1); err != nil {
		t.Fatal(err)
	}
}

func TestTransportErrorWrapped(t *testing.T) {
	cause := errors.New("bus stuck")
	d := newTestDevice(&failI2C{err: cause}, Config{})
	for name, op := range map[string]func() error{
		"write":  func() error { return d.SetFaderIntensity(F1, 10) },
		"read":   d.ClearInterrupt,
		"rmw":    func() error { return d.SetEnabled(true) },
		"engine": func() error { return d.StartEngine(E1, 0) },
	} {
		err := op()
		if !errors.Is(err, cause) {
			t.Errorf("%s: err = %v, want wrapped cause", name, err)
		}
		if errcode.Of(err) != errcode.Transport {
			t.Errorf("%s: code = %q", name, errcode.Of(err))
		}
	}
}

func TestChipControls(t *testing.T) {
	f := newFakeChip()
	d := newTestDevice(f, Config{VerifyWrites: true})

	if err := d.SetEnabled(true); err != nil {
		t.Fatal(err)
	}
	if on, err := d.Enabled(); err != nil || !on {
		t.Fatalf("Enabled = %v, %v", on, err)
	}
	if err := d.SetChannelEnabled(D9, true); err != nil {
		t.Fatal(err)
	}
	if err := d.SetChannelEnabled(D3, true); err != nil {
		t.Fatal(err)
	}
	if err := d.SetRatiometricDimming(D8, true); err != nil {
		t.Fatal(err)
	}
	if err := d.SetLogBrightness(D2, true); err != nil {
		t.Fatal(err)
	}
	if err := d.AssignToFader(D2, F2); err != nil {
		t.Fatal(err)
	}
	want := map[uint8]uint8{
		regEnableEngineCntrl1: 0x40,
		regOutputOnOffMSB:     0x01,
		regOutputOnOffLSB:     0x04,
		regOutputRatioLSB:     0x80,
		regControl(D2):        0x20 | 0x80,
	}
	for reg, v := range want {
		if f.regs[reg] != v {
			t.Errorf("reg 0x%02X = %08b, want %08b", reg, f.regs[reg], v)
		}
	}

	if err := d.AssignToFader(D2, NoFader); err != nil {
		t.Fatal(err)
	}
	if f.regs[regControl(D2)] != 0x20 {
		t.Fatalf("fader not cleared: %08b", f.regs[regControl(D2)])
	}
	if err := d.AssignToFader(D2, Fader(7)); errcode.Of(err) != errcode.OutOfRange {
		t.Fatalf("bad fader err = %v", err)
	}
	if err := d.SetChannelPWM(Channel(9), 1); !errors.Is(err, ErrInvalidChannel) {
		t.Fatalf("bad channel err = %v", err)
	}

	m := Misc{AutoIncrement: true, ChargePump: ChargePumpAuto, ClockSelection: ClockForceInternal}
	if err := d.SetMisc(m); err != nil {
		t.Fatal(err)
	}
	if got, err := d.Misc(); err != nil || got != m {
		t.Fatalf("Misc = %+v, %v", got, err)
	}
	if f.regs[regMisc] != 0b0101_1001 {
		t.Fatalf("MISC = %08b", f.regs[regMisc])
	}

	// unchanged bitfields are not rewritten
	n := f.writes()
	if err := d.SetLogBrightness(D2, true); err != nil {
		t.Fatal(err)
	}
	if f.writes() != n {
		t.Fatal("unchanged bitfield was rewritten")
	}

	if err := d.Reset(); err != nil {
		t.Fatal(err)
	}
	if f.regs[regEnableEngineCntrl1] != 0 || f.regs[regMisc] != 0 {
		t.Fatal("reset did not clear registers")
	}
}

func TestStatus(t *testing.T) {
	f := newFakeChip()
	f.busyReads = 1
	d := newTestDevice(f, Config{})
	st, err := d.Status()
	if err != nil {
		t.Fatal(err)
	}
	if !st.EngineBusy() || st.EngineInterrupt(E1) {
		t.Fatalf("status = %08b", uint8(st))
	}
	if st := Status(0x05); !st.EngineInterrupt(E1) || !st.EngineInterrupt(E3) || st.EngineInterrupt(E2) {
		t.Fatal("interrupt bits misread")
	}
}

func TestTraceOutput(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDevice(newFakeChip(), Config{Debug: true, Trace: &buf})
	if err := d.SetEnabled(true); err != nil {
		t.Fatal(err)
	}
	want := "set_enabled(true) {\n" +
		"  00000000 << 0x00 ENABLE_ENGINE_CNTRL1\n" +
		"  01000000 >> 0x00 ENABLE_ENGINE_CNTRL1\n" +
		"}\n"
	if buf.String() != want {
		t.Fatalf("trace =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestTraceNested(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDevice(newFakeChip(), Config{Debug: true, Trace: &buf})
	if err := d.StopEngine(E2); err != nil {
		t.Fatal(err)
	}
	want := "stop_engine(E2) {\n" +
		"  set_engine_exec(E2, hold) {\n" +
		"    00000000 << 0x00 ENABLE_ENGINE_CNTRL1\n" +
		"  }\n" +
		"}\n"
	if buf.String() != want {
		t.Fatalf("trace =\n%s\nwant\n%s", buf.String(), want)
	}
}
