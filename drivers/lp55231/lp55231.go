// Package lp55231 drives the TI LP55231 nine-channel LED controller over I2C.
//
// Design notes (datasheet references):
// • Single-byte registers, write-register-then-read; auto-increment optional.
// • Three program engines share a 96-word program memory (6 pages x 16).
// • Program memory is reachable only while every engine is in load mode,
// and load mode is reachable only from disabled.
// • Engine state changes are validated locally against a cached view of the
// three engines before any bus traffic.
//
// A Device is not safe for concurrent use. Callers that share one across
// goroutines must serialise access themselves.
package lp55231

import (
	"io"
	"os"
	"time"

	"tinygo.org/x/drivers"

	"lp55231-go/x/trace"
)

// Config controls non-hardware behaviour. Zero fields take the defaults of
// DefaultConfig.
type Config struct {
	// Address defaults to 0x32 if zero.
	Address uint16
	// VerifyWrites reads every written register back and fails with
	// *VerifyError on mismatch.
	VerifyWrites bool
	// Debug enables trace output to Trace, or stdout if Trace is nil.
	Debug bool
	Trace io.Writer
	// PollInterval is the busy-bit polling period. Default 250 µs.
	PollInterval time.Duration
	// LoadTimeout bounds the busy wait after entering load mode. Default 50 ms.
	LoadTimeout time.Duration
	// LoadSettle is slept after the busy bit clears, before the first program
	// memory write. Default 1 ms (datasheet minimum).
	LoadSettle time.Duration
	// BurstWrites writes each program page in one transaction, turning on
	// EN_AUTO_INCR first if needed.
	BurstWrites bool
}

// DefaultConfig returns the configuration New falls back to.
func DefaultConfig() Config {
	return Config{
		Address:      AddressDefault,
		PollInterval: 250 * time.Microsecond,
		LoadTimeout:  50 * time.Millisecond,
		LoadSettle:   time.Millisecond,
	}
}

// Device is one LP55231 on an I2C bus.
type Device struct {
	i2c  drivers.I2C
	addr uint16
	cfg  Config
	tr   *trace.Tracer

	engines [NumEngines]EngineState

	// Fixed buffers to avoid per-call heap allocations.
	w [1 + 2*InstructionsPerPage]byte
	r [2 * InstructionsPerPage]byte
}

// New creates a Device. The bus must already be configured; New does not
// touch the chip. The engine cache starts at the power-on state (hold,
// disabled, default entry points); call RefreshEngines to resync with a chip
// that has already been used.
func New(i2c drivers.I2C, cfg Config) *Device {
	def := DefaultConfig()
	if cfg.Address == 0 {
		cfg.Address = def.Address
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = def.LoadTimeout
	}
	if cfg.LoadSettle <= 0 {
		cfg.LoadSettle = def.LoadSettle
	}
	var tr *trace.Tracer
	if cfg.Debug {
		w := cfg.Trace
		if w == nil {
			w = os.Stdout
		}
		tr = trace.New(w)
	}
	d := &Device{i2c: i2c, addr: cfg.Address, cfg: cfg, tr: tr}
	d.resetCache()
	return d
}

// Config returns the effective configuration.
func (d *Device) Config() Config { return d.cfg }

func (d *Device) resetCache() {
	for e := range d.engines {
		d.engines[e] = EngineState{EntryPoint: uint8(e * defaultEntryPointGap)}
	}
}

// ---------------- Chip control ----------------

// Reset restores every register to its power-on value.
func (d *Device) Reset() error {
	defer d.tr.Scope("reset()")()
	if err := d.write(regReset, resetValue, false); err != nil {
		return err
	}
	d.resetCache()
	return nil
}

// Enabled reports CHIP_EN.
func (d *Device) Enabled() (bool, error) {
	defer d.tr.Scope("is_enabled()")()
	v, err := d.readReg(regEnableEngineCntrl1)
	return maskChipEn.IsSet(v), err
}

// SetEnabled sets or clears CHIP_EN, leaving the exec bits alone.
func (d *Device) SetEnabled(on bool) error {
	defer d.tr.Scope("set_enabled(%t)", on)()
	return d.updateReg(regEnableEngineCntrl1, maskChipEn, b2u(on))
}

// Misc reads the MISC register.
func (d *Device) Misc() (Misc, error) {
	defer d.tr.Scope("get_misc_settings()")()
	v, err := d.readReg(regMisc)
	if err != nil {
		return Misc{}, err
	}
	return decodeMisc(v), nil
}

// SetMisc overwrites the MISC register.
func (d *Device) SetMisc(m Misc) error {
	defer d.tr.Scope("set_misc_settings(%+v)", m)()
	if err := checkRange("charge pump mode", int(m.ChargePump), 0, int(ChargePumpAuto)); err != nil {
		return err
	}
	if err := checkRange("clock selection", int(m.ClockSelection), 0, int(ClockPreferInternal)); err != nil {
		return err
	}
	return d.writeReg(regMisc, m.encode())
}

// SetChannelPWM sets the direct PWM (luminance) of c.
func (d *Device) SetChannelPWM(c Channel, pwm uint8) error {
	if !c.Valid() {
		return ErrInvalidChannel
	}
	defer d.tr.Scope("set_channel_pwm(%s, %d)", c, pwm)()
	return d.writeReg(regPWM(c), pwm)
}

// SetChannelCurrent sets the output current of c in 100 µA steps.
func (d *Device) SetChannelCurrent(c Channel, current uint8) error {
	if !c.Valid() {
		return ErrInvalidChannel
	}
	defer d.tr.Scope("set_channel_current(%s, %d)", c, current)()
	return d.writeReg(regCurrent(c), current)
}

// SetLogBrightness toggles logarithmic PWM for c.
func (d *Device) SetLogBrightness(c Channel, on bool) error {
	if !c.Valid() {
		return ErrInvalidChannel
	}
	defer d.tr.Scope("set_log_brightness(%s, %t)", c, on)()
	return d.updateReg(regControl(c), maskLogEn, b2u(on))
}

// SetRatiometricDimming toggles ratiometric dimming for c.
func (d *Device) SetRatiometricDimming(c Channel, on bool) error {
	if !c.Valid() {
		return ErrInvalidChannel
	}
	defer d.tr.Scope("set_ratiometric_dimming(%s, %t)", c, on)()
	if c == D9 {
		return d.writeReg(regOutputRatioMSB, b2u(on))
	}
	return d.updateReg(regOutputRatioLSB, Mask(1)<<c, b2u(on))
}

// SetChannelEnabled switches output c on or off.
func (d *Device) SetChannelEnabled(c Channel, on bool) error {
	if !c.Valid() {
		return ErrInvalidChannel
	}
	defer d.tr.Scope("set_channel_enabled(%s, %t)", c, on)()
	if c == D9 {
		return d.writeReg(regOutputOnOffMSB, b2u(on))
	}
	return d.updateReg(regOutputOnOffLSB, Mask(1)<<c, b2u(on))
}

// NoFader detaches a channel from every master fader.
const NoFader Fader = 0xFF

// AssignToFader binds c to f, or to none with NoFader.
func (d *Device) AssignToFader(c Channel, f Fader) error {
	if !c.Valid() {
		return ErrInvalidChannel
	}
	defer d.tr.Scope("assign_to_fader(%s, %d)", c, f)()
	var bits uint8
	switch f {
	case NoFader:
	case F1, F2, F3:
		bits = uint8(f) + 1
	default:
		return checkRange("fader", int(f), int(F1), int(F3))
	}
	return d.updateReg(regControl(c), maskMapping, bits)
}

// SetFaderIntensity sets master fader f; every assigned channel follows.
func (d *Device) SetFaderIntensity(f Fader, intensity uint8) error {
	if err := checkRange("fader", int(f), int(F1), int(F3)); err != nil {
		return err
	}
	defer d.tr.Scope("set_fader_intensity(%d, %d)", f, intensity)()
	return d.writeReg(regFader(f), intensity)
}

// Status reads STATUS/INTERRUPT. Reading clears the engine interrupt bits.
func (d *Device) Status() (Status, error) {
	v, err := d.readReg(regStatusInterrupt)
	return Status(v), err
}

// ClearInterrupt acknowledges pending engine interrupts.
func (d *Device) ClearInterrupt() error {
	defer d.tr.Scope("clear_interrupt()")()
	_, err := d.readReg(regStatusInterrupt)
	return err
}
