package lp55231

import (
	"errors"
	"sync"
	"time"

	"tinygo.org/x/drivers"
)

// Compile-time checks.
var (
	_ drivers.I2C = (*fakeChip)(nil)
	_ drivers.I2C = (*echoI2C)(nil)
	_ drivers.I2C = (*fixedI2C)(nil)
)

var errNack = errors.New("nack")

type regWrite struct{ reg, val uint8 }

// fakeChip is a register-file LP55231: paged program memory that is only
// reachable in load mode, one-shot exec values that fall back to hold, an
// ENGINE_BUSY bit and optional auto-increment.
type fakeChip struct {
	mu sync.Mutex

	regs [0x80]byte
	prog [MaxPages][2 * InstructionsPerPage]byte

	busyForever bool
	busyReads   int // status reads that still report busy

	txs         int
	statusReads int
	log         []regWrite
	burstTxs    int
}

func newFakeChip() *fakeChip {
	f := &fakeChip{}
	f.reset()
	return f
}

func (f *fakeChip) reset() {
	f.regs = [0x80]byte{}
	for e := 0; e < NumEngines; e++ {
		f.regs[regEng1ProgStartAddr+e] = byte(e * defaultEntryPointGap)
	}
}

func (f *fakeChip) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.txs++
	if addr != AddressDefault || len(w) == 0 {
		return errNack
	}
	reg := w[0]
	if len(w) > 2 {
		f.burstTxs++
	}
	for i, v := range w[1:] {
		f.store(f.at(reg, i), v)
	}
	for i := range r {
		r[i] = f.load(f.at(reg, i))
	}
	return nil
}

func (f *fakeChip) at(reg byte, i int) byte {
	if maskEnAutoIncr.IsSet(f.regs[regMisc]) {
		return reg + byte(i)
	}
	return reg
}

func (f *fakeChip) allLoad() bool {
	return f.regs[regEngineCntrl2] == 0b0001_0101
}

func (f *fakeChip) store(reg, v byte) {
	f.log = append(f.log, regWrite{reg, v})
	switch {
	case reg == regReset:
		if v == resetValue {
			f.reset()
		}
	case reg == regStatusInterrupt:
	case reg >= regProgMemBase && reg < regProgMemBase+2*InstructionsPerPage:
		if f.allLoad() {
			f.prog[f.regs[regProgMemPageSel]%MaxPages][reg-regProgMemBase] = v
		}
	case reg == regEnableEngineCntrl1:
		for e := E1; e <= E3; e++ {
			m := execMask(e)
			if x := ExecMode(m.Value(v)); x == Step || x == ExecuteOnce {
				v = m.Apply(uint8(Hold), v)
			}
		}
		f.regs[reg] = v
	default:
		f.regs[reg&0x7F] = v
	}
}

func (f *fakeChip) load(reg byte) byte {
	switch {
	case reg == regStatusInterrupt:
		f.statusReads++
		if f.busyForever || f.busyReads > 0 {
			if f.busyReads > 0 {
				f.busyReads--
			}
			return uint8(maskEngineBusy)
		}
		return 0
	case reg >= regProgMemBase && reg < regProgMemBase+2*InstructionsPerPage:
		if !f.allLoad() {
			return 0
		}
		return f.prog[f.regs[regProgMemPageSel]%MaxPages][reg-regProgMemBase]
	}
	return f.regs[reg&0x7F]
}

// word returns program memory word i.
func (f *fakeChip) word(i int) Word {
	f.mu.Lock()
	defer f.mu.Unlock()
	pg := f.prog[i/InstructionsPerPage]
	o := 2 * (i % InstructionsPerPage)
	return Word(pg[o])<<8 | Word(pg[o+1])
}

func (f *fakeChip) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.log)
}

// echoI2C answers every read with the last byte written.
type echoI2C struct{ last byte }

func (e *echoI2C) Tx(addr uint16, w, r []byte) error {
	if len(w) > 1 {
		e.last = w[len(w)-1]
	}
	for i := range r {
		r[i] = e.last
	}
	return nil
}

// fixedI2C answers every read with v.
type fixedI2C struct{ v byte }

func (f *fixedI2C) Tx(addr uint16, w, r []byte) error {
	for i := range r {
		r[i] = f.v
	}
	return nil
}

// failI2C fails every transaction.
type failI2C struct{ err error }

func (f *failI2C) Tx(addr uint16, w, r []byte) error { return f.err }

func newTestDevice(bus drivers.I2C, cfg Config) *Device {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 100 * time.Microsecond
	}
	return New(bus, cfg)
}
