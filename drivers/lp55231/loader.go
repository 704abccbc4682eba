package lp55231

import "time"

// LoadProgram uploads p into program memory from word 0 and points engine e
// at it.
//
// Program memory is only writable while all three engines are in load mode,
// so every engine must be on hold. The sequence is: all engines disabled,
// all engines in load mode, busy wait, page writes, all engines disabled.
// The chip restores the default entry points afterwards; e's entry point and
// program counter are then set to 0. Engines must be started explicitly.
//
// Oversized programs and engines that are not on hold are rejected before
// any bus traffic.
func (d *Device) LoadProgram(e Engine, p Program) error {
	if !e.Valid() {
		return ErrInvalidEngine
	}
	if len(p) > MaxInstructions {
		return &SizeError{Len: len(p), Max: MaxInstructions}
	}
	if err := d.requireAllHold("load_program"); err != nil {
		return err
	}

	defer d.tr.Scope("load_program(%s, [%d instructions])", e, len(p))()

	if err := d.enterLoadMode(); err != nil {
		return err
	}
	if err := d.enableBurst(); err != nil {
		return err
	}
	for page := 0; page < p.Pages(); page++ {
		lo := page * InstructionsPerPage
		hi := min(lo+InstructionsPerPage, len(p))
		if err := d.writePage(page, p[lo:hi]); err != nil {
			return err
		}
	}
	if err := d.SetEngineModes(Disabled, Disabled, Disabled); err != nil {
		return err
	}

	for i := range d.engines {
		d.engines[i].EntryPoint = uint8(i * defaultEntryPointGap)
	}
	if err := d.SetEngineEntryPoint(e, 0); err != nil {
		return err
	}
	d.engines[e].PC = 0
	return nil
}

// ReadProgram reads the first n words of program memory. Like LoadProgram it
// needs every engine on hold and leaves them all disabled.
func (d *Device) ReadProgram(n int) (Program, error) {
	if err := checkRange("program length", n, 0, MaxInstructions); err != nil {
		return nil, err
	}
	if err := d.requireAllHold("read_program"); err != nil {
		return nil, err
	}

	defer d.tr.Scope("read_program(%d)", n)()

	if err := d.enterLoadMode(); err != nil {
		return nil, err
	}
	if err := d.enableBurst(); err != nil {
		return nil, err
	}
	p := make(Program, 0, n)
	for page := 0; len(p) < n; page++ {
		words, err := d.readPage(page)
		if err != nil {
			return nil, err
		}
		p = append(p, words[:min(InstructionsPerPage, n-len(p))]...)
	}
	if err := d.SetEngineModes(Disabled, Disabled, Disabled); err != nil {
		return nil, err
	}
	return p, nil
}

// WriteProgramPage writes up to 16 words to one program memory page.
// All engines must already be in load mode.
func (d *Device) WriteProgramPage(page int, words []Word) error {
	if err := d.checkPage(page); err != nil {
		return err
	}
	if len(words) > InstructionsPerPage {
		return &SizeError{Len: len(words), Max: InstructionsPerPage}
	}
	if err := d.requireAllLoad("write_program_page"); err != nil {
		return err
	}
	if err := d.enableBurst(); err != nil {
		return err
	}
	return d.writePage(page, words)
}

// ReadProgramPage reads one full program memory page.
// All engines must already be in load mode.
func (d *Device) ReadProgramPage(page int) ([InstructionsPerPage]Word, error) {
	if err := d.checkPage(page); err != nil {
		return [InstructionsPerPage]Word{}, err
	}
	if err := d.requireAllLoad("read_program_page"); err != nil {
		return [InstructionsPerPage]Word{}, err
	}
	if err := d.enableBurst(); err != nil {
		return [InstructionsPerPage]Word{}, err
	}
	return d.readPage(page)
}

// WaitWhileEngineBusy polls ENGINE_BUSY every PollInterval until it clears.
// It returns ErrTimeout once timeout has elapsed with the bit still set.
func (d *Device) WaitWhileEngineBusy(timeout time.Duration) error {
	start := time.Now()
	for {
		st, err := d.Status()
		if err != nil {
			return err
		}
		if !st.EngineBusy() {
			return nil
		}
		if time.Since(start) >= timeout {
			return ErrTimeout
		}
		time.Sleep(d.cfg.PollInterval)
	}
}

// enterLoadMode walks every engine through disabled into load mode and waits
// until program memory is writable.
func (d *Device) enterLoadMode() error {
	if err := d.SetEngineModes(Disabled, Disabled, Disabled); err != nil {
		return err
	}
	if err := d.SetEngineModes(LoadProgram, LoadProgram, LoadProgram); err != nil {
		return err
	}
	if err := d.WaitWhileEngineBusy(d.cfg.LoadTimeout); err != nil {
		return err
	}
	time.Sleep(d.cfg.LoadSettle)
	return nil
}

// enableBurst turns on EN_AUTO_INCR when pages move in one transaction.
func (d *Device) enableBurst() error {
	if !d.cfg.BurstWrites {
		return nil
	}
	return d.updateReg(regMisc, maskEnAutoIncr, 1)
}

func (d *Device) writePage(page int, words []Word) error {
	defer d.tr.Scope("write_program_page(%d, [%d instructions])", page, len(words))()

	if err := d.writeReg(regProgMemPageSel, maskPageSel.With(uint8(page))); err != nil {
		return err
	}
	if d.cfg.BurstWrites {
		var buf [2 * InstructionsPerPage]byte
		for i, w := range words {
			buf[2*i] = w.MSB()
			buf[2*i+1] = w.LSB()
		}
		return d.writeBurst(regProgMemBase, buf[:2*len(words)])
	}
	for i, w := range words {
		reg := regProgMemBase + uint8(2*i)
		if err := d.writeReg(reg, w.MSB()); err != nil {
			return err
		}
		if err := d.writeReg(reg+1, w.LSB()); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) readPage(page int) ([InstructionsPerPage]Word, error) {
	defer d.tr.Scope("read_program_page(%d)", page)()

	var out [InstructionsPerPage]Word
	if err := d.writeReg(regProgMemPageSel, maskPageSel.With(uint8(page))); err != nil {
		return out, err
	}
	if d.cfg.BurstWrites {
		b, err := d.readBurst(regProgMemBase, 2*InstructionsPerPage)
		if err != nil {
			return out, err
		}
		for i := range out {
			out[i] = Word(b[2*i])<<8 | Word(b[2*i+1])
		}
		return out, nil
	}
	for i := range out {
		reg := regProgMemBase + uint8(2*i)
		msb, err := d.readReg(reg)
		if err != nil {
			return out, err
		}
		lsb, err := d.readReg(reg + 1)
		if err != nil {
			return out, err
		}
		out[i] = Word(msb)<<8 | Word(lsb)
	}
	return out, nil
}

func (d *Device) checkPage(page int) error {
	if page < 0 || page >= MaxPages {
		return ErrInvalidPage
	}
	return nil
}

func (d *Device) requireAllHold(op string) error {
	for i, s := range d.engines {
		if s.Exec != Hold {
			to := s
			to.Mode = LoadProgram
			return &TransitionError{Engine: Engine(i), From: s, To: to, Op: op}
		}
	}
	return nil
}

func (d *Device) requireAllLoad(op string) error {
	for i, s := range d.engines {
		if s.Mode != LoadProgram {
			to := s
			to.Mode = LoadProgram
			return &TransitionError{Engine: Engine(i), From: s, To: to, Op: op}
		}
	}
	return nil
}
