package lp55231

// Engine state rules, checked against the cache before any bus write:
//
//	exec: any value at any time; step and execute-once fall back to hold
//	mode disabled, halt: always
//	mode load:           hold, from disabled
//	mode run:            hold
//	program counter:     hold
//
// The safe (re)start order is hold, mode and program counter, then free.

// EngineState returns the cached state of e.
func (d *Device) EngineState(e Engine) EngineState {
	if !e.Valid() {
		return EngineState{}
	}
	return d.engines[e]
}

// SetEngineExec sets the ENGINEx_EXEC field of e. Step and ExecuteOnce run a
// single instruction before the chip returns the engine to Hold, so the cache
// records Hold and the write is not read back.
func (d *Device) SetEngineExec(e Engine, x ExecMode) error {
	if !e.Valid() {
		return ErrInvalidEngine
	}
	if err := checkRange("exec mode", int(x), int(Hold), int(ExecuteOnce)); err != nil {
		return err
	}
	defer d.tr.Scope("set_engine_exec(%s, %s)", e, x)()

	oneShot := x == Step || x == ExecuteOnce
	cur, err := d.readReg(regEnableEngineCntrl1)
	if err != nil {
		return err
	}
	next := execMask(e).Apply(uint8(x), cur)
	if next != cur || oneShot {
		if err := d.write(regEnableEngineCntrl1, next, d.cfg.VerifyWrites && !oneShot); err != nil {
			return err
		}
	}
	if oneShot {
		x = Hold
	}
	d.engines[e].Exec = x
	return nil
}

// SetEngineMode sets the ENGINEx_MODE field of e. Illegal transitions fail
// with *TransitionError and nothing is written; an unchanged mode is a no-op.
func (d *Device) SetEngineMode(e Engine, m EngineMode) error {
	if !e.Valid() {
		return ErrInvalidEngine
	}
	if err := checkRange("engine mode", int(m), int(Disabled), int(Halt)); err != nil {
		return err
	}
	from := d.engines[e]
	if from.Mode == m {
		return nil
	}
	if err := checkModeTransition(e, from, m); err != nil {
		return err
	}
	defer d.tr.Scope("set_engine_mode(%s, %s)", e, m)()

	if err := d.updateReg(regEngineCntrl2, modeMask(e), uint8(m)); err != nil {
		return err
	}
	d.engines[e].Mode = m
	return nil
}

// SetEngineModes sets all three mode fields in one write. Every engine is
// validated first.
func (d *Device) SetEngineModes(m1, m2, m3 EngineMode) error {
	modes := [NumEngines]EngineMode{m1, m2, m3}
	var v uint8
	for i, m := range modes {
		e := Engine(i)
		if err := checkRange("engine mode", int(m), int(Disabled), int(Halt)); err != nil {
			return err
		}
		if m != d.engines[e].Mode {
			if err := checkModeTransition(e, d.engines[e], m); err != nil {
				return err
			}
		}
		v |= modeMask(e).With(uint8(m))
	}
	defer d.tr.Scope("set_engine_modes(%s, %s, %s)", m1, m2, m3)()

	if err := d.writeReg(regEngineCntrl2, v); err != nil {
		return err
	}
	for i, m := range modes {
		d.engines[i].Mode = m
	}
	return nil
}

func checkModeTransition(e Engine, from EngineState, m EngineMode) error {
	ok := true
	switch m {
	case LoadProgram:
		ok = from.Exec == Hold && from.Mode == Disabled
	case RunProgram:
		ok = from.Exec == Hold
	}
	if ok {
		return nil
	}
	to := from
	to.Mode = m
	return &TransitionError{Engine: e, From: from, To: to}
}

// SetEngineProgramCounter sets the PC of e. The engine must be on hold.
func (d *Device) SetEngineProgramCounter(e Engine, pc int) error {
	if !e.Valid() {
		return ErrInvalidEngine
	}
	if err := checkRange("program counter", pc, 0, maxAddr); err != nil {
		return err
	}
	if s := d.engines[e]; s.Exec != Hold {
		return &TransitionError{Engine: e, From: s, To: s, Op: "set_program_counter"}
	}
	defer d.tr.Scope("set_engine_program_counter(%s, %d)", e, pc)()

	if err := d.writeReg(regProgramCounter(e), uint8(pc)); err != nil {
		return err
	}
	d.engines[e].PC = uint8(pc)
	return nil
}

// SetEngineEntryPoint sets the program start address of e. Defaults after
// reset or load are 0, 8 and 16.
func (d *Device) SetEngineEntryPoint(e Engine, addr int) error {
	if !e.Valid() {
		return ErrInvalidEngine
	}
	if err := checkRange("entry point", addr, 0, maxAddr); err != nil {
		return err
	}
	defer d.tr.Scope("set_engine_entry_point(%s, %d)", e, addr)()

	if err := d.writeReg(regEntryPoint(e), uint8(addr)); err != nil {
		return err
	}
	d.engines[e].EntryPoint = uint8(addr)
	return nil
}

// RefreshEngines replaces the cache with the chip's exec, mode, program
// counter and entry point registers.
func (d *Device) RefreshEngines() error {
	defer d.tr.Scope("refresh_engines()")()

	exec, err := d.readReg(regEnableEngineCntrl1)
	if err != nil {
		return err
	}
	mode, err := d.readReg(regEngineCntrl2)
	if err != nil {
		return err
	}
	var next [NumEngines]EngineState
	for i := range next {
		e := Engine(i)
		pc, err := d.readReg(regProgramCounter(e))
		if err != nil {
			return err
		}
		entry, err := d.readReg(regEntryPoint(e))
		if err != nil {
			return err
		}
		next[i] = EngineState{
			Exec:       ExecMode(execMask(e).Value(exec)),
			Mode:       EngineMode(modeMask(e).Value(mode)),
			PC:         pc & programCounterMask,
			EntryPoint: entry & programCounterMask,
		}
	}
	d.engines = next
	return nil
}

// ---------------- Canonical sequences ----------------

// StartEngine runs e from pc: hold, run mode, program counter, free.
func (d *Device) StartEngine(e Engine, pc int) error {
	if !e.Valid() {
		return ErrInvalidEngine
	}
	if err := checkRange("program counter", pc, 0, maxAddr); err != nil {
		return err
	}
	defer d.tr.Scope("start_engine(%s, %d)", e, pc)()

	if err := d.SetEngineExec(e, Hold); err != nil {
		return err
	}
	if err := d.SetEngineMode(e, RunProgram); err != nil {
		return err
	}
	if err := d.SetEngineProgramCounter(e, pc); err != nil {
		return err
	}
	return d.SetEngineExec(e, Free)
}

// PauseEngine puts e on hold; its mode and program counter are kept.
func (d *Device) PauseEngine(e Engine) error { return d.SetEngineExec(e, Hold) }

// ResumeEngine lets a paused engine run again.
func (d *Device) ResumeEngine(e Engine) error {
	if err := d.requireRun(e, Free, "resume"); err != nil {
		return err
	}
	return d.SetEngineExec(e, Free)
}

// JumpEngine moves a running engine to pc: hold, program counter, free.
func (d *Device) JumpEngine(e Engine, pc int) error {
	if err := d.requireRun(e, Free, "jump"); err != nil {
		return err
	}
	if err := checkRange("program counter", pc, 0, maxAddr); err != nil {
		return err
	}
	defer d.tr.Scope("jump_engine(%s, %d)", e, pc)()

	if err := d.SetEngineExec(e, Hold); err != nil {
		return err
	}
	if err := d.SetEngineProgramCounter(e, pc); err != nil {
		return err
	}
	return d.SetEngineExec(e, Free)
}

// StepEngine executes one instruction of a held engine in run mode.
func (d *Device) StepEngine(e Engine) error {
	if err := d.requireRun(e, Step, "step"); err != nil {
		return err
	}
	if s := d.engines[e]; s.Exec != Hold {
		to := s
		to.Exec = Step
		return &TransitionError{Engine: e, From: s, To: to, Op: "step"}
	}
	return d.SetEngineExec(e, Step)
}

// StopEngine puts e on hold and disables it.
func (d *Device) StopEngine(e Engine) error {
	if !e.Valid() {
		return ErrInvalidEngine
	}
	defer d.tr.Scope("stop_engine(%s)", e)()

	if err := d.SetEngineExec(e, Hold); err != nil {
		return err
	}
	return d.SetEngineMode(e, Disabled)
}

func (d *Device) requireRun(e Engine, x ExecMode, op string) error {
	if !e.Valid() {
		return ErrInvalidEngine
	}
	if s := d.engines[e]; s.Mode != RunProgram {
		to := s
		to.Exec = x
		return &TransitionError{Engine: e, From: s, To: to, Op: op}
	}
	return nil
}
