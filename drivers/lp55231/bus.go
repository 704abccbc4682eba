package lp55231

import "lp55231-go/errcode"

// I2C single-byte register operations.

func (d *Device) readReg(reg uint8) (uint8, error) {
	d.w[0] = reg
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:1]); err != nil {
		return 0, errcode.Wrap(errcode.Transport, "read "+regName(reg), err)
	}
	v := d.r[0]
	d.tr.Byte(v, "<< 0x%02X %s", reg, regName(reg))
	return v, nil
}

func (d *Device) writeReg(reg, v uint8) error { return d.write(reg, v, d.cfg.VerifyWrites) }

// write stores v at reg and, if verify is set, reads it back.
func (d *Device) write(reg, v uint8, verify bool) error {
	d.tr.Byte(v, ">> 0x%02X %s", reg, regName(reg))
	d.w[0] = reg
	d.w[1] = v
	if err := d.i2c.Tx(d.addr, d.w[:2], nil); err != nil {
		return errcode.Wrap(errcode.Transport, "write "+regName(reg), err)
	}
	if !verify {
		return nil
	}
	got, err := d.readReg(reg)
	if err != nil {
		return err
	}
	if got != v {
		return &VerifyError{Reg: reg, Expected: v, Actual: got}
	}
	return nil
}

// updateReg is the read-modify-write pattern for one bitfield. Nothing is
// written when the field already holds value.
func (d *Device) updateReg(reg uint8, m Mask, value uint8) error {
	cur, err := d.readReg(reg)
	if err != nil {
		return err
	}
	next := m.Apply(value, cur)
	if next == cur {
		return nil
	}
	return d.writeReg(reg, next)
}

// writeBurst writes data to consecutive registers from reg in one
// transaction. The chip must have EN_AUTO_INCR set.
func (d *Device) writeBurst(reg uint8, data []byte) error {
	n := copy(d.w[1:], data)
	d.w[0] = reg
	for i := 0; i < n; i++ {
		d.tr.Byte(d.w[1+i], ">> 0x%02X %s", reg+uint8(i), regName(reg+uint8(i)))
	}
	if err := d.i2c.Tx(d.addr, d.w[:1+n], nil); err != nil {
		return errcode.Wrap(errcode.Transport, "burst write "+regName(reg), err)
	}
	if !d.cfg.VerifyWrites {
		return nil
	}
	var want [2 * InstructionsPerPage]byte
	copy(want[:], d.w[1:1+n])
	got, err := d.readBurst(reg, n)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if got[i] != want[i] {
			return &VerifyError{Reg: reg + uint8(i), Expected: want[i], Actual: got[i]}
		}
	}
	return nil
}

// readBurst reads n consecutive registers from reg into the device read
// buffer and returns it. The result is only valid until the next bus call.
func (d *Device) readBurst(reg uint8, n int) ([]byte, error) {
	if n > len(d.r) {
		n = len(d.r)
	}
	d.w[0] = reg
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:n]); err != nil {
		return nil, errcode.Wrap(errcode.Transport, "burst read "+regName(reg), err)
	}
	for i := 0; i < n; i++ {
		d.tr.Byte(d.r[i], "<< 0x%02X %s", reg+uint8(i), regName(reg+uint8(i)))
	}
	return d.r[:n], nil
}
