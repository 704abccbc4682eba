// Package hostbus adapts a Linux I2C bus opened through periph.io to the
// tinygo driver Tx shape, so the LP55231 driver runs unchanged on a host.
package hostbus

import (
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"

	"lp55231-go/errcode"
)

// Compile-time check.
var _ drivers.I2C = (*Bus)(nil)

// Bus serialises transactions on one periph bus.
type Bus struct {
	mu  sync.Mutex
	bus i2c.BusCloser
}

// Open registers the host drivers and opens the named bus ("" picks the
// first one, "1" is /dev/i2c-1). A zero speed keeps the bus default.
func Open(name string, speed physic.Frequency) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, errcode.Wrap(errcode.Transport, "host init", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, errcode.Wrap(errcode.Transport, "open i2c bus", err)
	}
	if speed > 0 {
		if err := b.SetSpeed(speed); err != nil {
			_ = b.Close()
			return nil, errcode.Wrap(errcode.Transport, "set i2c speed", err)
		}
	}
	return Wrap(b), nil
}

// Wrap adopts an already open bus.
func Wrap(b i2c.BusCloser) *Bus { return &Bus{bus: b} }

// Tx performs one write-then-read transaction while holding the bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.Tx(addr, w, r)
}

func (b *Bus) String() string { return b.bus.String() }

// Close releases the underlying bus.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.Close()
}
