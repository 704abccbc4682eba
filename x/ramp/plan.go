// Package ramp plans linear brightness ramps for hardware that steps a level
// by one count every N ticks of a fixed time base.
package ramp

import (
	"errors"
	"time"

	"lp55231-go/x/mathx"
)

// ErrNoFit is returned when no time base can express the requested step period.
var ErrNoFit = errors.New("ramp: step period does not fit any time base")

// Step describes one ramp step: Ticks periods of Bases[Base].
type Step struct {
	Base   int
	Ticks  uint16
	Period time.Duration
}

// Total returns the duration of a ramp of n steps.
func (s Step) Total(n uint16) time.Duration { return s.Period * time.Duration(n) }

// Plan finds the step timing for a ramp of n level steps lasting about total.
// bases must be sorted from finest to coarsest. The first base whose rounded
// tick count lies in [1, maxTicks] wins; periods shorter than one tick of the
// finest base snap to a single tick.
func Plan(n uint16, total time.Duration, bases []time.Duration, maxTicks uint16) (Step, error) {
	if n == 0 || total <= 0 || len(bases) == 0 || maxTicks == 0 {
		return Step{}, ErrNoFit
	}
	per := uint64(total) / uint64(n)
	for i, b := range bases {
		if b <= 0 {
			continue
		}
		ticks := mathx.RoundDiv(per, uint64(b))
		if ticks == 0 && i == 0 {
			ticks = 1
		}
		if mathx.Between(ticks, 1, uint64(maxTicks)) {
			return Step{Base: i, Ticks: uint16(ticks), Period: b * time.Duration(ticks)}, nil
		}
	}
	return Step{}, ErrNoFit
}
