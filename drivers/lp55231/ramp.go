package lp55231

import (
	"time"

	"lp55231-go/x/mathx"
	"lp55231-go/x/ramp"
)

var preScaleBases = []time.Duration{CT0_488.Duration(), CT15_625.Duration()}

// RampTo builds the Ramp instruction that moves the PWM level from one value
// to another in about d. The finer prescale is preferred; durations that
// neither prescale can express fail with *RangeError on "ramp duration ms".
func RampTo(from, to int, d time.Duration) (Ramp, error) {
	if err := checkRange("ramp start level", from, 0, maxPWM); err != nil {
		return Ramp{}, err
	}
	if err := checkRange("ramp end level", to, 0, maxPWM); err != nil {
		return Ramp{}, err
	}
	n := mathx.Abs(to - from)
	if n == 0 {
		return Ramp{}, &RangeError{Field: "ramp increments", Value: 0, Min: 1, Max: maxPWM}
	}
	dir := Up
	if to < from {
		dir = Down
	}
	step, err := ramp.Plan(uint16(n), d, preScaleBases, maxStepTime)
	if err != nil {
		longest := CT15_625.Duration() * maxStepTime * time.Duration(n)
		return Ramp{}, &RangeError{
			Field: "ramp duration ms",
			Value: int(d / time.Millisecond),
			Min:   0,
			Max:   int(longest / time.Millisecond),
		}
	}
	return Ramp{PreScale: PreScale(step.Base), StepTime: int(step.Ticks), Dir: dir, Increments: n}, nil
}
