package lp55231

import (
	"errors"

	"lp55231-go/errcode"
	"lp55231-go/x/conv"
	"lp55231-go/x/mathx"
)

// Sentinel errors (TinyGo-safe; no fmt).
var (
	ErrTimeout = &errcode.E{C: errcode.Timeout, Msg: "lp55231: engine busy wait timed out"}

	ErrInvalidEngine  = errors.New("lp55231: invalid engine")
	ErrInvalidChannel = errors.New("lp55231: invalid channel")
	ErrInvalidPage    = errors.New("lp55231: invalid program page")
)

// RangeError reports a numeric field outside its chip-defined range.
// Values are never clamped.
type RangeError struct {
	Field    string
	Value    int
	Min, Max int
}

func (e *RangeError) Error() string {
	var a, b, c [20]byte
	return "lp55231: " + e.Field + " " + string(conv.Itoa(a[:], int64(e.Value))) +
		" out of range [" + string(conv.Itoa(b[:], int64(e.Min))) + ":" +
		string(conv.Itoa(c[:], int64(e.Max))) + "]"
}

func (e *RangeError) Code() errcode.Code { return errcode.OutOfRange }

// checkRange returns a *RangeError unless lo <= v <= hi.
func checkRange(field string, v, lo, hi int) error {
	if !mathx.Between(v, lo, hi) {
		return &RangeError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}

// SizeError reports a program longer than program memory.
type SizeError struct {
	Len, Max int
}

func (e *SizeError) Error() string {
	var a, b [20]byte
	return "lp55231: program too large (" + string(conv.Itoa(a[:], int64(e.Len))) +
		" instructions; limit is " + string(conv.Itoa(b[:], int64(e.Max))) + ")"
}

func (e *SizeError) Code() errcode.Code { return errcode.TooLarge }

// VerifyError reports a read-after-write mismatch.
type VerifyError struct {
	Reg      uint8
	Expected uint8
	Actual   uint8
}

func (e *VerifyError) Error() string {
	var r, x, y [8]byte
	return "lp55231: write to register 0x" + string(conv.U8Hex(r[:], e.Reg)) + " " + regName(e.Reg) +
		" failed; read-after-write expecting " + string(conv.U8Bin(x[:], e.Expected)) +
		" but got " + string(conv.U8Bin(y[:], e.Actual))
}

func (e *VerifyError) Code() errcode.Code { return errcode.VerifyFailed }

// TransitionError reports an engine state change rejected before any bus
// traffic. Op names the rejected operation when it is not a plain mode change.
type TransitionError struct {
	Engine Engine
	From   EngineState
	To     EngineState
	Op     string
}

func (e *TransitionError) Error() string {
	s := "lp55231: " + e.Engine.String() + ": invalid transition " + e.From.String() + " -> " + e.To.String()
	if e.Op != "" {
		s += " (" + e.Op + ")"
	}
	return s
}

func (e *TransitionError) Code() errcode.Code { return errcode.InvalidTransition }
