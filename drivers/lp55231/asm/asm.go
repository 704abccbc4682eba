// Package asm reads and writes LP55231 engine programs as text, one
// instruction per line:
//
//	# blink D1, D3 and D5
//	map_channels d1 d3 d5
//	mux_map_start 0
//	mux_ld_end 0
//	set_pwm 0
//	wait ct15_625 30
//	set_pwm 255
//	wait ct15_625 30
//	branch 0 1
//
// Tokens are split shell-style; '#' starts a comment.
package asm

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"lp55231-go/drivers/lp55231"
	"lp55231-go/errcode"
)

// LineError locates a parse or encode failure.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return "line " + strconv.Itoa(e.Line) + ": " + e.Err.Error() }
func (e *LineError) Unwrap() error { return e.Err }

func syntaxErr(msg string) error { return &errcode.E{C: errcode.InvalidParams, Msg: msg} }

// Parse reads a program. Every instruction is encoded as it is read so range
// errors carry their line number.
func Parse(r io.Reader) ([]lp55231.Instruction, error) {
	var out []lp55231.Instruction
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		toks, err := shlex.Split(sc.Text())
		if err != nil {
			return nil, &LineError{Line: n, Err: syntaxErr(err.Error())}
		}
		if len(toks) == 0 {
			continue
		}
		in, err := parseLine(strings.ToLower(toks[0]), toks[1:])
		if err == nil {
			_, err = lp55231.Encode(in)
		}
		if err != nil {
			return nil, &LineError{Line: n, Err: err}
		}
		out = append(out, in)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseString is Parse over a string.
func ParseString(s string) ([]lp55231.Instruction, error) { return Parse(strings.NewReader(s)) }

type args struct {
	op   string
	toks []string
	err  error
}

func (a *args) want(n int) bool {
	if a.err == nil && len(a.toks) != n {
		a.err = syntaxErr(a.op + ": want " + strconv.Itoa(n) + " operands, got " + strconv.Itoa(len(a.toks)))
	}
	return a.err == nil
}

func (a *args) num(i int) int {
	if a.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(a.toks[i], 0, 32)
	if err != nil {
		a.err = syntaxErr(a.op + ": bad number " + strconv.Quote(a.toks[i]))
	}
	return int(v)
}

func (a *args) variable(i int) lp55231.Variable {
	if a.err != nil {
		return 0
	}
	s := strings.ToLower(a.toks[i])
	if len(s) == 1 && s[0] >= 'a' && s[0] <= 'd' {
		return lp55231.Variable(s[0] - 'a')
	}
	a.err = syntaxErr(a.op + ": bad variable " + strconv.Quote(a.toks[i]))
	return 0
}

func (a *args) prescale(i int) lp55231.PreScale {
	if a.err != nil {
		return 0
	}
	for _, p := range []lp55231.PreScale{lp55231.CT0_488, lp55231.CT15_625} {
		if strings.EqualFold(a.toks[i], p.String()) {
			return p
		}
	}
	a.err = syntaxErr(a.op + ": bad prescale " + strconv.Quote(a.toks[i]))
	return 0
}

func (a *args) direction(i int) lp55231.Direction {
	if a.err != nil {
		return 0
	}
	switch strings.ToLower(a.toks[i]) {
	case "up":
		return lp55231.Up
	case "down":
		return lp55231.Down
	}
	a.err = syntaxErr(a.op + ": bad direction " + strconv.Quote(a.toks[i]))
	return 0
}

var jumps = map[string]lp55231.JumpCond{
	"jne": lp55231.JumpNE,
	"jl":  lp55231.JumpLT,
	"jge": lp55231.JumpGE,
	"je":  lp55231.JumpEQ,
}

func parseLine(op string, toks []string) (lp55231.Instruction, error) {
	a := &args{op: op, toks: toks}
	var in lp55231.Instruction
	switch op {
	case "map_channels":
		var set lp55231.ChannelSet
		for _, t := range toks {
			c, ok := parseChannel(t)
			if !ok {
				return nil, syntaxErr(op + ": bad channel " + strconv.Quote(t))
			}
			set |= lp55231.Channels(c)
		}
		in = lp55231.MapChannels{Channels: set}
	case "mux_ld_start":
		if a.want(1) {
			in = lp55231.MuxLdStart{Addr: a.num(0)}
		}
	case "mux_map_start":
		if a.want(1) {
			in = lp55231.MuxMapStart{Addr: a.num(0)}
		}
	case "mux_ld_end":
		if a.want(1) {
			in = lp55231.MuxLdEnd{Addr: a.num(0)}
		}
	case "mux_ld_addr":
		if a.want(1) {
			in = lp55231.MuxLdAddr{Addr: a.num(0)}
		}
	case "mux_map_addr":
		if a.want(1) {
			in = lp55231.MuxMapAddr{Addr: a.num(0)}
		}
	case "mux_sel":
		if a.want(1) {
			in = lp55231.MuxSel{LED: a.num(0)}
		}
	case "mux_clr":
		if a.want(0) {
			in = lp55231.MuxClr{}
		}
	case "mux_map_next":
		if a.want(0) {
			in = lp55231.MuxMapNext{}
		}
	case "mux_map_prev":
		if a.want(0) {
			in = lp55231.MuxMapPrev{}
		}
	case "mux_ld_next":
		if a.want(0) {
			in = lp55231.MuxLdNext{}
		}
	case "mux_ld_prev":
		if a.want(0) {
			in = lp55231.MuxLdPrev{}
		}
	case "set_pwm":
		if a.want(1) {
			in = lp55231.SetPWM{Level: a.num(0)}
		}
	case "set_pwm_var":
		if a.want(1) {
			in = lp55231.SetPWMVar{Var: a.variable(0)}
		}
	case "ramp":
		if a.want(4) {
			in = lp55231.Ramp{PreScale: a.prescale(0), StepTime: a.num(1), Dir: a.direction(2), Increments: a.num(3)}
		}
	case "ramp_var":
		if a.want(4) {
			in = lp55231.RampVar{PreScale: a.prescale(0), Dir: a.direction(1), StepTimeVar: a.variable(2), IncrementsVar: a.variable(3)}
		}
	case "wait":
		if a.want(2) {
			in = lp55231.Wait{PreScale: a.prescale(0), Ticks: a.num(1)}
		}
	case "rst":
		if a.want(0) {
			in = lp55231.Rst{}
		}
	case "branch":
		if a.want(2) {
			in = lp55231.Branch{Loops: a.num(0), Target: a.num(1)}
		}
	case "branch_var":
		if a.want(2) {
			in = lp55231.BranchVar{LoopVar: a.variable(0), Target: a.num(1)}
		}
	case "int":
		if a.want(0) {
			in = lp55231.Int{}
		}
	case "end":
		var e lp55231.End
		for _, t := range toks {
			switch strings.ToLower(t) {
			case "int":
				e.Interrupt = true
			case "rst":
				e.ResetPC = true
			default:
				return nil, syntaxErr("end: bad flag " + strconv.Quote(t))
			}
		}
		in = e
	case "jne", "jl", "jge", "je":
		if a.want(3) {
			in = lp55231.Jump{Cond: jumps[op], Skip: a.num(0), Var1: a.variable(1), Var2: a.variable(2)}
		}
	case "ld", "add", "sub":
		if a.want(2) {
			t, v := a.variable(0), a.num(1)
			switch op {
			case "ld":
				in = lp55231.Ld{Target: t, Value: v}
			case "add":
				in = lp55231.Add{Target: t, Value: v}
			default:
				in = lp55231.Sub{Target: t, Value: v}
			}
		}
	case "add_var", "sub_var":
		if a.want(3) {
			t, v1, v2 := a.variable(0), a.variable(1), a.variable(2)
			if op == "add_var" {
				in = lp55231.AddVar{Target: t, Var1: v1, Var2: v2}
			} else {
				in = lp55231.SubVar{Target: t, Var1: v1, Var2: v2}
			}
		}
	default:
		return nil, syntaxErr("unknown instruction " + strconv.Quote(op))
	}
	if a.err != nil {
		return nil, a.err
	}
	return in, nil
}

func parseChannel(s string) (lp55231.Channel, bool) {
	s = strings.ToLower(s)
	if len(s) != 2 || s[0] != 'd' || s[1] < '1' || s[1] > '9' {
		return 0, false
	}
	return lp55231.Channel(s[1] - '1'), true
}
