package asm

import (
	"fmt"
	"io"
	"strings"

	"lp55231-go/drivers/lp55231"
)

var jumpNames = [...]string{
	lp55231.JumpNE: "jne",
	lp55231.JumpLT: "jl",
	lp55231.JumpGE: "jge",
	lp55231.JumpEQ: "je",
}

// Format renders in as one line that Parse reads back to the same value.
func Format(in lp55231.Instruction) string {
	switch i := in.(type) {
	case lp55231.MapChannels:
		var b strings.Builder
		b.WriteString("map_channels")
		for _, c := range i.Channels.List() {
			b.WriteString(" " + strings.ToLower(c.String()))
		}
		return b.String()
	case lp55231.MuxLdStart:
		return fmt.Sprintf("mux_ld_start %d", i.Addr)
	case lp55231.MuxMapStart:
		return fmt.Sprintf("mux_map_start %d", i.Addr)
	case lp55231.MuxLdEnd:
		return fmt.Sprintf("mux_ld_end %d", i.Addr)
	case lp55231.MuxLdAddr:
		return fmt.Sprintf("mux_ld_addr %d", i.Addr)
	case lp55231.MuxMapAddr:
		return fmt.Sprintf("mux_map_addr %d", i.Addr)
	case lp55231.MuxSel:
		return fmt.Sprintf("mux_sel %d", i.LED)
	case lp55231.MuxClr:
		return "mux_clr"
	case lp55231.MuxMapNext:
		return "mux_map_next"
	case lp55231.MuxMapPrev:
		return "mux_map_prev"
	case lp55231.MuxLdNext:
		return "mux_ld_next"
	case lp55231.MuxLdPrev:
		return "mux_ld_prev"
	case lp55231.SetPWM:
		return fmt.Sprintf("set_pwm %d", i.Level)
	case lp55231.SetPWMVar:
		return "set_pwm_var " + i.Var.String()
	case lp55231.Ramp:
		return fmt.Sprintf("ramp %s %d %s %d", i.PreScale, i.StepTime, i.Dir, i.Increments)
	case lp55231.RampVar:
		return fmt.Sprintf("ramp_var %s %s %s %s", i.PreScale, i.Dir, i.StepTimeVar, i.IncrementsVar)
	case lp55231.Wait:
		return fmt.Sprintf("wait %s %d", i.PreScale, i.Ticks)
	case lp55231.Rst:
		return "rst"
	case lp55231.Branch:
		return fmt.Sprintf("branch %d %d", i.Loops, i.Target)
	case lp55231.BranchVar:
		return fmt.Sprintf("branch_var %s %d", i.LoopVar, i.Target)
	case lp55231.Int:
		return "int"
	case lp55231.End:
		s := "end"
		if i.Interrupt {
			s += " int"
		}
		if i.ResetPC {
			s += " rst"
		}
		return s
	case lp55231.Jump:
		name := "j?"
		if int(i.Cond) < len(jumpNames) {
			name = jumpNames[i.Cond]
		}
		return fmt.Sprintf("%s %d %s %s", name, i.Skip, i.Var1, i.Var2)
	case lp55231.Ld:
		return fmt.Sprintf("ld %s %d", i.Target, i.Value)
	case lp55231.Add:
		return fmt.Sprintf("add %s %d", i.Target, i.Value)
	case lp55231.Sub:
		return fmt.Sprintf("sub %s %d", i.Target, i.Value)
	case lp55231.AddVar:
		return fmt.Sprintf("add_var %s %s %s", i.Target, i.Var1, i.Var2)
	case lp55231.SubVar:
		return fmt.Sprintf("sub_var %s %s %s", i.Target, i.Var1, i.Var2)
	}
	return fmt.Sprintf("# unknown %T", in)
}

// Disassemble writes one line per word: index, word and instruction.
// Words that do not decode are written as comments and do not stop the
// listing.
func Disassemble(w io.Writer, p lp55231.Program) error {
	for i, word := range p {
		text := "# invalid"
		if in, err := lp55231.Decode(word); err == nil {
			text = Format(in)
		}
		if _, err := fmt.Fprintf(w, "%02d  %s  %s\n", i, word, text); err != nil {
			return err
		}
	}
	return nil
}
