package lp55231

import "lp55231-go/x/mathx"

// Program is an encoded instruction sequence ready for LoadProgram.
type Program []Word

// Assemble encodes ins in order. It rejects programs that do not fit in
// program memory and branch or jump targets that fall outside the program.
func Assemble(ins ...Instruction) (Program, error) {
	if len(ins) > MaxInstructions {
		return nil, &SizeError{Len: len(ins), Max: MaxInstructions}
	}
	p := make(Program, len(ins))
	for i, in := range ins {
		w, err := Encode(in)
		if err != nil {
			return nil, err
		}
		if err := checkFlow(in, i, len(ins)); err != nil {
			return nil, err
		}
		p[i] = w
	}
	return p, nil
}

// MustAssemble is Assemble for programs built from constants.
func MustAssemble(ins ...Instruction) Program {
	p, err := Assemble(ins...)
	if err != nil {
		panic(err)
	}
	return p
}

func checkFlow(in Instruction, at, n int) error {
	switch i := in.(type) {
	case Branch:
		return checkRange("branch target", i.Target, 0, n-1)
	case BranchVar:
		return checkRange("branch target", i.Target, 0, n-1)
	case Jump:
		if i.Skip == 0 {
			return nil
		}
		return checkRange("jump skip", i.Skip, 0, n-at-2)
	}
	return nil
}

// Pages returns the number of program memory pages p occupies.
func (p Program) Pages() int {
	return int(mathx.CeilDiv(uint(len(p)), uint(InstructionsPerPage)))
}

// Page returns page n of p, zero-padded to a full page.
func (p Program) Page(n int) [InstructionsPerPage]Word {
	var out [InstructionsPerPage]Word
	lo := n * InstructionsPerPage
	if lo < len(p) {
		copy(out[:], p[lo:])
	}
	return out
}
