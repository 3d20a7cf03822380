package disasm

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrPlaceholder = errors.New("unresolved placeholder")
	ErrBadTarget   = errors.New("address operand does not point at an instruction")
)

// Verify decodes b and checks that no placeholder survived and that every
// address operand lands on an instruction boundary inside the buffer.
func Verify(b []byte) error {
	ins, err := Decode(b)
	if err != nil {
		return err
	}
	for _, in := range ins {
		if in.Op == OpLoopPlaceholder {
			return fmt.Errorf("%w at %#06x", ErrPlaceholder, in.Offset)
		}
		if !in.Branches() {
			continue
		}
		if i := Find(ins, in.Target); i < 0 {
			return fmt.Errorf("%w: %v at %#06x -> %#06x", ErrBadTarget, in.Op, in.Offset, in.Target)
		}
	}
	return nil
}

// Find returns the index of the instruction starting at off, or -1.
func Find(ins []Instruction, off int) int {
	i := sort.Search(len(ins), func(i int) bool { return ins[i].Offset >= off })
	if i < len(ins) && ins[i].Offset == off {
		return i
	}
	return -1
}

// Containing returns the index of the instruction covering off, or -1.
func Containing(ins []Instruction, off int) int {
	i := sort.Search(len(ins), func(i int) bool { return ins[i].Offset > off }) - 1
	if i >= 0 && off < ins[i].Offset+ins[i].Len() {
		return i
	}
	return -1
}
