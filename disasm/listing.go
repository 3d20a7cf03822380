package disasm

import (
	"fmt"
	"io"
)

// Targets returns the set of addresses referenced by any instruction.
func Targets(ins []Instruction) map[int]bool {
	out := make(map[int]bool)
	for _, in := range ins {
		if in.Branches() {
			out[in.Target] = true
		}
	}
	return out
}

// Fprint writes a listing with one instruction per line and a label line
// before every referenced address.
func Fprint(w io.Writer, ins []Instruction) error {
	labels := Targets(ins)
	for _, in := range ins {
		if labels[in.Offset] {
			if _, err := fmt.Fprintf(w, "L%06X:\n", in.Offset); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  %06X  %-14X %s\n", in.Offset, in.Raw, in); err != nil {
			return err
		}
	}
	return nil
}
