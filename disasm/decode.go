// Package disasm decodes compiled BMS bytecode and rhythm index containers.
package disasm

import (
	"bytes"
	"errors"
	"fmt"

	"midi2bms/bms"
)

// ErrUnknownOpcode is returned for a tag byte outside the instruction set.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Op names an instruction kind.
type Op int

const (
	OpNote Op = iota
	OpNoteOff
	OpBarIndex
	OpParam
	OpPitchBend
	OpOpenTrack
	OpCall
	OpReturn
	OpJump
	OpParamWide
	OpTempo
	OpBankPatch
	OpPatch
	OpDelay
	OpEnd
	OpLoopPlaceholder
)

var opNames = map[Op]string{
	OpNote:            "note",
	OpNoteOff:         "noteoff",
	OpBarIndex:        "bar",
	OpParam:           "param",
	OpPitchBend:       "bend",
	OpOpenTrack:       "open",
	OpCall:            "call",
	OpReturn:          "ret",
	OpJump:            "jump",
	OpParamWide:       "paramw",
	OpTempo:           "tempo",
	OpBankPatch:       "bankpatch",
	OpPatch:           "patch",
	OpDelay:           "delay",
	OpEnd:             "end",
	OpLoopPlaceholder: "loop?",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "unknown"
}

// Instruction is one decoded instruction.
type Instruction struct {
	Offset int
	Op     Op
	Raw    []byte // tag and operands
	Target int    // absolute address operand, or -1
	Value  int    // delay ticks, tempo, voice, bar index, ...
}

// Len returns the encoded size.
func (in Instruction) Len() int {
	return len(in.Raw)
}

// Branches reports whether the instruction carries an address.
func (in Instruction) Branches() bool {
	return in.Target >= 0
}

// fixed operand counts by tag
var operands = map[byte]struct {
	op Op
	n  int
}{
	bms.OpBarIndex:  {OpBarIndex, 2},
	bms.OpParam:     {OpParam, 2},
	bms.OpPitchBend: {OpPitchBend, 3},
	bms.OpOpenTrack: {OpOpenTrack, 4},
	bms.OpCall:      {OpCall, 3},
	bms.OpReturn:    {OpReturn, 0},
	bms.OpJump:      {OpJump, 3},
	bms.OpParamWide: {OpParamWide, 3},
	bms.OpTempo:     {OpTempo, 2},
	bms.OpBankPatch: {OpBankPatch, 2},
	bms.OpPatch:     {OpPatch, 1},
	bms.OpEnd:       {OpEnd, 0},
}

// DecodeAt decodes the instruction starting at off.
func DecodeAt(b []byte, off int) (Instruction, error) {
	if off < 0 || off >= len(b) {
		return Instruction{}, fmt.Errorf("offset %#06x out of range", off)
	}
	in := Instruction{Offset: off, Target: -1}
	tag := b[off]
	n := 0

	switch {
	case isLoopPlaceholder(b[off:]):
		in.Op = OpLoopPlaceholder
		in.Value = int(b[off+3])
		n = 3
	case tag < 0x80:
		in.Op = OpNote
		n = 2
	case tag&0xF0 == bms.OpNoteOff:
		in.Op = OpNoteOff
		in.Value = int(tag & 0x0F)
	case tag == bms.OpDelay:
		v, size, err := bms.DecodeVLQ(b[off+1:])
		if err != nil {
			return Instruction{}, fmt.Errorf("delay at %#06x: %w", off, err)
		}
		in.Op = OpDelay
		in.Value = int(v)
		n = size
	default:
		form, ok := operands[tag]
		if !ok {
			return Instruction{}, fmt.Errorf("%w %#02x at %#06x", ErrUnknownOpcode, tag, off)
		}
		in.Op = form.op
		n = form.n
	}

	end := off + 1 + n
	if end > len(b) {
		return Instruction{}, fmt.Errorf("%v at %#06x truncated", in.Op, off)
	}
	in.Raw = b[off:end]

	switch in.Op {
	case OpOpenTrack:
		in.Value = int(in.Raw[1])
		in.Target = bms.Get24(in.Raw, 2)
	case OpCall, OpJump:
		in.Target = bms.Get24(in.Raw, 1)
	case OpBarIndex, OpTempo:
		in.Value = int(in.Raw[1])<<8 | int(in.Raw[2])
	case OpNote:
		in.Value = int(in.Raw[1])
	}
	return in, nil
}

func isLoopPlaceholder(b []byte) bool {
	return len(b) >= 4 && (bytes.HasPrefix(b, bms.LoopStartSentinel[:]) || bytes.HasPrefix(b, bms.LoopEndSentinel[:]))
}

// Decode decodes the whole buffer linearly. Every byte belongs to exactly
// one instruction of a well-formed image.
func Decode(b []byte) ([]Instruction, error) {
	var out []Instruction
	for off := 0; off < len(b); {
		in, err := DecodeAt(b, off)
		if err != nil {
			return out, err
		}
		out = append(out, in)
		off += in.Len()
	}
	return out, nil
}

// String renders the instruction as an assembler-like line without offset.
func (in Instruction) String() string {
	r := in.Raw
	switch in.Op {
	case OpNote:
		return fmt.Sprintf("note     %3d v%d vel %d", r[0], r[1], r[2])
	case OpNoteOff:
		return fmt.Sprintf("noteoff  v%d", in.Value)
	case OpBarIndex:
		return fmt.Sprintf("bar      #%d", in.Value)
	case OpParam:
		return fmt.Sprintf("param    %s %d", paramName(r[1]), r[2])
	case OpPitchBend:
		return fmt.Sprintf("bend     %d", int16(uint16(r[2])<<8|uint16(r[3])))
	case OpOpenTrack:
		return fmt.Sprintf("open     ch %d -> %06X", in.Value, in.Target)
	case OpCall:
		return fmt.Sprintf("call     %06X", in.Target)
	case OpJump:
		return fmt.Sprintf("jump     %06X", in.Target)
	case OpParamWide:
		return fmt.Sprintf("paramw   %s %d", wideName(r[1]), int(r[2])<<8|int(r[3]))
	case OpTempo:
		return fmt.Sprintf("tempo    %d bpm", in.Value)
	case OpBankPatch:
		return fmt.Sprintf("patch    bank %d prog %d", r[1], r[2])
	case OpPatch:
		return fmt.Sprintf("patch    prog %d", r[1])
	case OpDelay:
		return fmt.Sprintf("delay    %d", in.Value)
	case OpLoopPlaceholder:
		return fmt.Sprintf("loop?    %02X (unresolved)", in.Value)
	}
	return in.Op.String()
}

func paramName(p byte) string {
	switch p {
	case bms.ParamVolume:
		return "volume"
	case bms.ParamReverb:
		return "reverb"
	case bms.ParamPan:
		return "pan"
	}
	return fmt.Sprintf("%#02x", p)
}

func wideName(p byte) string {
	switch p {
	case bms.WideResolution:
		return "ppqn"
	case bms.WideVibratoDepth:
		return "vib-depth"
	case bms.WideVibratoRate:
		return "vib-rate"
	case bms.WideTremoloDepth:
		return "trem-depth"
	case bms.WideTremoloRate:
		return "trem-rate"
	}
	return fmt.Sprintf("%#02x", p)
}
