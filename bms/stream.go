package bms

// LoopKind tells a loop start placeholder from a loop end placeholder.
type LoopKind int

const (
	LoopStart LoopKind = iota
	LoopEnd
)

func (k LoopKind) String() string {
	if k == LoopStart {
		return "loop-start"
	}
	return "loop-end"
}

// LoopRef records where a loop placeholder was written, relative to the
// start of its stream.
type LoopRef struct {
	Kind LoopKind
	Site int
	Tick int
}

// CallRef records a call whose 3-byte operand at Site must point at Target.
// Both are offsets relative to the start of the stream.
type CallRef struct {
	Site   int
	Target int
}

// Stream is the encoded instructions of one section plus the fixups the
// layout engine resolves once the section's absolute address is known.
// Sub-components build Streams; only the layout engine writes the output.
type Stream struct {
	Bytes []byte
	Loops []LoopRef
	Calls []CallRef
}

// Len returns the number of encoded bytes.
func (s *Stream) Len() int {
	return len(s.Bytes)
}

// Write appends raw instruction bytes.
func (s *Stream) Write(b ...byte) {
	s.Bytes = append(s.Bytes, b...)
}

// Delay appends a delay instruction. Zero ticks writes nothing.
func (s *Stream) Delay(ticks int) {
	if ticks <= 0 {
		return
	}
	s.Bytes = append(s.Bytes, OpDelay)
	s.Bytes = AppendVLQ(s.Bytes, uint32(ticks))
}

// Loop writes a loop placeholder and records it.
func (s *Stream) Loop(kind LoopKind, tick int) {
	s.Loops = append(s.Loops, LoopRef{Kind: kind, Site: len(s.Bytes), Tick: tick})
	if kind == LoopStart {
		s.Bytes = append(s.Bytes, LoopStartSentinel[:]...)
	} else {
		s.Bytes = append(s.Bytes, LoopEndSentinel[:]...)
	}
}

// Call writes a call with a placeholder operand and returns the index of its
// CallRef so the caller can set the target later.
func (s *Stream) Call() int {
	s.Bytes = append(s.Bytes, OpCall)
	s.Calls = append(s.Calls, CallRef{Site: len(s.Bytes), Target: -1})
	s.Bytes = append(s.Bytes, AddrPlaceholder[:]...)
	return len(s.Calls) - 1
}

// EndsWithLoop reports whether the last instruction is a loop end, in which
// case the stream never falls through to a terminator.
func (s *Stream) EndsWithLoop() bool {
	if len(s.Loops) == 0 {
		return false
	}
	last := s.Loops[len(s.Loops)-1]
	return last.Kind == LoopEnd && last.Site+len(LoopEndSentinel) == len(s.Bytes)
}

// Terminate appends the end-of-stream tag unless a loop end makes it
// unreachable.
func (s *Stream) Terminate() {
	if s.EndsWithLoop() {
		return
	}
	s.Bytes = append(s.Bytes, OpEnd)
}
