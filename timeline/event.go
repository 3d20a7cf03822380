package timeline

// Kind is the type of a normalized event.
type Kind int

const (
	NoteOn Kind = iota
	NoteOff
	ControlChange
	ProgramChange
	PitchBend
	Tempo
	Marker
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case ControlChange:
		return "cc"
	case ProgramChange:
		return "program"
	case PitchBend:
		return "bend"
	case Tempo:
		return "tempo"
	case Marker:
		return "marker"
	}
	return "unknown"
}

// MarkerKind identifies the reserved marker names.
type MarkerKind int

const (
	MarkerOther MarkerKind = iota
	MarkerLoopStart
	MarkerLoopEnd
	MarkerLoopAll
	MarkerMeter3
	MarkerMeter4
)

// Reserved marker texts
const (
	TextLoopStart = "LoopStart"
	TextLoopEnd   = "LoopEnd"
	TextLoopAll   = "LoopAll"
	TextMeter3    = "Meter3/4"
	TextMeter4    = "Meter4/4"
)

// ParseMarker maps marker text to its kind.
func ParseMarker(text string) MarkerKind {
	switch text {
	case TextLoopStart:
		return MarkerLoopStart
	case TextLoopEnd:
		return MarkerLoopEnd
	case TextLoopAll:
		return MarkerLoopAll
	case TextMeter3:
		return MarkerMeter3
	case TextMeter4:
		return MarkerMeter4
	}
	return MarkerOther
}

func (m MarkerKind) String() string {
	switch m {
	case MarkerLoopStart:
		return TextLoopStart
	case MarkerLoopEnd:
		return TextLoopEnd
	case MarkerLoopAll:
		return TextLoopAll
	case MarkerMeter3:
		return TextMeter3
	case MarkerMeter4:
		return TextMeter4
	}
	return "other"
}

// Global is the channel of tempo and marker events.
const Global = -1

// Event is one event on the normalized timeline. Tick is in target
// resolution. Seq is the position in source order and breaks ties.
type Event struct {
	Tick    int
	Channel int
	Kind    Kind
	Seq     int

	Pitch    uint8
	Velocity uint8

	Controller uint8
	Value      uint8 // controller value or program number

	Bend int16

	MicrosPerBeat uint32
	BPM           int

	Marker MarkerKind
	Text   string
}

// IsLoopMarker reports whether e is a loop start or end marker.
func (e Event) IsLoopMarker() bool {
	return e.Kind == Marker && (e.Marker == MarkerLoopStart || e.Marker == MarkerLoopEnd)
}
