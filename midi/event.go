package midi

// MIDI message types
const (
	NoteOn        uint8 = 0x90
	NoteOff       uint8 = 0x80
	CC            uint8 = 0xB0
	ProgramChange uint8 = 0xC0
	PitchBend     uint8 = 0xE0

	// Meta kinds have no status byte of their own in the raw model.
	Tempo  uint8 = 0x51
	Marker uint8 = 0x06
)

// Global is the channel value of events that belong to no MIDI channel
// (tempo, markers).
const Global = -1

// Event is one delta-timed event from a source track, as read from the file.
// Only the fields relevant to Type are set.
type Event struct {
	Delta   uint32 // ticks since the previous event of the same track
	Type    uint8  // NoteOn, NoteOff, CC, ProgramChange, PitchBend, Tempo, Marker
	Channel int    // 0-15, or Global

	Note     uint8
	Velocity uint8

	Controller uint8
	Value      uint8 // controller value or program number

	Bend int16 // pitch bend, -8192..8191

	MicrosPerBeat uint32 // tempo
	Text          string // marker text
}

// Track is the ordered event list of one source track.
type Track struct {
	Name   string
	Events []Event
}

// Song is a parsed event file: its resolution and tracks in file order.
type Song struct {
	TicksPerBeat int
	Tracks       []Track
}

// IsNoteOff reports whether e releases a note (note-off or zero-velocity note-on).
func (e Event) IsNoteOff() bool {
	return e.Type == NoteOff || (e.Type == NoteOn && e.Velocity == 0)
}
