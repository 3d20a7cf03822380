package bms

// Instruction tags. Every tag is >= 0x80; a byte below 0x80 in tag position
// is the pitch of a note-on.
const (
	OpNoteOff    byte = 0x80 // | voice
	OpBarIndex   byte = 0xA4
	OpParam      byte = 0xB8
	OpPitchBend  byte = 0xB9
	OpOpenTrack  byte = 0xC1
	OpCall       byte = 0xC4
	OpReturn     byte = 0xC6
	OpJump       byte = 0xC7
	OpParamWide  byte = 0xD8
	OpTempo      byte = 0xE0
	OpBankPatch  byte = 0xE1
	OpPatch      byte = 0xE3
	OpDelay      byte = 0xF0
	OpEnd        byte = 0xFF
)

// Sub-parameters of OpParam
const (
	ParamVolume byte = 0x00
	ParamReverb byte = 0x02
	ParamPan    byte = 0x03
)

// Sub-parameter of OpPitchBend
const BendPitch byte = 0x01

// Sub-parameters of OpParamWide
const (
	WideResolution   byte = 0x62
	WideVibratoDepth byte = 0x6E
	WideTremoloDepth byte = 0x70
	WideVibratoRate  byte = 0x71
	WideTremoloRate  byte = 0x72
)

// Placeholders written where an address or loop point is not known yet.
// They never survive a successful layout.
var (
	LoopStartSentinel = [4]byte{0x77, 0x77, 0x77, 0x01}
	LoopEndSentinel   = [4]byte{0x77, 0x77, 0x77, 0x02}
	RootPlaceholder   = [3]byte{0x77, 0x77, 0x77}
	AddrPlaceholder   = [3]byte{0x88, 0x88, 0x88}
)

// LoopNeutral replaces a resolved loop start: two zero-length delays.
var LoopNeutral = [4]byte{OpDelay, 0x00, OpDelay, 0x00}

// MaxAddr is the largest address a 24-bit operand can hold.
const MaxAddr = 0xFFFFFF

// Put24 writes v as a 3-byte big-endian address at b[off:].
func Put24(b []byte, off, v int) {
	b[off] = byte(v >> 16)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v)
}

// Get24 reads a 3-byte big-endian address at b[off:].
func Get24(b []byte, off int) int {
	return int(b[off])<<16 | int(b[off+1])<<8 | int(b[off+2])
}
