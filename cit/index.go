package cit

import (
	"encoding/binary"
	"fmt"
)

// Container layout
const (
	Magic           = "CITS"
	HeaderSize      = 12 // magic, size, chord count, scale count
	ChordRecordSize = 8
	ScaleRecordSize = 20

	MaxChordClasses = ChordRecordSize - 1
	MaxScaleClasses = 12
)

// Interval is the span between one bass trigger and the next.
type Interval struct {
	Start, End int
	Bass       uint8 // lowest trigger pitch
	Chord      []uint8
	Scale      []uint8
}

// ChordRecord returns the interval's fixed-size chord record.
func (iv Interval) ChordRecord() [ChordRecordSize]byte {
	var rec [ChordRecordSize]byte
	fillRecord(rec[:], iv.Bass, iv.Chord)
	return rec
}

// ScaleRecord returns the interval's fixed-size scale record.
func (iv Interval) ScaleRecord() [ScaleRecordSize]byte {
	var rec [ScaleRecordSize]byte
	fillRecord(rec[:], iv.Bass, iv.Scale)
	return rec
}

func fillRecord(rec []byte, bass uint8, classes []uint8) {
	for i := range rec {
		rec[i] = NoNote
	}
	rec[0] = bass % 12
	copy(rec[1:], classes)
}

// BuildIndex serializes intervals into a CITS container. The size field is
// written last, once the full length is known.
func BuildIndex(intervals []Interval) ([]byte, error) {
	n := len(intervals)
	if n > 0xFFFF {
		return nil, fmt.Errorf("too many intervals for index: %d", n)
	}

	out := make([]byte, 0, HeaderSize+n*(8+ChordRecordSize+ScaleRecordSize))
	out = append(out, Magic...)
	out = append(out, 0, 0, 0, 0) // size
	out = binary.BigEndian.AppendUint16(out, uint16(n))
	out = binary.BigEndian.AppendUint16(out, uint16(n))

	chordBase := HeaderSize + n*8
	scaleBase := chordBase + n*ChordRecordSize
	for i := range intervals {
		out = binary.BigEndian.AppendUint32(out, uint32(chordBase+i*ChordRecordSize))
	}
	for i := range intervals {
		out = binary.BigEndian.AppendUint32(out, uint32(scaleBase+i*ScaleRecordSize))
	}
	for _, iv := range intervals {
		rec := iv.ChordRecord()
		out = append(out, rec[:]...)
	}
	for _, iv := range intervals {
		rec := iv.ScaleRecord()
		out = append(out, rec[:]...)
	}

	binary.BigEndian.PutUint32(out[4:], uint32(len(out)))
	return out, nil
}
