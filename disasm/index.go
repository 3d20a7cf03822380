package disasm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"midi2bms/cit"
)

var ErrBadIndex = errors.New("malformed rhythm index")

// Index is a parsed rhythm index container. Records keep their padding.
type Index struct {
	Chords [][]byte
	Scales [][]byte
}

// ParseIndex checks a CITS container and returns its records.
func ParseIndex(b []byte) (*Index, error) {
	if len(b) < cit.HeaderSize || string(b[:4]) != cit.Magic {
		return nil, fmt.Errorf("%w: missing %q header", ErrBadIndex, cit.Magic)
	}
	if size := binary.BigEndian.Uint32(b[4:]); int(size) != len(b) {
		return nil, fmt.Errorf("%w: size field %d, have %d bytes", ErrBadIndex, size, len(b))
	}
	nc := int(binary.BigEndian.Uint16(b[8:]))
	ns := int(binary.BigEndian.Uint16(b[10:]))

	table := cit.HeaderSize
	if table+4*(nc+ns) > len(b) {
		return nil, fmt.Errorf("%w: offset tables truncated", ErrBadIndex)
	}
	idx := &Index{}
	read := func(i, size int) ([]byte, error) {
		off := int(binary.BigEndian.Uint32(b[table+4*i:]))
		if off < table || off+size > len(b) {
			return nil, fmt.Errorf("%w: record offset %d out of range", ErrBadIndex, off)
		}
		return b[off : off+size], nil
	}
	for i := range nc {
		rec, err := read(i, cit.ChordRecordSize)
		if err != nil {
			return nil, err
		}
		idx.Chords = append(idx.Chords, rec)
	}
	for i := range ns {
		rec, err := read(nc+i, cit.ScaleRecordSize)
		if err != nil {
			return nil, err
		}
		idx.Scales = append(idx.Scales, rec)
	}
	return idx, nil
}

// Classes returns the pitch classes of a record up to its padding.
func Classes(rec []byte) []uint8 {
	for i, c := range rec {
		if c == cit.NoNote {
			return rec[:i]
		}
	}
	return rec
}
