package cit

// Band is the role a timing-channel pitch plays, decided by its octave.
type Band int

const (
	BandBass Band = iota
	BandChord
	BandMelody
)

// Band boundaries (MIDI note numbers)
const (
	ChordLow  = 48 // C3
	MelodyLow = 72 // C5
)

func (b Band) String() string {
	switch b {
	case BandBass:
		return "bass"
	case BandChord:
		return "chord"
	}
	return "melody"
}

// BandOf classifies a pitch.
func BandOf(pitch uint8) Band {
	switch {
	case pitch < ChordLow:
		return BandBass
	case pitch < MelodyLow:
		return BandChord
	}
	return BandMelody
}

// NoNote pads unused pitch class slots in index records.
const NoNote byte = 0xFF

// stack orders distinct pitch classes upward from bass, leaving out the bass
// class itself, and keeps at most limit of them.
func stack(bass uint8, classes []uint8, limit int) []uint8 {
	var seen [12]bool
	seen[bass%12] = true
	var out []uint8
	for step := uint8(1); step < 12 && len(out) < limit; step++ {
		c := (bass + step) % 12
		for _, have := range classes {
			if have%12 == c && !seen[c] {
				seen[c] = true
				out = append(out, c)
				break
			}
		}
	}
	return out
}
