package midi

import (
	"fmt"
	"io"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ReadFile opens and parses a standard MIDI file.
func ReadFile(path string) (*Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	song, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return song, nil
}

// Read parses a standard MIDI file from r. Messages the compiler has no use
// for are dropped, but their delta time is carried over to the next kept
// event so absolute positions stay intact.
func Read(r io.Reader) (*Song, error) {
	data, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("read smf: %w", err)
	}
	return FromSMF(data)
}

// FromSMF converts an already parsed gomidi SMF.
func FromSMF(data *smf.SMF) (*Song, error) {
	tf, ok := data.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format %v (only metric ticks)", data.TimeFormat)
	}
	if tf == 0 {
		return nil, fmt.Errorf("invalid resolution 0 ticks per beat")
	}

	song := &Song{TicksPerBeat: int(tf)}
	for _, tr := range data.Tracks {
		song.Tracks = append(song.Tracks, convertTrack(tr))
	}
	return song, nil
}

func convertTrack(tr smf.Track) Track {
	var out Track
	var carry uint32

	for _, ev := range tr {
		carry += ev.Delta
		msg := ev.Message

		var ch, key, vel, cc, val uint8
		var rel int16
		var abs uint16
		var bpm float64
		var text string

		e := Event{Channel: Global}
		switch {
		case msg.GetNoteOn(&ch, &key, &vel):
			e.Type, e.Channel, e.Note, e.Velocity = NoteOn, int(ch), key, vel
		case msg.GetNoteOff(&ch, &key, &vel):
			e.Type, e.Channel, e.Note, e.Velocity = NoteOff, int(ch), key, vel
		case msg.GetControlChange(&ch, &cc, &val):
			e.Type, e.Channel, e.Controller, e.Value = CC, int(ch), cc, val
		case msg.GetProgramChange(&ch, &val):
			e.Type, e.Channel, e.Value = ProgramChange, int(ch), val
		case msg.GetPitchBend(&ch, &rel, &abs):
			e.Type, e.Channel, e.Bend = PitchBend, int(ch), rel
		case msg.GetMetaTempo(&bpm):
			if bpm <= 0 {
				continue
			}
			e.Type = Tempo
			e.MicrosPerBeat = uint32(math.Round(60000000 / bpm))
		case msg.GetMetaMarker(&text):
			e.Type, e.Text = Marker, text
		case msg.GetMetaTrackName(&text):
			if out.Name == "" {
				out.Name = text
			}
			continue
		default:
			continue
		}

		e.Delta = carry
		carry = 0
		out.Events = append(out.Events, e)
	}
	return out
}
