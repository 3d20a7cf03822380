package timeline

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"midi2bms/debug"
	"midi2bms/midi"
)

// DefaultPPQN is the resolution the playback engine runs at.
const DefaultPPQN = 120

// TimingTrackName marks the track whose notes drive the rhythm index.
const TimingTrackName = "Timing"

// Timeline is the flat, time-sorted result of normalizing a song.
type Timeline struct {
	SourcePPQN int
	PPQN       int
	Events     []Event

	// LastNoteOff is the tick of the latest note release, in target units.
	LastNoteOff int

	// TimingChannel is the channel of the track named TimingTrackName, or -1.
	TimingChannel int
}

// Scale converts an absolute source tick to target resolution. The
// cumulative position is rounded, never the individual deltas.
func Scale(absSource int64, sourcePPQN, targetPPQN int) int {
	return int(math.Round(float64(absSource) * float64(targetPPQN) / float64(sourcePPQN)))
}

// Normalize rescales every track of song to targetPPQN and merges them into
// one sorted timeline.
func Normalize(song *midi.Song, targetPPQN int) (*Timeline, error) {
	if song.TicksPerBeat <= 0 {
		return nil, fmt.Errorf("invalid source resolution %d", song.TicksPerBeat)
	}
	if targetPPQN <= 0 || targetPPQN > 0xFFFF {
		return nil, fmt.Errorf("invalid target resolution %d", targetPPQN)
	}

	tl := &Timeline{
		SourcePPQN:    song.TicksPerBeat,
		PPQN:          targetPPQN,
		TimingChannel: -1,
	}

	seq := 0
	for ti, track := range song.Tracks {
		var abs int64
		isTiming := strings.EqualFold(strings.TrimSpace(track.Name), TimingTrackName)

		for _, raw := range track.Events {
			abs += int64(raw.Delta)
			tick := Scale(abs, song.TicksPerBeat, targetPPQN)

			ev, ok := convert(raw)
			if !ok {
				continue
			}
			ev.Tick = tick
			ev.Seq = seq
			seq++

			if ev.Kind == NoteOff && tick > tl.LastNoteOff {
				tl.LastNoteOff = tick
			}
			if isTiming && tl.TimingChannel < 0 && ev.Kind == NoteOn {
				tl.TimingChannel = ev.Channel
			}
			tl.Events = append(tl.Events, ev)
		}
		debug.Log("normalize", "track %d %q: %d events, %d source ticks", ti, track.Name, len(track.Events), abs)
	}

	sort.SliceStable(tl.Events, func(i, j int) bool {
		return tl.Events[i].Tick < tl.Events[j].Tick
	})

	debug.Log("normalize", "%d events, ppqn %d -> %d, last note-off %d",
		len(tl.Events), tl.SourcePPQN, tl.PPQN, tl.LastNoteOff)
	return tl, nil
}

func convert(raw midi.Event) (Event, bool) {
	ev := Event{Channel: raw.Channel}
	switch raw.Type {
	case midi.NoteOn, midi.NoteOff:
		ev.Kind = NoteOn
		if raw.IsNoteOff() {
			ev.Kind = NoteOff
		}
		ev.Pitch, ev.Velocity = raw.Note, raw.Velocity
	case midi.CC:
		ev.Kind = ControlChange
		ev.Controller, ev.Value = raw.Controller, raw.Value
	case midi.ProgramChange:
		ev.Kind = ProgramChange
		ev.Value = raw.Value
	case midi.PitchBend:
		ev.Kind = PitchBend
		ev.Bend = raw.Bend
	case midi.Tempo:
		if raw.MicrosPerBeat == 0 {
			return ev, false
		}
		ev.Kind = Tempo
		ev.Channel = Global
		ev.MicrosPerBeat = raw.MicrosPerBeat
		ev.BPM = int(math.Round(60000000 / float64(raw.MicrosPerBeat)))
	case midi.Marker:
		ev.Kind = Marker
		ev.Channel = Global
		ev.Text = raw.Text
		ev.Marker = ParseMarker(raw.Text)
		if ev.Marker == MarkerOther {
			return ev, false
		}
	default:
		return ev, false
	}
	return ev, true
}
