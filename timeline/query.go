package timeline

import (
	"sort"

	"midi2bms/midi"
)

// Channels returns the channels that carry note, controller or program
// events, ascending. Pitch bend alone does not make a channel used.
func (tl *Timeline) Channels() []int {
	seen := make(map[int]bool)
	for _, ev := range tl.Events {
		switch ev.Kind {
		case NoteOn, NoteOff, ControlChange, ProgramChange:
			if ev.Channel >= 0 {
				seen[ev.Channel] = true
			}
		}
	}
	chans := make([]int, 0, len(seen))
	for ch := range seen {
		chans = append(chans, ch)
	}
	sort.Ints(chans)
	return chans
}

// ForChannel returns the events one channel's encoding pass needs: its own
// events, every marker, and bank selects from any channel.
func (tl *Timeline) ForChannel(ch int) []Event {
	var out []Event
	for _, ev := range tl.Events {
		switch {
		case ev.Kind == Marker:
			out = append(out, ev)
		case ev.Kind == ControlChange && midi.IsBankSelect(ev.Controller):
			out = append(out, ev)
		case ev.Kind == Tempo:
		case ev.Channel == ch:
			out = append(out, ev)
		}
	}
	return out
}

// Global returns tempo changes and markers.
func (tl *Timeline) Global() []Event {
	var out []Event
	for _, ev := range tl.Events {
		if ev.Kind == Tempo || ev.Kind == Marker {
			out = append(out, ev)
		}
	}
	return out
}

// HasLoop reports whether the song contains a loop start marker.
func (tl *Timeline) HasLoop() bool {
	return tl.firstMarker(MarkerLoopStart) >= 0
}

// LoopAll reports whether the song asks to loop in its entirety.
func (tl *Timeline) LoopAll() bool {
	return tl.firstMarker(MarkerLoopAll) >= 0
}

// LoopStart returns the tick of the first loop start marker, or -1.
func (tl *Timeline) LoopStart() int {
	return tl.firstMarker(MarkerLoopStart)
}

// Meter returns the beats per bar selected by the first meter marker
// (4 when there is none).
func (tl *Timeline) Meter() int {
	for _, ev := range tl.Events {
		if ev.Kind != Marker {
			continue
		}
		switch ev.Marker {
		case MarkerMeter3:
			return 3
		case MarkerMeter4:
			return 4
		}
	}
	return 4
}

// End returns the tick of the last event.
func (tl *Timeline) End() int {
	if len(tl.Events) == 0 {
		return 0
	}
	return tl.Events[len(tl.Events)-1].Tick
}

func (tl *Timeline) firstMarker(kind MarkerKind) int {
	for _, ev := range tl.Events {
		if ev.Kind == Marker && ev.Marker == kind {
			return ev.Tick
		}
	}
	return -1
}

// HasLoopMarkers reports whether the song contains any loop start or end.
func (tl *Timeline) HasLoopMarkers() bool {
	return tl.HasLoop() || tl.firstMarker(MarkerLoopEnd) >= 0
}
