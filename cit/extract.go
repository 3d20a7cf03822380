package cit

import (
	"fmt"
	"sort"

	"midi2bms/bms"
	"midi2bms/debug"
	"midi2bms/timeline"
)

// Options control one extraction.
type Options struct {
	PPQN  int
	Beats int // beats per bar, 3 or 4; 0 means 4
	// Loop honours loop markers. Without it they are ignored.
	Loop bool
}

// Result is the timing channel's bar stream plus its rhythm index.
type Result struct {
	Stream    bms.Stream
	Index     []byte
	Intervals []Interval
	Bars      []BarPattern
	Notices   []string
}

type trigger struct {
	tick int
	bass uint8
}

// Extract walks the timing channel bar by bar and builds the rhythm index.
// events must be tick-ordered, as timeline.ForChannel returns them.
func Extract(events []timeline.Event, opts Options) (*Result, error) {
	if opts.PPQN <= 0 {
		return nil, fmt.Errorf("invalid resolution %d", opts.PPQN)
	}
	beats := opts.Beats
	if beats == 0 {
		beats = 4
	}
	if beats != 3 && beats != 4 {
		return nil, fmt.Errorf("unsupported meter: %d beats per bar", beats)
	}

	res := &Result{}
	triggers := collectTriggers(events)
	if len(triggers) == 0 {
		return nil, ErrEmptyInput
	}
	if len(triggers) > 0xFFFF {
		return nil, fmt.Errorf("too many bass triggers: %d", len(triggers))
	}

	var (
		loopStart, loopEnd int
		looping            bool
		err                error
	)
	if opts.Loop {
		if loopStart, loopEnd, looping, err = LoopBounds(events); err != nil {
			return nil, err
		}
	}
	if looping {
		for _, t := range []int{loopStart, loopEnd} {
			if t%opts.PPQN != 0 {
				res.Notices = append(res.Notices,
					fmt.Sprintf("loop boundary at tick %d is not on a beat (%d ticks per beat)", t, opts.PPQN))
			}
		}
	}

	res.Intervals = buildIntervals(events, triggers)
	if res.Index, err = BuildIndex(res.Intervals); err != nil {
		return nil, err
	}

	barLen := beats * opts.PPQN
	walkEnd := (triggers[len(triggers)-1].tick/barLen + 1) * barLen
	if looping {
		walkEnd = loopEnd
	}

	s := &res.Stream
	var calls []int
	next := 0 // first trigger not yet placed
	for start := 0; start < walkEnd; start += barLen {
		b := bar{start: start, end: min(start+barLen, walkEnd)}
		b.full = b.end-b.start == barLen
		for next < len(triggers) && triggers[next].tick < b.end {
			b.points = append(b.points, point{tick: triggers[next].tick, kind: pointTrigger, index: next})
			next++
		}
		if looping && loopStart >= b.start && loopStart < b.end {
			b.points = append(b.points, point{tick: loopStart, kind: pointLoopStart})
		}

		p := b.pattern()
		res.Bars = append(res.Bars, p)
		if p == Shared {
			calls = append(calls, s.Call())
			continue
		}
		b.write(s, opts.PPQN)
	}
	if looping {
		s.Loop(bms.LoopEnd, loopEnd)
	}
	s.Terminate()

	if len(calls) > 0 {
		target := s.Len()
		writeSharedBlock(s, beats, opts.PPQN)
		for _, idx := range calls {
			s.Calls[idx].Target = target
		}
	}

	debug.Log("cit", "%d bars (%d shared), %d intervals, loop=%v, stream %d bytes, index %d bytes",
		len(res.Bars), len(calls), len(res.Intervals), looping, s.Len(), len(res.Index))
	return res, nil
}

// collectTriggers returns one trigger per distinct tick of bass-band note-ons,
// keeping the lowest pitch at that tick.
func collectTriggers(events []timeline.Event) []trigger {
	var out []trigger
	for _, ev := range events {
		if ev.Kind != timeline.NoteOn || BandOf(ev.Pitch) != BandBass {
			continue
		}
		if n := len(out); n > 0 && out[n-1].tick == ev.Tick {
			out[n-1].bass = min(out[n-1].bass, ev.Pitch)
			continue
		}
		out = append(out, trigger{tick: ev.Tick, bass: ev.Pitch})
	}
	return out
}

// LoopBounds returns the single loop region marked in events. ok is false
// when there are no loop markers at all; any other count, or an end that
// does not follow the start, is a *MarkerError.
func LoopBounds(events []timeline.Event) (start, end int, ok bool, err error) {
	var starts, ends []int
	for _, ev := range events {
		if ev.Kind != timeline.Marker {
			continue
		}
		switch ev.Marker {
		case timeline.MarkerLoopStart:
			starts = append(starts, ev.Tick)
		case timeline.MarkerLoopEnd:
			ends = append(ends, ev.Tick)
		}
	}
	if len(starts) == 0 && len(ends) == 0 {
		return 0, 0, false, nil
	}
	if len(starts) != 1 || len(ends) != 1 || starts[0] >= ends[0] {
		return 0, 0, false, &MarkerError{Starts: starts, Ends: ends}
	}
	return starts[0], ends[0], true, nil
}

// buildIntervals assigns every chord and melody note-on to the interval of
// the latest trigger at or before it. Notes ahead of the first trigger are
// not indexed.
func buildIntervals(events []timeline.Event, triggers []trigger) []Interval {
	last := 0
	for _, ev := range events {
		last = max(last, ev.Tick)
	}

	intervals := make([]Interval, len(triggers))
	chords := make([][]uint8, len(triggers))
	scales := make([][]uint8, len(triggers))
	for i, tr := range triggers {
		end := max(last, tr.tick)
		if i+1 < len(triggers) {
			end = triggers[i+1].tick
		}
		intervals[i] = Interval{Start: tr.tick, End: end, Bass: tr.bass}
	}

	for _, ev := range events {
		if ev.Kind != timeline.NoteOn {
			continue
		}
		band := BandOf(ev.Pitch)
		if band == BandBass {
			continue
		}
		i := sort.Search(len(triggers), func(i int) bool { return triggers[i].tick > ev.Tick }) - 1
		if i < 0 {
			continue
		}
		if band == BandChord {
			chords[i] = append(chords[i], ev.Pitch)
		}
		scales[i] = append(scales[i], ev.Pitch)
	}

	for i := range intervals {
		iv := &intervals[i]
		iv.Chord = stack(iv.Bass, chords[i], MaxChordClasses)
		iv.Scale = stack(iv.Bass, scales[i], MaxScaleClasses)
		if len(distinct(chords[i], iv.Bass)) > MaxChordClasses {
			debug.Log("cit", "interval %d at tick %d: chord truncated to %d classes", i, iv.Start, MaxChordClasses)
		}
	}
	return intervals
}

func distinct(pitches []uint8, bass uint8) []uint8 {
	var seen [12]bool
	seen[bass%12] = true
	var out []uint8
	for _, p := range pitches {
		if c := p % 12; !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
