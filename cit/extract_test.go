package cit

import (
	"bytes"
	"errors"
	"testing"

	"midi2bms/bms"
	"midi2bms/timeline"
)

func on(tick int, pitch uint8) timeline.Event {
	return timeline.Event{Tick: tick, Kind: timeline.NoteOn, Pitch: pitch, Velocity: 100}
}

func off(tick int, pitch uint8) timeline.Event {
	return timeline.Event{Tick: tick, Kind: timeline.NoteOff, Pitch: pitch}
}

func mark(tick int, kind timeline.MarkerKind) timeline.Event {
	return timeline.Event{Tick: tick, Channel: timeline.Global, Kind: timeline.Marker, Marker: kind}
}

var beat = []byte{bms.OpDelay, 0x78} // 120 ticks

func beats(n int) []byte {
	return bytes.Repeat(beat, n)
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestExtractBarPatterns(t *testing.T) {
	events := []timeline.Event{
		on(0, 36), off(240, 36),
		on(600, 40), off(700, 40),
		on(1920, 38), off(2000, 38),
	}
	res, err := Extract(events, Options{PPQN: 120, Beats: 4})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	wantBars := []BarPattern{TriggerAtStart, TriggerInside, Shared, Shared, TriggerAtStart}
	if len(res.Bars) != len(wantBars) {
		t.Fatalf("expected %d bars, got %v", len(wantBars), res.Bars)
	}
	for i, p := range wantBars {
		if res.Bars[i] != p {
			t.Errorf("bar %d: expected %v, got %v", i, p, res.Bars[i])
		}
	}

	call := []byte{bms.OpCall, 0x88, 0x88, 0x88}
	want := cat(
		[]byte{bms.OpBarIndex, 0, 0}, beats(4),
		beat, []byte{bms.OpBarIndex, 0, 1}, beats(3),
		call, call,
		[]byte{bms.OpBarIndex, 0, 2}, beats(4),
		[]byte{bms.OpEnd},
		beats(4), []byte{bms.OpReturn},
	)
	if !bytes.Equal(res.Stream.Bytes, want) {
		t.Errorf("got  % X\nwant % X", res.Stream.Bytes, want)
	}

	if len(res.Stream.Calls) != 2 {
		t.Fatalf("expected 2 calls, got %+v", res.Stream.Calls)
	}
	for _, c := range res.Stream.Calls {
		if c.Target != 42 {
			t.Errorf("call at %d targets %d, expected shared block at 42", c.Site, c.Target)
		}
	}
	if res.Stream.Calls[0].Site != 23 || res.Stream.Calls[1].Site != 27 {
		t.Errorf("unexpected call sites %+v", res.Stream.Calls)
	}
}

func TestExtractWithoutSharedBars(t *testing.T) {
	res, err := Extract([]timeline.Event{on(0, 36)}, Options{PPQN: 120, Beats: 3})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	want := cat([]byte{bms.OpBarIndex, 0, 0}, beats(3), []byte{bms.OpEnd})
	if !bytes.Equal(res.Stream.Bytes, want) {
		t.Errorf("got  % X\nwant % X", res.Stream.Bytes, want)
	}
	if len(res.Stream.Calls) != 0 {
		t.Errorf("expected no calls, got %+v", res.Stream.Calls)
	}
}

func TestExtractLoop(t *testing.T) {
	events := []timeline.Event{
		mark(0, timeline.MarkerLoopStart),
		on(0, 36),
		off(480, 36),
		mark(720, timeline.MarkerLoopEnd),
	}
	res, err := Extract(events, Options{PPQN: 120, Beats: 4, Loop: true})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Bars) != 2 || res.Bars[0] != Mixed || res.Bars[1] != LoopInside {
		t.Errorf("unexpected bars %v", res.Bars)
	}
	want := cat(
		bms.LoopStartSentinel[:], []byte{bms.OpBarIndex, 0, 0}, beats(4),
		beats(2), bms.LoopEndSentinel[:],
	)
	if !bytes.Equal(res.Stream.Bytes, want) {
		t.Errorf("got  % X\nwant % X", res.Stream.Bytes, want)
	}
	if !res.Stream.EndsWithLoop() {
		t.Error("expected the stream to end on its loop jump")
	}
	if len(res.Notices) != 0 {
		t.Errorf("expected no notices, got %v", res.Notices)
	}
}

func TestExtractOffBeatLoopNotice(t *testing.T) {
	events := []timeline.Event{
		mark(0, timeline.MarkerLoopStart),
		on(0, 36),
		mark(700, timeline.MarkerLoopEnd),
	}
	res, err := Extract(events, Options{PPQN: 120, Loop: true})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Notices) != 1 {
		t.Fatalf("expected one notice, got %v", res.Notices)
	}
	tail := cat(beat, []byte{bms.OpDelay, 100}, bms.LoopEndSentinel[:])
	if !bytes.HasSuffix(res.Stream.Bytes, tail) {
		t.Errorf("expected bar to be cut at the loop end, got % X", res.Stream.Bytes)
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name   string
		events []timeline.Event
		want   error
	}{
		{"no trigger", []timeline.Event{on(0, 60), on(0, 80)}, ErrEmptyInput},
		{"two starts", []timeline.Event{
			mark(0, timeline.MarkerLoopStart), mark(480, timeline.MarkerLoopStart),
			on(0, 36), mark(960, timeline.MarkerLoopEnd),
		}, ErrMalformedLoopMarkers},
		{"end only", []timeline.Event{on(0, 36), mark(960, timeline.MarkerLoopEnd)}, ErrMalformedLoopMarkers},
		{"end before start", []timeline.Event{
			on(0, 36), mark(480, timeline.MarkerLoopEnd), mark(960, timeline.MarkerLoopStart),
		}, ErrMalformedLoopMarkers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.events, Options{PPQN: 120, Loop: true})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	// markers are not checked when looping is off
	events := []timeline.Event{on(0, 36), mark(960, timeline.MarkerLoopEnd)}
	if _, err := Extract(events, Options{PPQN: 120}); err != nil {
		t.Errorf("expected loop markers to be ignored, got %v", err)
	}
}

func TestStackOrdersUpwardFromBass(t *testing.T) {
	tests := []struct {
		bass    uint8
		classes []uint8
		limit   int
		want    []uint8
	}{
		{2, []uint8{0, 2, 14, 5}, 7, []uint8{5, 0}},
		{36, []uint8{52, 55, 60, 64}, 7, []uint8{4, 7}},
		{0, []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9}, 7, []uint8{1, 2, 3, 4, 5, 6, 7}},
		{9, nil, 7, nil},
	}
	for _, tt := range tests {
		got := stack(tt.bass, tt.classes, tt.limit)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("stack(%d, %v): expected %v, got %v", tt.bass, tt.classes, tt.want, got)
		}
	}
}

func TestBandOf(t *testing.T) {
	tests := []struct {
		pitch uint8
		want  Band
	}{
		{0, BandBass}, {47, BandBass}, {48, BandChord}, {71, BandChord}, {72, BandMelody}, {127, BandMelody},
	}
	for _, tt := range tests {
		if got := BandOf(tt.pitch); got != tt.want {
			t.Errorf("BandOf(%d) = %v, expected %v", tt.pitch, got, tt.want)
		}
	}
}
