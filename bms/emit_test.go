package bms

import (
	"bytes"
	"errors"
	"testing"

	"midi2bms/midi"
	"midi2bms/timeline"
	"midi2bms/voice"
)

func noteOn(tick, ch int, pitch, vel uint8) timeline.Event {
	return timeline.Event{Tick: tick, Channel: ch, Kind: timeline.NoteOn, Pitch: pitch, Velocity: vel}
}

func noteOff(tick, ch int, pitch uint8) timeline.Event {
	return timeline.Event{Tick: tick, Channel: ch, Kind: timeline.NoteOff, Pitch: pitch}
}

func marker(tick int, kind timeline.MarkerKind) timeline.Event {
	return timeline.Event{Tick: tick, Channel: timeline.Global, Kind: timeline.Marker, Marker: kind}
}

func TestChannelNotesAndDelays(t *testing.T) {
	e := &Emitter{}
	s, err := e.Channel(0, []timeline.Event{
		noteOn(0, 0, 60, 100),
		noteOn(0, 0, 64, 90),
		noteOff(120, 0, 60),
		noteOff(300, 0, 64),
	})
	if err != nil {
		t.Fatalf("Channel failed: %v", err)
	}
	want := []byte{
		60, 1, 100,
		64, 2, 90,
		OpDelay, 120,
		0x81,
		OpDelay, 0x81, 0x34, // 180
		0x82,
		OpEnd,
	}
	if !bytes.Equal(s.Bytes, want) {
		t.Errorf("got  % X\nwant % X", s.Bytes, want)
	}
}

func TestChannelControllersAndPrograms(t *testing.T) {
	e := &Emitter{}
	events := []timeline.Event{
		{Tick: 0, Channel: 9, Kind: timeline.ControlChange, Controller: midi.CCBankSelectMSB, Value: 3},
		{Tick: 0, Channel: 1, Kind: timeline.ProgramChange, Value: 12},
		{Tick: 0, Channel: 1, Kind: timeline.ProgramChange, Value: 13},
		{Tick: 0, Channel: 1, Kind: timeline.ControlChange, Controller: midi.CCVolume, Value: 100},
		{Tick: 0, Channel: 1, Kind: timeline.ControlChange, Controller: midi.CCPan, Value: 20},
		{Tick: 0, Channel: 1, Kind: timeline.ControlChange, Controller: midi.CCReverb, Value: 30},
		{Tick: 0, Channel: 1, Kind: timeline.ControlChange, Controller: midi.CCModulation, Value: 40},
		{Tick: 0, Channel: 1, Kind: timeline.ControlChange, Controller: midi.CCBreath, Value: 41},
		{Tick: 0, Channel: 1, Kind: timeline.ControlChange, Controller: midi.CCTremolo, Value: 42},
		{Tick: 0, Channel: 1, Kind: timeline.ControlChange, Controller: midi.CCChorus, Value: 43},
		{Tick: 0, Channel: 1, Kind: timeline.ControlChange, Controller: 64, Value: 127},
		{Tick: 0, Channel: 1, Kind: timeline.PitchBend, Bend: -8192},
		{Tick: 0, Channel: 1, Kind: timeline.PitchBend, Bend: 8191},
	}
	s, err := e.Channel(1, events)
	if err != nil {
		t.Fatalf("Channel failed: %v", err)
	}
	want := []byte{
		OpBankPatch, 3, 12,
		OpPatch, 13,
		OpParam, ParamVolume, 100,
		OpParam, ParamPan, 20,
		OpParam, ParamReverb, 30,
		OpParamWide, WideVibratoDepth, 0, 40,
		OpParamWide, WideVibratoRate, 0, 41,
		OpParamWide, WideTremoloDepth, 0, 42,
		OpParamWide, WideTremoloRate, 0, 43,
		OpPitchBend, BendPitch, 0xFC, 0x00,
		OpPitchBend, BendPitch, 0x03, 0xFF,
		OpEnd,
	}
	if !bytes.Equal(s.Bytes, want) {
		t.Errorf("got  % X\nwant % X", s.Bytes, want)
	}
}

func TestChannelLogarithmicVelocity(t *testing.T) {
	e := &Emitter{Logarithmic: true}
	s, err := e.Channel(0, []timeline.Event{noteOn(0, 0, 60, 64)})
	if err != nil {
		t.Fatalf("Channel failed: %v", err)
	}
	if s.Bytes[2] != LogCurve(64) {
		t.Errorf("expected remapped velocity %d, got %d", LogCurve(64), s.Bytes[2])
	}
}

func TestChannelPolyphonyExceeded(t *testing.T) {
	var events []timeline.Event
	for p := uint8(60); p < 68; p++ {
		events = append(events, noteOn(10, 6, p, 100))
	}
	e := &Emitter{}
	_, err := e.Channel(6, events)
	if !errors.Is(err, voice.ErrPolyphonyExceeded) {
		t.Fatalf("expected polyphony error, got %v", err)
	}
	var perr *voice.PolyphonyError
	if !errors.As(err, &perr) || perr.Channel != 6 || perr.Tick != 10 {
		t.Errorf("expected error naming channel 6 at tick 10, got %v", err)
	}
}

func TestChannelVoicesDoNotLeakAcrossChannels(t *testing.T) {
	e := &Emitter{}
	held := []timeline.Event{noteOn(0, 0, 60, 100), noteOn(0, 0, 61, 100), noteOn(0, 0, 62, 100)}
	if _, err := e.Channel(0, held); err != nil {
		t.Fatalf("Channel failed: %v", err)
	}
	s, err := e.Channel(1, []timeline.Event{noteOn(0, 1, 70, 100)})
	if err != nil {
		t.Fatalf("Channel failed: %v", err)
	}
	if s.Bytes[1] != 1 {
		t.Errorf("expected a fresh allocator to hand out voice 1, got %d", s.Bytes[1])
	}
}

func TestChannelLoopPlaceholders(t *testing.T) {
	events := []timeline.Event{
		marker(0, timeline.MarkerLoopStart),
		noteOn(0, 0, 60, 100),
		noteOff(120, 0, 60),
		marker(240, timeline.MarkerLoopEnd),
	}

	s, err := (&Emitter{Loop: true}).Channel(0, events)
	if err != nil {
		t.Fatalf("Channel failed: %v", err)
	}
	if len(s.Loops) != 2 || s.Loops[0].Kind != LoopStart || s.Loops[1].Kind != LoopEnd {
		t.Fatalf("unexpected loop refs %+v", s.Loops)
	}
	if s.Loops[0].Site != 0 {
		t.Errorf("expected loop start at 0, got %d", s.Loops[0].Site)
	}
	if !bytes.Equal(s.Bytes[s.Loops[1].Site:], LoopEndSentinel[:]) {
		t.Errorf("expected stream to end with loop end placeholder, got % X", s.Bytes)
	}
	if !s.EndsWithLoop() {
		t.Error("expected EndsWithLoop")
	}

	plain, _ := (&Emitter{}).Channel(0, events)
	if len(plain.Loops) != 0 || bytes.Contains(plain.Bytes, LoopStartSentinel[:]) {
		t.Errorf("expected no placeholders without looping, got % X", plain.Bytes)
	}
	if plain.Bytes[len(plain.Bytes)-1] != OpEnd {
		t.Errorf("expected terminator, got % X", plain.Bytes)
	}
}

func TestGlobalTempoAndTail(t *testing.T) {
	events := []timeline.Event{
		{Tick: 0, Channel: timeline.Global, Kind: timeline.Tempo, BPM: 140},
		marker(0, timeline.MarkerMeter3),
		{Tick: 480, Channel: timeline.Global, Kind: timeline.Tempo, BPM: 300},
	}
	s := (&Emitter{}).Global(events, 960)
	want := []byte{
		OpTempo, 0x00, 140,
		OpDelay, 0x83, 0x60, // 480
		OpTempo, 0x01, 0x2C,
		OpDelay, 0x83, 0x60,
	}
	if !bytes.Equal(s.Bytes, want) {
		t.Errorf("got  % X\nwant % X", s.Bytes, want)
	}

	looped := (&Emitter{Loop: true}).Global(events, 960)
	if len(looped.Bytes) != 9 {
		t.Errorf("expected no tail padding when looping, got % X", looped.Bytes)
	}
}
