package bms

import (
	"errors"
	"fmt"

	"midi2bms/debug"
	"midi2bms/midi"
	"midi2bms/timeline"
	"midi2bms/voice"
)

// Emitter turns normalized events into instructions.
type Emitter struct {
	// Logarithmic remaps note velocities and channel volume through LogCurve.
	Logarithmic bool
	// Loop writes loop placeholders for loop markers; otherwise they are
	// dropped.
	Loop bool
}

// Global encodes the tempo/loop timeline shared by the root and dispatch
// sections. When looping is off it pads with silence up to tail so the
// timeline lasts as long as the music. No terminator is written.
func (e *Emitter) Global(events []timeline.Event, tail int) Stream {
	var s Stream
	current := 0
	for _, ev := range events {
		if ev.Kind != timeline.Tempo && !ev.IsLoopMarker() {
			continue
		}
		s.Delay(ev.Tick - current)
		current = ev.Tick

		switch ev.Kind {
		case timeline.Tempo:
			bpm := min(max(ev.BPM, 0), 0xFFFF)
			s.Write(OpTempo, byte(bpm>>8), byte(bpm))
		case timeline.Marker:
			e.loopMarker(&s, ev)
		}
	}
	if !e.Loop {
		s.Delay(tail - current)
	}
	return s
}

// Channel encodes one channel's events and terminates the stream. A fresh
// voice allocator and bank state are used for every call.
func (e *Emitter) Channel(ch int, events []timeline.Event) (Stream, error) {
	var s Stream
	alloc := voice.NewAllocator(ch)
	pendingBank := -1

	current := 0
	for _, ev := range events {
		if ev.Kind == timeline.Marker && !ev.IsLoopMarker() {
			continue
		}
		s.Delay(ev.Tick - current)
		current = ev.Tick

		switch ev.Kind {
		case timeline.Marker:
			e.loopMarker(&s, ev)

		case timeline.NoteOn:
			slot, err := alloc.Acquire(ev.Pitch)
			if err != nil {
				var perr *voice.PolyphonyError
				if errors.As(err, &perr) {
					perr.Tick = ev.Tick
				}
				return Stream{}, err
			}
			s.Write(ev.Pitch&0x7F, byte(slot), e.level(ev.Velocity))
			debug.LogEvery(256, "emit", "ch %d note %d -> voice %d", ch, ev.Pitch, slot)

		case timeline.NoteOff:
			if slot, ok := alloc.Release(ev.Pitch); ok {
				s.Write(OpNoteOff | byte(slot)&0x0F)
			}

		case timeline.ControlChange:
			if midi.IsBankSelect(ev.Controller) {
				pendingBank = int(ev.Value)
				continue
			}
			if ev.Channel != ch {
				continue
			}
			e.control(&s, ev)

		case timeline.ProgramChange:
			if pendingBank >= 0 {
				s.Write(OpBankPatch, byte(pendingBank), ev.Value)
				pendingBank = -1
			} else {
				s.Write(OpPatch, ev.Value)
			}

		case timeline.PitchBend:
			v := ev.Bend >> 3
			s.Write(OpPitchBend, BendPitch, byte(uint16(v)>>8), byte(uint16(v)))

		default:
			return Stream{}, fmt.Errorf("channel %d: unexpected %v event at tick %d", ch, ev.Kind, ev.Tick)
		}
	}

	if alloc.Active() > 0 {
		debug.Log("emit", "ch %d: %d notes still sounding at end of stream", ch, alloc.Active())
	}
	s.Terminate()
	return s, nil
}

func (e *Emitter) loopMarker(s *Stream, ev timeline.Event) {
	if !e.Loop {
		return
	}
	switch ev.Marker {
	case timeline.MarkerLoopStart:
		s.Loop(LoopStart, ev.Tick)
	case timeline.MarkerLoopEnd:
		s.Loop(LoopEnd, ev.Tick)
	}
}

func (e *Emitter) control(s *Stream, ev timeline.Event) {
	switch ev.Controller {
	case midi.CCVolume:
		s.Write(OpParam, ParamVolume, e.level(ev.Value))
	case midi.CCPan:
		s.Write(OpParam, ParamPan, ev.Value)
	case midi.CCReverb:
		s.Write(OpParam, ParamReverb, ev.Value)
	case midi.CCModulation:
		s.Write(OpParamWide, WideVibratoDepth, 0x00, ev.Value)
	case midi.CCBreath:
		s.Write(OpParamWide, WideVibratoRate, 0x00, ev.Value)
	case midi.CCTremolo:
		s.Write(OpParamWide, WideTremoloDepth, 0x00, ev.Value)
	case midi.CCChorus:
		s.Write(OpParamWide, WideTremoloRate, 0x00, ev.Value)
	}
}

func (e *Emitter) level(v uint8) uint8 {
	if e.Logarithmic {
		return LogCurve(v)
	}
	return v & 0x7F
}
