package voice

import (
	"errors"
	"fmt"
	"sort"
)

// MaxVoices is the number of polyphony slots per channel.
const MaxVoices = 7

// Slot is a polyphony slot in [1, MaxVoices].
type Slot uint8

// ErrPolyphonyExceeded is matched by every *PolyphonyError.
var ErrPolyphonyExceeded = errors.New("polyphony exceeded")

// PolyphonyError is returned when a channel holds more than MaxVoices
// simultaneous pitches.
type PolyphonyError struct {
	Channel int
	Pitch   uint8
	Tick    int
}

func (e *PolyphonyError) Error() string {
	return fmt.Sprintf("channel %d has more than %d overlapping notes (pitch %d at tick %d)",
		e.Channel, MaxVoices, e.Pitch, e.Tick)
}

func (e *PolyphonyError) Is(target error) bool {
	return target == ErrPolyphonyExceeded
}

// Allocator binds sounding pitches to voice slots for one channel pass.
// It must not be shared between channels.
type Allocator struct {
	channel     int
	free        []Slot
	noteToVoice map[uint8]Slot
	voiceToNote map[Slot]uint8
}

// NewAllocator returns an allocator with all slots free.
func NewAllocator(channel int) *Allocator {
	a := &Allocator{channel: channel}
	a.Reset()
	return a
}

// Reset frees every slot.
func (a *Allocator) Reset() {
	a.free = a.free[:0]
	for s := Slot(1); s <= MaxVoices; s++ {
		a.free = append(a.free, s)
	}
	a.noteToVoice = make(map[uint8]Slot)
	a.voiceToNote = make(map[Slot]uint8)
}

// Channel returns the channel this allocator serves.
func (a *Allocator) Channel() int {
	return a.channel
}

// Acquire returns the slot bound to pitch, binding the lowest free slot if
// the pitch is not sounding yet.
func (a *Allocator) Acquire(pitch uint8) (Slot, error) {
	if s, ok := a.noteToVoice[pitch]; ok {
		return s, nil
	}
	if len(a.free) == 0 {
		return 0, &PolyphonyError{Channel: a.channel, Pitch: pitch}
	}
	s := a.free[0]
	a.free = a.free[1:]
	a.noteToVoice[pitch] = s
	a.voiceToNote[s] = pitch
	return s, nil
}

// Release unbinds pitch and returns its slot to the free list, which stays
// sorted ascending so the lowest slot is always reused first.
func (a *Allocator) Release(pitch uint8) (Slot, bool) {
	s, ok := a.noteToVoice[pitch]
	if !ok {
		return 0, false
	}
	delete(a.noteToVoice, pitch)
	delete(a.voiceToNote, s)

	i := sort.Search(len(a.free), func(i int) bool { return a.free[i] >= s })
	a.free = append(a.free, 0)
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = s
	return s, true
}

// Lookup returns the slot bound to pitch, if any.
func (a *Allocator) Lookup(pitch uint8) (Slot, bool) {
	s, ok := a.noteToVoice[pitch]
	return s, ok
}

// Pitch returns the pitch bound to slot s, if any.
func (a *Allocator) Pitch(s Slot) (uint8, bool) {
	p, ok := a.voiceToNote[s]
	return p, ok
}

// Active returns the number of sounding pitches.
func (a *Allocator) Active() int {
	return len(a.noteToVoice)
}
