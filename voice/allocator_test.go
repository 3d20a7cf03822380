package voice

import (
	"errors"
	"testing"
)

func TestAcquireSevenDistinctSlots(t *testing.T) {
	a := NewAllocator(4)
	seen := make(map[Slot]bool)
	for p := uint8(60); p < 67; p++ {
		s, err := a.Acquire(p)
		if err != nil {
			t.Fatalf("Acquire(%d) failed: %v", p, err)
		}
		if s < 1 || s > MaxVoices {
			t.Errorf("slot %d out of range", s)
		}
		if seen[s] {
			t.Errorf("slot %d handed out twice", s)
		}
		seen[s] = true
	}

	_, err := a.Acquire(70)
	if err == nil {
		t.Fatal("expected polyphony error for 8th pitch")
	}
	if !errors.Is(err, ErrPolyphonyExceeded) {
		t.Errorf("expected ErrPolyphonyExceeded, got %v", err)
	}
	var perr *PolyphonyError
	if !errors.As(err, &perr) || perr.Channel != 4 {
		t.Errorf("expected PolyphonyError for channel 4, got %v", err)
	}
}

func TestAcquireIsIdempotent(t *testing.T) {
	a := NewAllocator(0)
	s1, _ := a.Acquire(60)
	s2, _ := a.Acquire(60)
	if s1 != s2 {
		t.Errorf("expected same slot, got %d and %d", s1, s2)
	}
	if a.Active() != 1 {
		t.Errorf("expected 1 active pitch, got %d", a.Active())
	}
	next, _ := a.Acquire(62)
	if next != 2 {
		t.Errorf("expected second pitch on slot 2, got %d", next)
	}
}

func TestReleaseReusesLowestSlot(t *testing.T) {
	a := NewAllocator(0)
	for p := uint8(60); p < 64; p++ {
		a.Acquire(p) // slots 1..4
	}

	if s, ok := a.Release(62); !ok || s != 3 {
		t.Fatalf("expected release of slot 3, got %d %v", s, ok)
	}
	if s, ok := a.Release(60); !ok || s != 1 {
		t.Fatalf("expected release of slot 1, got %d %v", s, ok)
	}

	tests := []struct {
		pitch uint8
		want  Slot
	}{
		{70, 1},
		{71, 3},
		{72, 5},
	}
	for _, tt := range tests {
		s, err := a.Acquire(tt.pitch)
		if err != nil {
			t.Fatalf("Acquire(%d) failed: %v", tt.pitch, err)
		}
		if s != tt.want {
			t.Errorf("Acquire(%d): expected slot %d, got %d", tt.pitch, tt.want, s)
		}
	}
}

func TestReleaseUnknownPitch(t *testing.T) {
	a := NewAllocator(0)
	if _, ok := a.Release(60); ok {
		t.Error("expected release of unbound pitch to report false")
	}
}

func TestResetFreesEverything(t *testing.T) {
	a := NewAllocator(2)
	for p := uint8(0); p < MaxVoices; p++ {
		a.Acquire(p)
	}
	a.Reset()
	if a.Active() != 0 {
		t.Errorf("expected no active pitches after reset, got %d", a.Active())
	}
	if s, _ := a.Acquire(99); s != 1 {
		t.Errorf("expected slot 1 after reset, got %d", s)
	}
}
