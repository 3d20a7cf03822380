package layout

import (
	"fmt"

	"midi2bms/bms"
)

// RefKind is the kind of a pending reference.
type RefKind int

const (
	RootPointer RefKind = iota
	ChannelDataPointer
	LoopTarget
	BarBlockCall
)

func (k RefKind) String() string {
	switch k {
	case RootPointer:
		return "root pointer"
	case ChannelDataPointer:
		return "channel pointer"
	case LoopTarget:
		return "loop target"
	case BarBlockCall:
		return "bar block call"
	}
	return "reference"
}

// Ref is a placeholder in the buffer waiting for its address.
type Ref struct {
	Kind     RefKind
	Site     int
	Channel  int
	Resolved bool
}

// Buffer is the output under construction. It is append-only except for
// patches at recorded reference sites.
type Buffer struct {
	data []byte
	refs []Ref
}

// Len returns the current write offset.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Write appends bytes.
func (b *Buffer) Write(p ...byte) {
	b.data = append(b.data, p...)
}

// Reserve appends a 3-byte address placeholder and records it. The returned
// index identifies the reference for Resolve.
func (b *Buffer) Reserve(kind RefKind, channel int) int {
	ph := bms.AddrPlaceholder
	if kind == RootPointer {
		ph = bms.RootPlaceholder
	}
	return b.track(kind, channel, b.appendAt(ph[:]))
}

// track records a placeholder that was already written at site.
func (b *Buffer) track(kind RefKind, channel, site int) int {
	b.refs = append(b.refs, Ref{Kind: kind, Site: site, Channel: channel})
	return len(b.refs) - 1
}

func (b *Buffer) appendAt(p []byte) int {
	site := len(b.data)
	b.data = append(b.data, p...)
	return site
}

// Resolve overwrites the address placeholder of reference idx with addr.
func (b *Buffer) Resolve(idx, addr int) error {
	ref := &b.refs[idx]
	if ref.Resolved {
		return fmt.Errorf("%v at %#06x resolved twice", ref.Kind, ref.Site)
	}
	if addr < 0 || addr > bms.MaxAddr {
		return &UnresolvedError{Kind: ref.Kind, Site: ref.Site, Channel: ref.Channel,
			Reason: fmt.Sprintf("address %#x does not fit in 24 bits", addr)}
	}
	bms.Put24(b.data, ref.Site, addr)
	ref.Resolved = true
	return nil
}

// ResolveLoop turns a loop start/end placeholder pair into a no-op and a
// jump back to the start.
func (b *Buffer) ResolveLoop(startIdx, endIdx int) error {
	start, end := &b.refs[startIdx], &b.refs[endIdx]
	if start.Resolved || end.Resolved {
		return fmt.Errorf("loop at %#06x resolved twice", start.Site)
	}
	if start.Site > bms.MaxAddr {
		return &UnresolvedError{Kind: LoopTarget, Site: end.Site, Reason: "loop start beyond 24-bit range"}
	}
	copy(b.data[start.Site:], bms.LoopNeutral[:])
	b.data[end.Site] = bms.OpJump
	bms.Put24(b.data, end.Site+1, start.Site)
	start.Resolved, end.Resolved = true, true
	return nil
}

// Pending returns every reference not resolved yet.
func (b *Buffer) Pending() []Ref {
	var out []Ref
	for _, r := range b.refs {
		if !r.Resolved {
			out = append(out, r)
		}
	}
	return out
}

// Refs returns all references, resolved or not.
func (b *Buffer) Refs() []Ref {
	return b.refs
}

// Finalize returns the bytes if and only if every reference is resolved.
func (b *Buffer) Finalize() ([]byte, error) {
	if pending := b.Pending(); len(pending) > 0 {
		r := pending[0]
		return nil, &UnresolvedError{Kind: r.Kind, Site: r.Site, Channel: r.Channel,
			Reason: fmt.Sprintf("%d reference(s) pending at finalize", len(pending))}
	}
	return b.data, nil
}
