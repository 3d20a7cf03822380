package layout

import (
	"fmt"

	"midi2bms/bms"
	"midi2bms/debug"
)

// Channel is one channel's encoded data, ready to be placed.
type Channel struct {
	ID     int
	Stream bms.Stream
}

// Input is everything the engine lays out.
type Input struct {
	PPQN int
	// Global is the unterminated tempo/loop timeline. It is placed twice:
	// after the root header and after the dispatch table.
	Global bms.Stream
	// LoopAll restarts the timeline when it has no loop markers of its own.
	LoopAll  bool
	Channels []Channel
}

// Section is a named byte range of the image.
type Section struct {
	Name  string
	Start int
	End   int
}

// Image is a fully patched output buffer plus the addresses it was built from.
type Image struct {
	Bytes         []byte
	Sections      []Section
	DispatchStart int
	ChannelAddr   map[int]int // channel id -> data address
	DispatchSite  map[int]int // channel id -> offset of its 3-byte pointer
	RootSite      int
	LoopStarts    []int
	LoopEnds      []int
}

type engine struct {
	buf   Buffer
	img   *Image
	slots map[int]int // channel id -> dispatch ref index
}

// Build lays out the root section, the dispatch table and every channel,
// then patches all forward references. It returns an error instead of a
// partially patched image.
func Build(in Input) (*Image, error) {
	if in.PPQN <= 0 || in.PPQN > 0xFFFF {
		return nil, fmt.Errorf("invalid resolution %d", in.PPQN)
	}
	for i, ch := range in.Channels {
		if ch.ID < 0 || ch.ID > 0xFF {
			return nil, fmt.Errorf("invalid channel id %d", ch.ID)
		}
		if i > 0 && ch.ID <= in.Channels[i-1].ID {
			return nil, fmt.Errorf("channels not strictly ascending at %d", ch.ID)
		}
	}

	e := &engine{
		img: &Image{
			ChannelAddr:  make(map[int]int),
			DispatchSite: make(map[int]int),
		},
		slots: make(map[int]int),
	}

	// 1. Root header
	e.buf.Write(bms.OpOpenTrack, 0x00)
	rootRef := e.buf.Reserve(RootPointer, 0)
	e.img.RootSite = e.buf.refs[rootRef].Site
	e.buf.Write(bms.OpParamWide, bms.WideResolution, byte(in.PPQN>>8), byte(in.PPQN))
	e.section("root", 0)

	// 2. Root timeline, restarting from the very beginning on LoopAll
	if err := e.timeline("root timeline", in, 0); err != nil {
		return nil, err
	}

	// 3. Dispatch table
	dispatchStart := e.buf.Len()
	e.img.DispatchStart = dispatchStart
	for _, ch := range in.Channels {
		e.buf.Write(bms.OpOpenTrack, byte(ch.ID))
		idx := e.buf.Reserve(ChannelDataPointer, ch.ID)
		e.slots[ch.ID] = idx
		e.img.DispatchSite[ch.ID] = e.buf.refs[idx].Site
	}
	e.section("dispatch", dispatchStart)

	// 4. Dispatch timeline, restarting from its own first instruction
	if err := e.timeline("dispatch timeline", in, e.buf.Len()); err != nil {
		return nil, err
	}

	// 5 + 6. Channel data, each section's loops resolved right after it lands
	for _, ch := range in.Channels {
		addr := e.buf.Len()
		e.img.ChannelAddr[ch.ID] = addr
		if err := e.place(fmt.Sprintf("channel %d", ch.ID), ch.Stream); err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch.ID, err)
		}
		debug.Log("layout", "channel %d at %#06x (%d bytes, %d loop refs, %d calls)",
			ch.ID, addr, ch.Stream.Len(), len(ch.Stream.Loops), len(ch.Stream.Calls))
	}

	// 7. Dispatch pointers
	for _, ch := range in.Channels {
		addr, ok := e.img.ChannelAddr[ch.ID]
		idx := e.slots[ch.ID]
		if !ok {
			return nil, &UnresolvedError{Kind: ChannelDataPointer, Site: e.buf.refs[idx].Site,
				Channel: ch.ID, Reason: "channel data address never recorded"}
		}
		if err := e.buf.Resolve(idx, addr); err != nil {
			return nil, err
		}
	}

	// 8. Root pointer
	if err := e.buf.Resolve(rootRef, dispatchStart); err != nil {
		return nil, err
	}

	out, err := e.buf.Finalize()
	if err != nil {
		return nil, err
	}
	e.img.Bytes = out
	debug.Log("layout", "image %d bytes, dispatch at %#06x, %d channels", len(out), dispatchStart, len(in.Channels))
	return e.img, nil
}

// timeline places a copy of the global timeline and terminates it. A
// timeline with loop markers loops by itself; otherwise LoopAll jumps to
// restart and the default is a plain end.
func (e *engine) timeline(name string, in Input, restart int) error {
	if err := e.place(name, in.Global); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	switch {
	case in.Global.EndsWithLoop():
	case len(in.Global.Loops) == 0 && in.LoopAll:
		e.buf.Write(bms.OpJump)
		bms.Put24(e.buf.data, e.buf.appendAt(make([]byte, 3)), restart)
	default:
		e.buf.Write(bms.OpEnd)
	}
	e.extend(name)
	return nil
}

// place appends a stream, rebases its fixups and resolves them.
func (e *engine) place(name string, s bms.Stream) error {
	base := e.buf.Len()
	e.buf.Write(s.Bytes...)
	e.section(name, base)

	var starts, ends []int
	for _, l := range s.Loops {
		idx := e.buf.track(LoopTarget, -1, base+l.Site)
		if l.Kind == bms.LoopStart {
			starts = append(starts, idx)
		} else {
			ends = append(ends, idx)
		}
	}
	if len(starts) != len(ends) {
		site := base
		if len(s.Loops) > 0 {
			site = base + s.Loops[0].Site
		}
		return &UnresolvedError{Kind: LoopTarget, Site: site,
			Reason: fmt.Sprintf("%d loop start(s) but %d loop end(s)", len(starts), len(ends))}
	}
	for i := range starts {
		if err := e.buf.ResolveLoop(starts[i], ends[i]); err != nil {
			return err
		}
		e.img.LoopStarts = append(e.img.LoopStarts, e.buf.refs[starts[i]].Site)
		e.img.LoopEnds = append(e.img.LoopEnds, e.buf.refs[ends[i]].Site)
	}

	for _, c := range s.Calls {
		idx := e.buf.track(BarBlockCall, -1, base+c.Site)
		if c.Target < 0 || c.Target >= s.Len() {
			return &UnresolvedError{Kind: BarBlockCall, Site: base + c.Site, Reason: "call target outside its stream"}
		}
		if err := e.buf.Resolve(idx, base+c.Target); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) section(name string, start int) {
	e.img.Sections = append(e.img.Sections, Section{Name: name, Start: start, End: e.buf.Len()})
}

// extend grows the named section to the current end after a terminator.
func (e *engine) extend(name string) {
	for i := len(e.img.Sections) - 1; i >= 0; i-- {
		if e.img.Sections[i].Name == name {
			e.img.Sections[i].End = e.buf.Len()
			return
		}
	}
}
