// Package compiler turns a parsed song into a BMS image and, when the song
// has a timing channel, a rhythm index.
package compiler

import (
	"fmt"
	"slices"

	"midi2bms/bms"
	"midi2bms/cit"
	"midi2bms/debug"
	"midi2bms/disasm"
	"midi2bms/layout"
	"midi2bms/midi"
	"midi2bms/timeline"
)

// DetectTiming picks the timing channel from the track named "Timing".
const DetectTiming = -1

// Options are the caller-facing knobs of one compile.
type Options struct {
	TargetPPQN    int  // 0 means timeline.DefaultPPQN
	Logarithmic   bool // remap velocities and volume through bms.LogCurve
	TimingChannel int  // DetectTiming or an explicit channel
}

// DefaultOptions returns 120 ticks per beat, linear velocities and timing
// channel detection.
func DefaultOptions() Options {
	return Options{TargetPPQN: timeline.DefaultPPQN, TimingChannel: DetectTiming}
}

// Notice is an advisory message that does not stop the compile.
type Notice struct {
	Channel int // timeline.Global for song-wide notices
	Message string
}

func (n Notice) String() string {
	if n.Channel == timeline.Global {
		return n.Message
	}
	return fmt.Sprintf("channel %d: %s", n.Channel, n.Message)
}

// Result is a successful compile. BMS and CIT are complete and verified.
type Result struct {
	BMS           []byte
	CIT           []byte // nil without a timing channel
	Image         *layout.Image
	Timeline      *timeline.Timeline
	TimingChannel int // -1 when none was used
	Bars          []cit.BarPattern
	Notices       []Notice
}

// CompileFile reads a standard MIDI file and compiles it.
func CompileFile(path string, opts Options) (*Result, error) {
	song, err := midi.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(song, opts)
}

// Compile runs the whole pipeline. It either returns both outputs or an
// error; there is no partial result.
func Compile(song *midi.Song, opts Options) (*Result, error) {
	ppqn := opts.TargetPPQN
	if ppqn == 0 {
		ppqn = timeline.DefaultPPQN
	}

	tl, err := timeline.Normalize(song, ppqn)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	res := &Result{Timeline: tl, TimingChannel: -1}

	looping := false
	var loopBounds []int
	if tl.HasLoopMarkers() {
		start, end, _, err := cit.LoopBounds(tl.Global())
		if err != nil {
			return nil, err
		}
		looping = true
		loopBounds = []int{start, end}
	}

	channels := tl.Channels()
	timing := tl.TimingChannel
	if opts.TimingChannel != DetectTiming {
		timing = opts.TimingChannel
		if !slices.Contains(channels, timing) {
			return nil, fmt.Errorf("timing channel %d has no events", timing)
		}
	}

	em := &bms.Emitter{Logarithmic: opts.Logarithmic, Loop: looping}
	in := layout.Input{
		PPQN:    ppqn,
		Global:  em.Global(tl.Global(), tl.LastNoteOff),
		LoopAll: tl.LoopAll(),
	}

	for _, ch := range channels {
		events := tl.ForChannel(ch)
		if ch == timing {
			ext, err := cit.Extract(events, cit.Options{PPQN: ppqn, Beats: tl.Meter(), Loop: looping})
			if err != nil {
				return nil, fmt.Errorf("timing channel %d: %w", ch, err)
			}
			res.CIT = ext.Index
			res.Bars = ext.Bars
			res.TimingChannel = ch
			for _, msg := range ext.Notices {
				res.notice(ch, "%s", msg)
			}
			in.Channels = append(in.Channels, layout.Channel{ID: ch, Stream: ext.Stream})
			continue
		}

		s, err := em.Channel(ch, events)
		if err != nil {
			return nil, err
		}
		in.Channels = append(in.Channels, layout.Channel{ID: ch, Stream: s})
	}

	// the extractor reports loop alignment itself
	if res.TimingChannel < 0 {
		for _, t := range loopBounds {
			if t%ppqn != 0 {
				res.notice(timeline.Global, "loop boundary at tick %d is not on a beat", t)
			}
		}
	}

	img, err := layout.Build(in)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if err := disasm.Verify(img.Bytes); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	if res.CIT != nil {
		if _, err := disasm.ParseIndex(res.CIT); err != nil {
			return nil, fmt.Errorf("verify index: %w", err)
		}
	}

	res.BMS = img.Bytes
	res.Image = img
	debug.Log("compile", "%d channels, timing %d, loop=%v loopAll=%v, %d bytes bms, %d bytes cit",
		len(channels), res.TimingChannel, looping, in.LoopAll, len(res.BMS), len(res.CIT))
	return res, nil
}

func (r *Result) notice(ch int, format string, args ...any) {
	n := Notice{Channel: ch, Message: fmt.Sprintf(format, args...)}
	r.Notices = append(r.Notices, n)
	debug.Log("compile", "notice: %s", n)
}
