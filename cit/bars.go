package cit

import (
	"sort"

	"midi2bms/bms"
)

// BarPattern is the emission form chosen for one bar.
type BarPattern int

const (
	// Shared bars carry nothing and call the shared filler block.
	Shared BarPattern = iota
	// TriggerAtStart bars have a single trigger exactly on the downbeat.
	TriggerAtStart
	// TriggerInside bars have a trigger after the downbeat (or several).
	TriggerInside
	// LoopAtStart bars open the loop on the downbeat and have no trigger.
	LoopAtStart
	// LoopInside bars have a loop boundary after the downbeat and no trigger.
	LoopInside
	// Mixed bars hold both triggers and loop boundaries.
	Mixed
)

func (p BarPattern) String() string {
	switch p {
	case Shared:
		return "shared"
	case TriggerAtStart:
		return "trigger@start"
	case TriggerInside:
		return "trigger"
	case LoopAtStart:
		return "loop@start"
	case LoopInside:
		return "loop"
	case Mixed:
		return "mixed"
	}
	return "unknown"
}

type pointKind int

// Points at the same tick are written in this order.
const (
	pointLoopEnd pointKind = iota
	pointLoopStart
	pointTrigger
)

type point struct {
	tick  int
	kind  pointKind
	index int // interval index for triggers
}

// bar is one walked bar. end is short of start+length only when the loop
// end cuts the bar.
type bar struct {
	start, end int
	full       bool
	points     []point
}

func (b *bar) pattern() BarPattern {
	var trigStart, trigInside, loopStart, loopInside bool
	triggers := 0
	for _, p := range b.points {
		atStart := p.tick == b.start
		switch {
		case p.kind == pointTrigger && atStart:
			trigStart = true
			triggers++
		case p.kind == pointTrigger:
			trigInside = true
			triggers++
		case atStart:
			loopStart = true
		default:
			loopInside = true
		}
	}
	if !b.full {
		loopInside = true
	}

	hasTrigger := trigStart || trigInside
	hasLoop := loopStart || loopInside
	switch {
	case hasTrigger && hasLoop:
		return Mixed
	case trigInside || triggers > 1:
		return TriggerInside
	case trigStart:
		return TriggerAtStart
	case loopInside:
		return LoopInside
	case loopStart:
		return LoopAtStart
	}
	return Shared
}

// write emits the bar inline: beat-sized delays split wherever a point lands.
func (b *bar) write(s *bms.Stream, ppqn int) {
	sort.SliceStable(b.points, func(i, j int) bool {
		if b.points[i].tick != b.points[j].tick {
			return b.points[i].tick < b.points[j].tick
		}
		return b.points[i].kind < b.points[j].kind
	})

	cursor := b.start
	for _, p := range b.points {
		cursor = fill(s, cursor, p.tick, ppqn)
		switch p.kind {
		case pointTrigger:
			s.Write(bms.OpBarIndex, byte(p.index>>8), byte(p.index))
		case pointLoopStart:
			s.Loop(bms.LoopStart, p.tick)
		case pointLoopEnd:
			s.Loop(bms.LoopEnd, p.tick)
		}
	}
	fill(s, cursor, b.end, ppqn)
}

// fill writes delays from cursor to target, never crossing a beat boundary
// within one delay, and returns target.
func fill(s *bms.Stream, cursor, target, ppqn int) int {
	for cursor < target {
		next := min((cursor/ppqn+1)*ppqn, target)
		s.Delay(next - cursor)
		cursor = next
	}
	return target
}

// writeSharedBlock appends the shared filler subroutine.
func writeSharedBlock(s *bms.Stream, beats, ppqn int) {
	for range beats {
		s.Delay(ppqn)
	}
	s.Write(bms.OpReturn)
}
