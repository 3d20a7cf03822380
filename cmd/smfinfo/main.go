package main

import (
	"flag"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"

	"midi2bms/midi"
	"midi2bms/timeline"
)

func main() {
	raw := flag.Bool("raw", false, "print the file's messages as stored, per track")
	ppqn := flag.Int("ppqn", timeline.DefaultPPQN, "target ticks per beat")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	var err error
	if *raw {
		err = printRaw(flag.Arg(0))
	} else {
		err = printTimeline(flag.Arg(0), *ppqn)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("smfinfo - show what midi2bms sees in a MIDI file")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  smfinfo [-ppqn N] in.mid   normalized, merged timeline")
	fmt.Println("  smfinfo -raw in.mid        stored messages per track")
}

func printRaw(path string) error {
	s, err := smf.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("=== %s: %v, %d tracks ===\n", path, s.TimeFormat, len(s.Tracks))
	for i, tr := range s.Tracks {
		fmt.Printf("\n--- track %d ---\n", i)
		var abs int64
		for _, ev := range tr {
			abs += int64(ev.Delta)
			fmt.Printf("  %8d  %s\n", abs, ev.Message.String())
		}
	}
	return nil
}

func printTimeline(path string, ppqn int) error {
	song, err := midi.ReadFile(path)
	if err != nil {
		return err
	}
	tl, err := timeline.Normalize(song, ppqn)
	if err != nil {
		return err
	}

	fmt.Printf("=== %s: %d -> %d ticks per beat, %d events ===\n", path, tl.SourcePPQN, tl.PPQN, len(tl.Events))
	for _, ev := range tl.Events {
		ch := "--"
		if ev.Channel != timeline.Global {
			ch = fmt.Sprintf("%2d", ev.Channel)
		}
		fmt.Printf("  %8d  ch %s  %-8v %s\n", ev.Tick, ch, ev.Kind, detail(ev))
	}
	return nil
}

func detail(ev timeline.Event) string {
	switch ev.Kind {
	case timeline.NoteOn:
		return fmt.Sprintf("pitch %d vel %d", ev.Pitch, ev.Velocity)
	case timeline.NoteOff:
		return fmt.Sprintf("pitch %d", ev.Pitch)
	case timeline.ControlChange:
		return fmt.Sprintf("cc %d = %d", ev.Controller, ev.Value)
	case timeline.ProgramChange:
		return fmt.Sprintf("program %d", ev.Value)
	case timeline.PitchBend:
		return fmt.Sprintf("%d", ev.Bend)
	case timeline.Tempo:
		return fmt.Sprintf("%d bpm (%dus)", ev.BPM, ev.MicrosPerBeat)
	case timeline.Marker:
		return ev.Marker.String()
	}
	return ""
}
