package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"midi2bms/cit"
	"midi2bms/compiler"
	"midi2bms/config"
	"midi2bms/debug"
	"midi2bms/disasm"
	"midi2bms/midi"
	"midi2bms/theme"
	"midi2bms/timeline"
	"midi2bms/tui"
)

type compileResult struct {
	res *compiler.Result
	err error
}

func runCompile(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	logCurve := fs.Bool("log", cfg.Compile.Logarithmic, "remap velocities and volume logarithmically")
	ppqn := fs.Int("ppqn", cfg.Compile.TargetPPQN, "target ticks per beat")
	timing := fs.Int("timing", cfg.Compile.TimingChannel, "timing channel, -1 to detect the \"Timing\" track")
	outDir := fs.String("o", cfg.Output.Dir, "output directory (default: next to each input)")
	listing := fs.Bool("listing", cfg.Output.Listing, "also write a .txt disassembly")
	dbg := fs.Bool("debug", cfg.DebugLog != "", "write the debug log")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("compile: no input files")
	}

	cfg.Compile.Logarithmic = *logCurve
	cfg.Compile.TargetPPQN = *ppqn
	cfg.Compile.TimingChannel = *timing
	cfg.Output.Dir = *outDir
	cfg.Output.Listing = *listing
	if err := cfg.Validate(); err != nil {
		return err
	}

	if *dbg {
		if err := debug.Enable(cfg.DebugLog); err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
		defer debug.Disable()
	}

	opts := compiler.Options{
		TargetPPQN:    cfg.Compile.TargetPPQN,
		Logarithmic:   cfg.Compile.Logarithmic,
		TimingChannel: cfg.Compile.TimingChannel,
	}

	inputs := fs.Args()
	fmt.Println(headStyle.Render("=== Compile ==="))

	// Each file is independent; compile in parallel, report in input order
	results := make([]compileResult, len(inputs))
	var wg sync.WaitGroup
	for i, path := range inputs {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			res, err := compiler.CompileFile(path, opts)
			results[idx] = compileResult{res: res, err: err}
		}(i, path)
	}
	wg.Wait()

	failed := 0
	for i, path := range inputs {
		r := results[i]
		if r.err == nil {
			r.err = writeOutputs(cfg, path, r.res)
		}
		if r.err != nil {
			failed++
			fmt.Printf("  %s %s: %v\n", fatalStyle.Render("error"), path, r.err)
			continue
		}
		printCompiled(cfg, path, r.res)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(inputs))
	}
	return nil
}

// writeOutputs writes a finished compile. Nothing is written for a failed one.
func writeOutputs(cfg *config.Config, input string, res *compiler.Result) error {
	if cfg.Output.Dir != "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(cfg.OutputPath(input, ".bms"), res.BMS, 0644); err != nil {
		return err
	}
	if res.CIT != nil {
		if err := os.WriteFile(cfg.OutputPath(input, ".cit"), res.CIT, 0644); err != nil {
			return err
		}
	}
	if cfg.Output.Listing {
		ins, err := disasm.Decode(res.BMS)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := disasm.Fprint(&buf, ins); err != nil {
			return err
		}
		if err := os.WriteFile(cfg.OutputPath(input, ".txt"), buf.Bytes(), 0644); err != nil {
			return err
		}
	}
	return nil
}

func printCompiled(cfg *config.Config, input string, res *compiler.Result) {
	line := fmt.Sprintf("%s: %d bytes, %d channels -> %s",
		filepath.Base(input), len(res.BMS), len(res.Image.ChannelAddr), cfg.OutputPath(input, ".bms"))
	fmt.Println("  " + okStyle.Render(line))
	if res.CIT != nil {
		fmt.Printf("    timing channel %d: %d bars, %d bytes index -> %s\n",
			res.TimingChannel, len(res.Bars), len(res.CIT), cfg.OutputPath(input, ".cit"))
	}
	if n := len(res.Image.LoopStarts); n > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("    %d loop jumps resolved", n)))
	}
	for _, n := range res.Notices {
		fmt.Println("    " + warnStyle.Render("notice: "+n.String()))
	}
}

func runDump(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: midi2bms dump file")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	if bytes.HasPrefix(data, []byte(cit.Magic)) {
		return dumpIndex(data)
	}

	ins, decodeErr := disasm.Decode(data)
	if err := disasm.Fprint(os.Stdout, ins); err != nil {
		return err
	}
	if decodeErr != nil {
		return decodeErr
	}
	if err := disasm.Verify(data); err != nil {
		return err
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("%d instructions, %d bytes, all addresses resolved", len(ins), len(data))))
	return nil
}

func dumpIndex(data []byte) error {
	idx, err := disasm.ParseIndex(data)
	if err != nil {
		return err
	}
	fmt.Println(headStyle.Render(fmt.Sprintf("%d intervals", len(idx.Chords))))
	for i := range idx.Chords {
		scale := ""
		if i < len(idx.Scales) {
			scale = classNames(disasm.Classes(idx.Scales[i]))
		}
		fmt.Printf("  %4d  chord %-22s scale %s\n", i, classNames(disasm.Classes(idx.Chords[i])), scale)
	}
	return nil
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func classNames(classes []uint8) string {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = noteNames[c%12]
	}
	return strings.Join(names, " ")
}

func runView(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: midi2bms view file.bms")
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return errors.New("view needs a terminal; use dump for plain output")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var palette *theme.Palette
	if cfg.UI.Palette != "" {
		if palette, err = theme.LoadGPL(cfg.UI.Palette); err != nil {
			return err
		}
	}
	m, err := tui.NewModel(filepath.Base(args[0]), data, theme.New(palette), cfg.UI.ShowBytes)
	if err != nil {
		return err
	}
	return tui.Run(m)
}

func runInfo(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: midi2bms info in.mid")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	song, err := midi.ReadFile(args[0])
	if err != nil {
		return err
	}
	tl, err := timeline.Normalize(song, cfg.Compile.TargetPPQN)
	if err != nil {
		return err
	}

	fmt.Println(headStyle.Render(filepath.Base(args[0])))
	fmt.Printf("  resolution   %d -> %d ticks per beat\n", tl.SourcePPQN, tl.PPQN)
	for i, tr := range song.Tracks {
		name := tr.Name
		if name == "" {
			name = dimStyle.Render("(unnamed)")
		}
		fmt.Printf("  track %-6d %s, %d events\n", i, name, len(tr.Events))
	}

	counts := make(map[int]int)
	for _, ev := range tl.Events {
		counts[ev.Channel]++
	}
	for _, ch := range tl.Channels() {
		marker := ""
		if ch == tl.TimingChannel {
			marker = warnStyle.Render("  timing")
		}
		fmt.Printf("  channel %-4d %d events%s\n", ch, counts[ch], marker)
	}
	for _, ev := range tl.Global() {
		switch ev.Kind {
		case timeline.Tempo:
			fmt.Printf("  tick %-7d tempo %d bpm\n", ev.Tick, ev.BPM)
		case timeline.Marker:
			fmt.Printf("  tick %-7d marker %v\n", ev.Tick, ev.Marker)
		}
	}
	fmt.Printf("  meter        %d beats per bar\n", tl.Meter())
	fmt.Printf("  loop         %v (loop all: %v)\n", tl.HasLoop(), tl.LoopAll())
	fmt.Printf("  last note    tick %d\n", tl.LastNoteOff)
	return nil
}

func runConfig() error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Println("config already exists: " + path)
		return nil
	}
	if err := config.DefaultConfig().Save(); err != nil {
		return err
	}
	fmt.Println(okStyle.Render("wrote " + path))
	return nil
}
