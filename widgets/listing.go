package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"midi2bms/disasm"
	"midi2bms/theme"
)

// RenderSwatch renders a single colored square
func RenderSwatch(th *theme.Theme, color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render(string(th.Symbols.Swatch))
}

// RenderLegendItem renders a single legend item: "■ name - description"
func RenderLegendItem(th *theme.Theme, color lipgloss.Color, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderSwatch(th, color), name, desc)
}

// RenderLegend lists the instruction color groups
func RenderLegend(th *theme.Theme) string {
	items := []struct {
		op         disasm.Op
		name, desc string
	}{
		{disasm.OpNote, "notes", "note on/off"},
		{disasm.OpParam, "control", "params, bends, patches"},
		{disasm.OpJump, "flow", "open, call, return, jump"},
		{disasm.OpDelay, "timing", "delays, tempo, bar ids"},
		{disasm.OpEnd, "end", "end of stream"},
	}
	var lines []string
	for _, it := range items {
		lines = append(lines, RenderLegendItem(th, th.OpColor(it.op), it.name, it.desc))
	}
	return strings.Join(lines, "\n")
}

// LineOptions select decorations for one listing line
type LineOptions struct {
	Selected  bool
	Target    bool // something branches here
	ShowBytes bool
}

// RenderInstruction renders one listing line: marker, offset, optional raw
// bytes and the decoded instruction in its role color.
func RenderInstruction(th *theme.Theme, in disasm.Instruction, opt LineOptions) string {
	marker := " "
	switch {
	case opt.Selected:
		marker = string(th.Symbols.Cursor)
	case opt.Target:
		marker = string(th.Symbols.Target)
	}

	offStyle := lipgloss.NewStyle().Foreground(th.Muted())
	opStyle := lipgloss.NewStyle().Foreground(th.OpColor(in.Op))
	if opt.Selected {
		opStyle = opStyle.Bold(true).Reverse(true)
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString(" ")
	b.WriteString(offStyle.Render(fmt.Sprintf("%06X", in.Offset)))
	b.WriteString("  ")
	if opt.ShowBytes {
		b.WriteString(offStyle.Render(fmt.Sprintf("%-14s", fmt.Sprintf("% X", in.Raw))))
		b.WriteString(" ")
	}
	b.WriteString(opStyle.Render(in.String()))
	if in.Branches() {
		b.WriteString(" ")
		b.WriteString(offStyle.Render(string(th.Symbols.Branch)))
	}
	return b.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
