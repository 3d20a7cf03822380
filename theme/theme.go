package theme

import (
	"github.com/charmbracelet/lipgloss"

	"midi2bms/disasm"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Cursor rune // ▶ selected instruction
	Target rune // ◆ instruction something jumps or calls to
	Branch rune // ↳ instruction carrying an address
	Swatch rune // ■ legend color sample
}

// New builds a theme. A nil palette uses DefaultPalette.
func New(palette *Palette) *Theme {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Cursor: '▶',
			Target: '◆',
			Branch: '↳',
			Swatch: '■',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleMuted   = 0.2
	RoleFG      = 0.4
	RoleNote    = 0.5
	RoleControl = 0.6
	RoleFlow    = 0.7
	RoleWarning = 0.8
	RoleTiming  = 0.9
	RoleSuccess = 1.0
)

func (t *Theme) BG() lipgloss.Color      { return t.Color(RoleBG) }
func (t *Theme) FG() lipgloss.Color      { return t.Color(RoleFG) }
func (t *Theme) Muted() lipgloss.Color   { return t.Color(RoleMuted) }
func (t *Theme) Accent() lipgloss.Color  { return t.Color(RoleFlow) }
func (t *Theme) Warning() lipgloss.Color { return t.Color(RoleWarning) }
func (t *Theme) Success() lipgloss.Color { return t.Color(RoleSuccess) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// Role returns the palette position for an instruction kind.
func Role(op disasm.Op) float64 {
	switch op {
	case disasm.OpNote, disasm.OpNoteOff:
		return RoleNote
	case disasm.OpParam, disasm.OpParamWide, disasm.OpPitchBend, disasm.OpPatch, disasm.OpBankPatch:
		return RoleControl
	case disasm.OpOpenTrack, disasm.OpCall, disasm.OpReturn, disasm.OpJump:
		return RoleFlow
	case disasm.OpDelay, disasm.OpTempo, disasm.OpBarIndex:
		return RoleTiming
	case disasm.OpLoopPlaceholder:
		return RoleWarning
	}
	return RoleFG
}

// OpColor returns the foreground for an instruction kind.
func (t *Theme) OpColor(op disasm.Op) lipgloss.Color {
	if op == disasm.OpEnd {
		return t.Success()
	}
	return t.Color(Role(op))
}
