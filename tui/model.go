package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"midi2bms/disasm"
	"midi2bms/theme"
	"midi2bms/widgets"
)

// Model is a scrolling disassembly viewer for one compiled file.
type Model struct {
	Title     string
	Theme     *theme.Theme
	ins       []disasm.Instruction
	targets   map[int]bool
	cursor    int
	top       int
	height    int
	showBytes bool
	showHelp  bool
	history   []int // cursor positions before each followed branch
	status    string
	quitting  bool
}

// NewModel decodes data for viewing. A decode error is returned rather than
// showing a partial listing.
func NewModel(title string, data []byte, th *theme.Theme, showBytes bool) (Model, error) {
	ins, err := disasm.Decode(data)
	if err != nil {
		return Model{}, err
	}
	return Model{
		Title:     title,
		Theme:     th,
		ins:       ins,
		targets:   disasm.Targets(ins),
		height:    20,
		showBytes: showBytes,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// header, blank, blank, help/status
		m.height = max(msg.Height-4, 1)

	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "j", "down":
			m.move(1)
		case "k", "up":
			m.move(-1)
		case "pgdown", " ":
			m.move(m.height)
		case "pgup":
			m.move(-m.height)
		case "g", "home":
			m.move(-len(m.ins))
		case "G", "end":
			m.move(len(m.ins))
		case "enter", "l":
			m.follow()
		case "backspace", "h":
			m.back()
		case "n":
			m.nextStream()
		case "b":
			m.showBytes = !m.showBytes
		case "?":
			m.showHelp = !m.showHelp
		}
	}
	return m, nil
}

func (m *Model) move(delta int) {
	if len(m.ins) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.ins)-1)
	m.scroll()
}

func (m *Model) scroll() {
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+m.height {
		m.top = m.cursor - m.height + 1
	}
}

// follow jumps to the address operand of the selected instruction.
func (m *Model) follow() {
	if len(m.ins) == 0 {
		return
	}
	in := m.ins[m.cursor]
	if !in.Branches() {
		m.status = fmt.Sprintf("%v has no address", in.Op)
		return
	}
	i := disasm.Find(m.ins, in.Target)
	if i < 0 {
		m.status = fmt.Sprintf("target %06X is not an instruction", in.Target)
		return
	}
	m.history = append(m.history, m.cursor)
	m.cursor = i
	m.scroll()
}

func (m *Model) back() {
	if len(m.history) == 0 {
		return
	}
	m.cursor = m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.scroll()
}

// nextStream moves past the next end, jump or return.
func (m *Model) nextStream() {
	for i := m.cursor; i < len(m.ins)-1; i++ {
		switch m.ins[i].Op {
		case disasm.OpEnd, disasm.OpJump, disasm.OpReturn:
			m.move(i + 1 - m.cursor)
			return
		}
	}
	m.status = "no further stream"
}

// Cursor returns the offset of the selected instruction.
func (m Model) Cursor() int {
	if len(m.ins) == 0 {
		return -1
	}
	return m.ins[m.cursor].Offset
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Muted()).
		Padding(0, 1)

	pos := 0
	if len(m.ins) > 0 {
		pos = m.ins[m.cursor].Offset
	}
	header := headerStyle.Render(fmt.Sprintf("%s  %d instructions  @%06X  depth %d",
		m.Title, len(m.ins), pos, len(m.history)))

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n\n")

	if m.showHelp {
		out.WriteString(widgets.RenderKeyHelp(keyHelp))
		out.WriteString("\n\n")
		out.WriteString(widgets.RenderLegend(m.Theme))
		out.WriteString("\n")
	} else {
		end := min(m.top+m.height, len(m.ins))
		for i := m.top; i < end; i++ {
			in := m.ins[i]
			out.WriteString(widgets.RenderInstruction(m.Theme, in, widgets.LineOptions{
				Selected:  i == m.cursor,
				Target:    m.targets[in.Offset],
				ShowBytes: m.showBytes,
			}))
			out.WriteString("\n")
		}
	}

	out.WriteString("\n")
	if m.status != "" {
		out.WriteString(statusStyle.Render(m.status))
	} else {
		out.WriteString(dimStyle.Render("j/k:move  enter:follow  backspace:back  n:next stream  b:bytes  ?:help  q:quit"))
	}
	return out.String()
}

var keyHelp = []widgets.KeySection{
	{Title: "Move", Keys: []widgets.KeyBinding{
		{Key: "j/k", Desc: "next/previous instruction"},
		{Key: "pgdn/pgup", Desc: "page down/up"},
		{Key: "g/G", Desc: "first/last instruction"},
		{Key: "n", Desc: "start of next stream"},
	}},
	{Title: "Branches", Keys: []widgets.KeyBinding{
		{Key: "enter", Desc: "follow open/call/jump target"},
		{Key: "backspace", Desc: "return to where you followed from"},
	}},
	{Title: "View", Keys: []widgets.KeyBinding{
		{Key: "b", Desc: "toggle raw bytes"},
		{Key: "?", Desc: "toggle this help"},
		{Key: "q", Desc: "quit"},
	}},
}

// Run opens the viewer on the alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
