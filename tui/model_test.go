package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"midi2bms/theme"
)

var image = []byte{
	0xC1, 0x00, 0x00, 0x00, 0x0D,
	0xD8, 0x62, 0x00, 0x78,
	0xE0, 0x00, 0x78, 0xFF,
	0xC1, 0x03, 0x00, 0x00, 0x16,
	0xE0, 0x00, 0x78, 0xFF,
	0x3C, 0x01, 0x64, 0xF0, 0x78, 0x81, 0xFF,
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestFollowAndBack(t *testing.T) {
	m, err := NewModel("test.bms", image, theme.New(nil), false)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}

	m = press(m, "enter")
	if m.Cursor() != 0x0D {
		t.Fatalf("expected to follow root pointer to 0D, got %X", m.Cursor())
	}
	m = press(m, "enter")
	if m.Cursor() != 0x16 {
		t.Fatalf("expected to follow channel pointer to 16, got %X", m.Cursor())
	}
	m = press(m, "backspace", "backspace")
	if m.Cursor() != 0 {
		t.Errorf("expected to be back at 0, got %X", m.Cursor())
	}

	m = press(m, "j", "enter")
	if m.Cursor() != 5 || !strings.Contains(m.View(), "has no address") {
		t.Errorf("expected status for a non-branch, cursor %X", m.Cursor())
	}
}

func TestNextStreamAndScroll(t *testing.T) {
	m, _ := NewModel("test.bms", image, theme.New(nil), true)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 7})
	m = next.(Model)

	m = press(m, "n")
	if m.Cursor() != 0x0D {
		t.Errorf("expected next stream at 0D, got %X", m.Cursor())
	}
	m = press(m, "G")
	if m.Cursor() != 0x1C {
		t.Errorf("expected last instruction at 1C, got %X", m.Cursor())
	}
	view := m.View()
	if strings.Contains(view, "000000 ") || !strings.Contains(view, "00001C") {
		t.Errorf("expected the view scrolled to the end:\n%s", view)
	}
}

func TestRejectsUndecodable(t *testing.T) {
	if _, err := NewModel("bad", []byte{0x90}, theme.New(nil), false); err == nil {
		t.Error("expected decode error")
	}
}
