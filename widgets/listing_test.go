package widgets

import (
	"strings"
	"testing"

	"midi2bms/disasm"
	"midi2bms/theme"
)

func TestRenderInstruction(t *testing.T) {
	th := theme.New(nil)
	in, err := disasm.DecodeAt([]byte{0xC7, 0x00, 0x00, 0x0C}, 0)
	if err != nil {
		t.Fatalf("DecodeAt failed: %v", err)
	}
	line := RenderInstruction(th, in, LineOptions{Selected: true, ShowBytes: true})
	for _, want := range []string{"▶", "000000", "C7 00 00 0C", "jump     00000C", "↳"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}

	plain := RenderInstruction(th, in, LineOptions{Target: true})
	if strings.Contains(plain, "C7 00") {
		t.Errorf("expected no raw bytes, got %q", plain)
	}
	if !strings.HasPrefix(plain, "◆") {
		t.Errorf("expected target marker, got %q", plain)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{
		{Title: "Move", Keys: []KeyBinding{{"j/k", "down/up"}}},
		{Keys: []KeyBinding{{"q", "quit"}}},
	})
	want := "Move\n  j/k          down/up\n  q            quit"
	if out != want {
		t.Errorf("got\n%s\nwant\n%s", out, want)
	}
}
