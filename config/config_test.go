package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Compile.TargetPPQN != 120 || cfg.Compile.TimingChannel != -1 {
		t.Errorf("unexpected defaults %+v", cfg.Compile)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	cfg.Compile.Logarithmic = true
	cfg.Compile.TimingChannel = 9
	cfg.Output.Dir = "out"
	cfg.DebugLog = "/tmp/midi2bms.log"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "midi2bms", "config.json")); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, cfg)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "midi2bms")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"compile":{"logarithmic":true,"targetPPQN":96,"timingChannel":-1}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Compile.Logarithmic || cfg.Compile.TargetPPQN != 96 || !cfg.UI.ShowBytes {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "midi2bms")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"compile":{"targetPPQN":0}}`), 0644)
	if _, err := Load(); err == nil {
		t.Error("expected error for zero targetPPQN")
	}
}

func TestOutputPath(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.OutputPath("songs/theme.mid", ".bms"); got != filepath.Join("songs", "theme.bms") {
		t.Errorf("got %q", got)
	}
	cfg.Output.Dir = "build"
	if got := cfg.OutputPath("songs/theme.mid", ".cit"); got != filepath.Join("build", "theme.cit") {
		t.Errorf("got %q", got)
	}
}
