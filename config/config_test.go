package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReturnsDefaultsWhenMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Machine != DefaultMachine || cfg.Units != "metric" {
		t.Fatalf("defaults: got %+v", cfg)
	}
}

func TestSaveThenLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	cfg.Machine = "ultimaker"
	cfg.Axes = "ZY"
	cfg.Channels = []int{0, 9}
	cfg.SuppressComments = true
	if err := cfg.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(home, ".config", "go-midicnc", "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Machine != "ultimaker" || got.Axes != "ZY" || !got.SuppressComments {
		t.Fatalf("loaded: got %+v", got)
	}
	if len(got.Channels) != 2 || got.Channels[1] != 9 {
		t.Fatalf("channels: got %v", got.Channels)
	}

	opts := got.Options()
	if opts.Machine != "ultimaker" || opts.Axes != "ZY" || !opts.SuppressComments {
		t.Fatalf("options: got %+v", opts)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "go-midicnc")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected error for corrupt config")
	}
}
