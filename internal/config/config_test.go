package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.xml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8086 {
		t.Errorf("Port = %d, want default 8086", cfg.Server.Port)
	}
	if cfg.Generation.MaxBatchSize != 100 {
		t.Errorf("MaxBatchSize = %d, want default 100", cfg.Generation.MaxBatchSize)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	xml := `<InviteGen>
  <Server><Port>9000</Port></Server>
  <Generation><MaxBatchSize>25</MaxBatchSize><JPEGQuality>250</JPEGQuality></Generation>
</InviteGen>`

	path := filepath.Join(t.TempDir(), "invitegen.config.xml")
	if err := os.WriteFile(path, []byte(xml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Generation.MaxBatchSize != 25 {
		t.Errorf("MaxBatchSize = %d, want 25", cfg.Generation.MaxBatchSize)
	}
	// Out-of-range quality falls back to the default.
	if cfg.Generation.JPEGQuality != 90 {
		t.Errorf("JPEGQuality = %d, want floored default 90", cfg.Generation.JPEGQuality)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xml")
	if err := os.WriteFile(path, []byte("<InviteGen><oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := DefaultConfig()
	cfg.Storage.DataDirectory = filepath.Join(base, "data")
	cfg.Storage.UploadsDirectory = filepath.Join(base, "data", "uploads")
	cfg.Storage.SessionsDirectory = filepath.Join(base, "data", "sessions")
	cfg.Storage.FontsDirectory = filepath.Join(base, "data", "fonts")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{"data", "data/uploads", "data/sessions", "data/fonts"} {
		if _, err := os.Stat(filepath.Join(base, d)); err != nil {
			t.Errorf("directory %s not created: %v", d, err)
		}
	}
}

func TestLoadPresets(t *testing.T) {
	yaml := `presets:
  - name: centered headline
    x: 400
    y: 120
    fontFamily: bold
    fontSize: 64
    color: "#222222"
  - name: bottom banner
    x: 40
    y: 560
    fontSize: 32
    color: white
`
	presets, err := LoadPresetsFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("got %d presets, want 2", len(presets))
	}
	if presets[0].Name != "centered headline" || presets[0].FontSize != 64 {
		t.Errorf("first preset = %+v", presets[0])
	}
	if presets[1].Color != "white" {
		t.Errorf("second preset color = %s, want white", presets[1].Color)
	}
}

func TestLoadPresetsMissingFile(t *testing.T) {
	presets, err := LoadPresets(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing presets file must not error: %v", err)
	}
	if presets != nil {
		t.Errorf("expected nil presets, got %v", presets)
	}
}

func TestLoadPresetsMalformed(t *testing.T) {
	if _, err := LoadPresetsFromReader(strings.NewReader("presets: [")); err == nil {
		t.Error("expected error for malformed presets")
	}
}
