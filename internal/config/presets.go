package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// StylePreset is a named, reusable set of overlay parameters a client can
// offer as a starting point (e.g. "centered headline", "bottom banner").
type StylePreset struct {
	Name       string  `yaml:"name" json:"name"`
	X          int     `yaml:"x" json:"x"`
	Y          int     `yaml:"y" json:"y"`
	FontFamily string  `yaml:"fontFamily" json:"fontFamily"`
	FontSize   float64 `yaml:"fontSize" json:"fontSize"`
	Color      string  `yaml:"color" json:"color"`
}

type presetFile struct {
	Presets []StylePreset `yaml:"presets"`
}

// LoadPresets parses the YAML preset file at path. A missing file yields an
// empty preset list; a malformed file is an error.
func LoadPresets(path string) ([]StylePreset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening presets: %w", err)
	}
	defer f.Close()

	return LoadPresetsFromReader(f)
}

// LoadPresetsFromReader parses presets from an io.Reader.
func LoadPresetsFromReader(r io.Reader) ([]StylePreset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var pf presetFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}
	return pf.Presets, nil
}
