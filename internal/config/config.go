// Package config provides XML-based configuration management so a single
// binary plus one config file can be dropped onto a host.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// AppConfig represents the root XML configuration structure.
type AppConfig struct {
	XMLName xml.Name `xml:"InviteGen"`

	Server     ServerConfig     `xml:"Server"`
	Storage    StorageConfig    `xml:"Storage"`
	Generation GenerationConfig `xml:"Generation"`
	Render     RenderConfig     `xml:"Render"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port                 int    `xml:"Port"`
	BindAddress          string `xml:"BindAddress"`
	EnableCORS           bool   `xml:"EnableCORS"`
	AllowOrigins         string `xml:"AllowOrigins"`
	ReadTimeout          int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout         int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout          int    `xml:"IdleTimeoutSeconds"`
	BodyLimit            string `xml:"BodyLimit"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
}

// StorageConfig contains filesystem layout settings.
type StorageConfig struct {
	DataDirectory     string `xml:"DataDirectory"`
	UploadsDirectory  string `xml:"UploadsDirectory"`
	SessionsDirectory string `xml:"SessionsDirectory"`
	FontsDirectory    string `xml:"FontsDirectory"`
	PresetsFile       string `xml:"PresetsFile"`
}

// GenerationConfig contains batch generation settings.
type GenerationConfig struct {
	MaxBatchSize           int `xml:"MaxBatchSize"`
	JPEGQuality            int `xml:"JPEGQuality"`
	MaxSessions            int `xml:"MaxSessions"`
	SessionTimeoutMinutes  int `xml:"SessionTimeoutMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
}

// RenderConfig contains text overlay defaults.
type RenderConfig struct {
	DefaultCanvasWidth  int     `xml:"DefaultCanvasWidth"`
	DefaultCanvasHeight int     `xml:"DefaultCanvasHeight"`
	DefaultFontSize     float64 `xml:"DefaultFontSize"`
	DefaultColor        string  `xml:"DefaultColor"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:                 8086,
			BindAddress:          "0.0.0.0",
			EnableCORS:           true,
			AllowOrigins:         "*",
			ReadTimeout:          60,
			WriteTimeout:         120,
			IdleTimeout:          120,
			BodyLimit:            "32M",
			EnableRequestLogging: true,
		},
		Storage: StorageConfig{
			DataDirectory:     "./data",
			UploadsDirectory:  "./data/uploads",
			SessionsDirectory: "./data/sessions",
			FontsDirectory:    "./data/fonts",
			PresetsFile:       "./data/presets.yaml",
		},
		Generation: GenerationConfig{
			MaxBatchSize:           100,
			JPEGQuality:            90,
			MaxSessions:            50,
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
		},
		Render: RenderConfig{
			DefaultCanvasWidth:  800,
			DefaultCanvasHeight: 600,
			DefaultFontSize:     48,
			DefaultColor:        "black",
		},
	}
}

// LoadConfig reads the XML config at path. A missing file is not an error:
// the defaults are returned so the server can start with zero setup.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := xml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyFloors()
	return cfg, nil
}

// applyFloors guards against nonsense values from a hand-edited file.
func (c *AppConfig) applyFloors() {
	if c.Generation.MaxBatchSize <= 0 {
		c.Generation.MaxBatchSize = DefaultConfig().Generation.MaxBatchSize
	}
	if c.Generation.JPEGQuality <= 0 || c.Generation.JPEGQuality > 100 {
		c.Generation.JPEGQuality = DefaultConfig().Generation.JPEGQuality
	}
	if c.Generation.MaxSessions <= 0 {
		c.Generation.MaxSessions = DefaultConfig().Generation.MaxSessions
	}
	if c.Render.DefaultFontSize <= 0 {
		c.Render.DefaultFontSize = DefaultConfig().Render.DefaultFontSize
	}
	if c.Render.DefaultCanvasWidth <= 0 || c.Render.DefaultCanvasHeight <= 0 {
		c.Render.DefaultCanvasWidth = DefaultConfig().Render.DefaultCanvasWidth
		c.Render.DefaultCanvasHeight = DefaultConfig().Render.DefaultCanvasHeight
	}
}

// GetServerAddr returns the listen address.
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all configured data directories.
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
		c.Storage.SessionsDirectory,
		c.Storage.FontsDirectory,
	}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Clean(d), 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}
	return nil
}
