package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/invitegen/backend/internal/api"
	"github.com/invitegen/backend/internal/config"
	"github.com/invitegen/backend/internal/extract"
	"github.com/invitegen/backend/internal/generate"
	"github.com/invitegen/backend/internal/render"
	"github.com/invitegen/backend/internal/session"
	"github.com/invitegen/backend/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Resolve the config next to the executable so a deployment is a
	// directory drop.
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := filepath.Join(exeDir, "invitegen.config.xml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewLocalStore(cfg.Storage.UploadsDirectory)
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	sessionMgr := session.NewManager(cfg.Storage.SessionsDirectory, cfg.Generation.MaxSessions)

	// Background sweep for sessions that were never downloaded.
	go func() {
		interval := time.Duration(cfg.Generation.CleanupIntervalMinutes) * time.Minute
		maxAge := time.Duration(cfg.Generation.SessionTimeoutMinutes) * time.Minute
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupExpired(maxAge)
		}
	}()

	compositor := render.NewCompositor(
		cfg.Storage.FontsDirectory,
		cfg.Render.DefaultCanvasWidth,
		cfg.Render.DefaultCanvasHeight,
		cfg.Render.DefaultFontSize,
		cfg.Render.DefaultColor,
	)
	engine := generate.NewEngine(compositor, cfg.Generation.MaxBatchSize, cfg.Generation.JPEGQuality)
	extractor := extract.NewRegistry()

	presets, err := config.LoadPresets(cfg.Storage.PresetsFile)
	if err != nil {
		fmt.Printf("Warning: failed to load style presets: %v\n", err)
	}

	h := api.NewHandler(sessionMgr, store, extractor, compositor, engine, presets, Version)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Server.EnableRequestLogging {
				return true
			}
			return c.Request().URL.Path == "/api/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		// Archives and rendered images are already compressed.
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return strings.HasPrefix(p, "/api/download/") || p == "/api/preview"
		},
	}))
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, h)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("InviteGen server %s (built %s)\n", Version, BuildTime)
	fmt.Printf("  Config:  %s\n", configPath)
	fmt.Printf("  Listen:  http://%s\n", cfg.GetServerAddr())
	fmt.Printf("  Data:    %s\n", cfg.Storage.DataDirectory)

	e.Logger.Fatal(e.StartServer(s))
}
