// Command audioengine is the composition root: it wires config, logging,
// the Decoder Registry, Resample Cache, Loader, Device Backend and
// Playback Engine into a gin HTTP + WebSocket server listening on
// loopback, per spec.md §6. It replaces the teacher's Wails desktop-app
// entrypoint with a headless server bootstrap, keeping the same
// config -> logger -> engine -> serve ordering.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/audioengine/audioengine/internal/cache"
	"github.com/audioengine/audioengine/internal/config"
	"github.com/audioengine/audioengine/internal/decoder"
	"github.com/audioengine/audioengine/internal/dsp"
	"github.com/audioengine/audioengine/internal/engine"
	"github.com/audioengine/audioengine/internal/loader"
	"github.com/audioengine/audioengine/internal/logger"
	"github.com/audioengine/audioengine/internal/output"
	httptransport "github.com/audioengine/audioengine/internal/transport/http"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var (
		resampleCacheDir = flag.String("resample-cache-dir", "", "directory for resampled PCM cache (absent disables caching)")
		configPath       = flag.String("config", "", "path to configuration file")
		logLevel         = flag.String("log-level", "", "log level (debug, info, warn, error)")
		listenAddr       = flag.String("listen-addr", "", "HTTP/WS listen address")
		showVersion      = flag.Bool("version", false, "show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("audioengine %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	cfg := config.Get()
	if *configPath != "" {
		fmt.Printf("Loading configuration from: %s\n", *configPath)
	}
	if *resampleCacheDir != "" {
		cfg.ResampleCacheDir = *resampleCacheDir
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = level
	logger.Initialize(logCfg)
	log := logger.Zerolog(logCfg)

	logger.Info("audioengine starting",
		logger.String("version", Version),
		logger.String("build_time", BuildTime),
		logger.String("listen_addr", cfg.ListenAddr),
		logger.String("resample_cache_dir", cfg.ResampleCacheDir),
	)

	devices := output.NewManager()
	registry := decoder.NewRegistry()
	resampleCache := cache.New(cfg.ResampleCacheDir, log)
	ld := loader.New(registry, resampleCache, devices, log)

	eng := engine.New(devices, ld, log)
	defer eng.Close()

	if cfg.DefaultExclusive {
		if err := eng.ConfigureOutput(nil, true); err != nil {
			logger.Warn("failed to apply default exclusive mode", logger.Error(err))
		}
	}

	if cfg.EQPreset != "" && cfg.EQPreset != "flat" {
		gains, ok := dsp.Preset(cfg.EQPreset)
		if !ok {
			logger.Warn("unknown eq_preset, ignoring", logger.String("preset", cfg.EQPreset))
		} else if err := eng.SetEQ(gains, true); err != nil {
			logger.Warn("failed to apply eq_preset", logger.Error(err))
		}
	}

	server := httptransport.New(cfg.ListenAddr, eng, devices, log)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal("server exited", logger.Error(err))
		}
	case <-sigCtx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.ErrorLog("graceful shutdown failed", logger.Error(err))
		}
	}
}
