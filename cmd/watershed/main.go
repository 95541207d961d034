package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hydrosift/watershed/internal/api"
	"github.com/hydrosift/watershed/internal/config"
	"github.com/hydrosift/watershed/internal/core"
	"github.com/hydrosift/watershed/internal/report"
)

var (
	configFile string
	demPath    string
	pourPoints string
	outputDir  string
	threshold  float64
	enginePath string
	logLevel   string
	logFormat  string
	apiEnabled bool
	apiPort    int
	apiHost    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "watershed",
		Short: "Watershed Delineation Pipeline - fill sinks, route flow, extract streams, delineate basins",
		Run:   runWatershed,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&demPath, "dem", "", "Path to the input DEM raster")
	rootCmd.PersistentFlags().StringVar(&pourPoints, "pour-points", "", "Path to the pour points shapefile")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Output directory for results")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", config.DefaultStreamThreshold, "Stream initiation threshold")
	rootCmd.PersistentFlags().StringVar(&enginePath, "engine-path", "", "Path to the SAGA command-line binary")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console, json)")

	// API server flags
	rootCmd.PersistentFlags().BoolVar(&apiEnabled, "api", false, "Serve the API instead of running once")
	rootCmd.PersistentFlags().IntVar(&apiPort, "api-port", config.DefaultAPIPort, "API server port")
	rootCmd.PersistentFlags().StringVar(&apiHost, "api-host", config.DefaultAPIHost, "API server host")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWatershed(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		errLogger := zerolog.New(os.Stderr)
		errLogger.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)

	c := core.NewCore(cfg, logger)
	if !c.Initialize() {
		logger.Error().Msg("failed to initialize core system")
		os.Exit(1)
	}
	if !c.Start() {
		logger.Error().Msg("failed to start core system")
		c.Stop()
		os.Exit(1)
	}

	if cfg.API.Enabled {
		serve(c, cfg, logger)
		return
	}

	if err := cfg.ValidateRun(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		c.Stop()
		os.Exit(1)
	}

	result, err := c.Execute(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("watershed delineation failed")
		c.Stop()
		os.Exit(1)
	}

	report.WriteSummary(os.Stdout, result)
	c.Stop()
}

// serve runs the API server until SIGINT/SIGTERM, then shuts down and
// releases the engine session
func serve(c *core.Core, cfg *config.Config, logger zerolog.Logger) {
	apiServer := api.NewAPI(c, cfg.API.Host, cfg.API.Port, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return apiServer.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("API server error")
		c.Stop()
		os.Exit(1)
	}

	logger.Info().Msg("shutting down")
	c.Stop()
}

// loadConfig loads the configuration file and layers explicit CLI flags on
// top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dem") {
		cfg.DEMPath = demPath
	}
	if flags.Changed("pour-points") {
		cfg.PourPointsPath = pourPoints
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("threshold") {
		cfg.StreamThreshold = threshold
	}
	if flags.Changed("engine-path") {
		cfg.EnginePath = enginePath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("api") {
		cfg.API.Enabled = apiEnabled
	}
	if flags.Changed("api-port") {
		cfg.API.Port = apiPort
	}
	if flags.Changed("api-host") {
		cfg.API.Host = apiHost
	}

	return cfg, nil
}

// newLogger builds the process logger from config
func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "json" {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return logger.Level(level).With().Timestamp().Logger()
}
