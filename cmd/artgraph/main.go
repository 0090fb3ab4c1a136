// Package main provides the artgraph binary entry point.
// Artgraph maps art catalogue records to a linked entity graph and exports
// it as RDF.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/artgraph/config"
	"github.com/c360studio/artgraph/export"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "artgraph"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds the flags shared by run and watch.
type cliFlags struct {
	configPath  string
	input       []string
	output      string
	format      string
	logLevel    string
	metricsAddr string
}

func rootCmd() *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Map art catalogue records to a linked entity graph",
		Long: `Artgraph maps portrait records of an art catalogue to a graph of
works, persons, events, places and thesaurus concepts, and exports it as
TriG, Turtle, N-Triples or JSON-LD.

Records are read from the record API or from JSON files. Thesaurus terms
are resolved through a persistent term cache.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringSliceVarP(&flags.input, "input", "i", nil, "Glob patterns of record JSON files")
	pf.StringVarP(&flags.output, "output", "o", "", "Output file (default stdout)")
	pf.StringVarP(&flags.format, "format", "f", "", "Output format (trig, turtle, ntriples, jsonld)")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	cmd.AddCommand(&cobra.Command{
		Use:   "run [record-id...]",
		Short: "Map records once and export the graph",
		Long: `Map the given records, or every input file when no ids are given,
and export the assembled graph.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), flags, func(ctx context.Context, app *App) error {
				report, err := app.Run(ctx, args)
				if err == nil && report.Records == 0 && report.Failed > 0 {
					return fmt.Errorf("all %d records failed", report.Failed)
				}
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Map input files and re-run when they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), flags, func(ctx context.Context, app *App) error {
				return app.Watch(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func execute(parent context.Context, flags cliFlags, fn func(context.Context, *App) error) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := newLogger(flags.logLevel)
	slog.SetDefault(logger)

	cfg, err := loadConfig(flags, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := uuid.NewString()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, registry, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("Artgraph starting",
		slog.String("version", Version),
		slog.String("run", runID),
		slog.String("format", cfg.Output.Format))

	app := NewApp(cfg, runID, registry, logger)
	defer app.Shutdown(context.Background())
	if err := app.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, app)
}

func newLogger(level string) *slog.Logger {
	l := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// loadConfig layers the config files and applies the flags on top.
func loadConfig(flags cliFlags, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.NewLoader(logger).Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlags(cfg, flags)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, flags cliFlags) {
	cfg.Merge(&config.Config{
		Source:  config.SourceConfig{Input: flags.input},
		Output:  config.OutputConfig{Path: flags.output, Format: flags.format},
		Metrics: config.MetricsConfig{Addr: flags.metricsAddr},
	})
	// An output file extension picks the format unless one was given.
	if flags.format == "" && flags.output != "" {
		if format, err := export.ParseFormat(filepath.Ext(flags.output)); err == nil {
			cfg.Output.Format = string(format)
		}
	}
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", slog.String("addr", addr), "error", err)
		}
	}()
	logger.Info("Serving metrics", slog.String("addr", addr))
	return srv
}
