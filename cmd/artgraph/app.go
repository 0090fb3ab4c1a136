package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/c360studio/artgraph/config"
	"github.com/c360studio/artgraph/export"
	"github.com/c360studio/artgraph/graph"
	"github.com/c360studio/artgraph/identity"
	"github.com/c360studio/artgraph/mapper"
	"github.com/c360studio/artgraph/source"
	"github.com/c360studio/artgraph/storage"
	"github.com/c360studio/artgraph/thesaurus"
)

// graphStream is the stream created for published entities when no stream
// covers the subject yet.
const graphStream = "GRAPH"

// RunReport summarizes processed records.
type RunReport struct {
	Records     int
	Failed      int
	Entities    int
	Diagnostics int
}

// App is the main application that wires together all components.
type App struct {
	cfg      *config.Config
	runID    string
	logger   *slog.Logger
	registry prometheus.Registerer
	stdout   io.Writer

	// NATS
	natsConn *nats.Conn
	js       jetstream.JetStream

	// Term cache
	redis *goredis.Client
	store thesaurus.Store
	cache *thesaurus.Cache

	// Pipeline
	records   source.RecordFetcher
	files     *source.FileSource
	mapper    *mapper.Mapper
	assembler *graph.Assembler

	// Sinks
	publisher *graph.Publisher
	neo4j     *graph.Neo4jWriter
}

// NewApp creates a new application instance. A nil registry leaves metrics
// unregistered.
func NewApp(cfg *config.Config, runID string, registry prometheus.Registerer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:       cfg,
		runID:     runID,
		logger:    logger.With(slog.String("run", runID)),
		registry:  registry,
		stdout:    os.Stdout,
		assembler: graph.NewAssembler(),
	}
}

// Start connects to the configured services, loads the term cache and
// builds the mapping pipeline.
func (a *App) Start(ctx context.Context) error {
	if a.cfg.NATS.URL != "" {
		if err := a.connectNATS(ctx); err != nil {
			return err
		}
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open term cache: %w", err)
	}
	a.store = store
	cache, err := thesaurus.LoadCache(ctx, store)
	if err != nil {
		return err
	}
	a.cache = cache
	a.logger.Info("Term cache loaded",
		slog.String("backend", a.cfg.Cache.Backend),
		"terms", cache.Len())

	httpCfg := source.DefaultHTTPConfig()
	httpCfg.Timeout = a.cfg.Source.Timeout
	httpCfg.Retries = a.cfg.Source.Retries
	if a.cfg.Source.UserAgent != "" {
		httpCfg.UserAgent = a.cfg.Source.UserAgent
	}

	if len(a.cfg.Source.Input) > 0 {
		a.files = source.NewFileSource(a.cfg.Source.Input)
		a.records = a.files
	} else {
		a.records = source.NewClient(a.cfg.Source.RecordURL, httpCfg, a.logger)
	}

	assigner := identity.NewAssigner(a.cfg.Identity)
	scraper := source.NewTermScraper(a.cfg.Source.TermURL, httpCfg, a.logger)
	resolver := thesaurus.NewResolver(cache, scraper, assigner, thesaurus.Config{
		Locales:  a.cfg.Thesaurus.Locales,
		MaxDepth: a.cfg.Thesaurus.MaxDepth,
	}, thesaurus.NewMetrics(a.registry), a.logger)

	a.mapper = mapper.New(assigner, resolver, mapper.Config{
		FieldModes:       a.cfg.FieldModes(),
		ImageURLTemplate: a.cfg.Output.ImageURLTemplate,
		Dataset:          a.cfg.Output.Dataset,
	}, mapper.NewMetrics(a.registry), a.logger)

	if a.cfg.NATS.Publish {
		if err := a.ensureGraphStream(ctx); err != nil {
			return err
		}
		a.publisher = graph.NewPublisher(a.js, a.runID, a.logger).WithSubject(a.cfg.NATS.Subject)
	}

	if a.cfg.Neo4j.URI != "" {
		w, err := graph.DialNeo4j(ctx, graph.Neo4jConfig{
			URI:      a.cfg.Neo4j.URI,
			User:     a.cfg.Neo4j.User,
			Password: a.cfg.Neo4j.Password,
			Database: a.cfg.Neo4j.Database,
			Timeout:  a.cfg.Neo4j.Timeout,
		}, a.logger)
		if err != nil {
			return err
		}
		a.neo4j = w
	}

	a.logger.Debug("Components initialized")
	return nil
}

func (a *App) connectNATS(ctx context.Context) error {
	a.logger.Info("Connecting to NATS", slog.String("url", a.cfg.NATS.URL))
	conn, err := nats.Connect(a.cfg.NATS.URL, nats.Name("artgraph"))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	a.natsConn = conn

	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	a.js = js
	return nil
}

func (a *App) openStore(ctx context.Context) (thesaurus.Store, error) {
	switch a.cfg.Cache.Backend {
	case config.CacheBackendNATS:
		if a.js == nil {
			return nil, errors.New("nats cache backend needs nats.url")
		}
		return storage.NewKVStore(ctx, a.js, a.cfg.Cache.Bucket)
	case config.CacheBackendRedis:
		rdb, err := storage.DialRedis(ctx, a.cfg.Cache.RedisAddr, a.cfg.Cache.RedisPassword, a.cfg.Cache.RedisDB)
		if err != nil {
			return nil, err
		}
		a.redis = rdb
		return storage.NewRedisStore(rdb, a.cfg.Cache.RedisKey), nil
	default:
		return storage.NewFileStore(a.cfg.Cache.Path), nil
	}
}

// ensureGraphStream creates a stream for the publish subject unless one
// already covers it.
func (a *App) ensureGraphStream(ctx context.Context) error {
	if a.js == nil {
		return errors.New("publishing needs nats.url")
	}
	subject := a.cfg.NATS.Subject
	if subject == "" {
		subject = graph.GraphIngestSubject
	}
	_, err := a.js.StreamNameBySubject(ctx, subject)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("look up stream for %s: %w", subject, err)
	}
	_, err = a.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     graphStream,
		Subjects: []string{subject},
		MaxAge:   24 * time.Hour,
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", graphStream, err)
	}
	a.logger.Info("Created graph stream", slog.String("stream", graphStream), slog.String("subject", subject))
	return nil
}

// Run processes the records with the given ids, or every input file when no
// ids are given, and writes the results.
func (a *App) Run(ctx context.Context, ids []string) (RunReport, error) {
	var report RunReport
	switch {
	case len(ids) > 0:
		report = a.ProcessIDs(ctx, ids)
	case a.files != nil:
		paths, err := a.files.Paths()
		if err != nil {
			return report, err
		}
		report = a.ProcessFiles(ctx, paths)
	default:
		return report, errors.New("no record ids given and no input files configured")
	}
	return report, a.Finish(ctx)
}

// ProcessIDs fetches and maps records one at a time. A record that cannot
// be fetched or mapped is logged and skipped.
func (a *App) ProcessIDs(ctx context.Context, ids []string) RunReport {
	var report RunReport
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		rec, err := a.records.FetchRecord(ctx, id)
		if err != nil {
			a.logger.Error("Record fetch failed", slog.String("record", id), "error", err)
			report.Failed++
			continue
		}
		a.process(ctx, id, rec, &report)
	}
	a.logReport(report)
	return report
}

// ProcessFiles reads and maps record files one at a time.
func (a *App) ProcessFiles(ctx context.Context, paths []string) RunReport {
	var report RunReport
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		rec, err := source.ReadRecordFile(path)
		if err != nil {
			a.logger.Error("Record file unreadable", slog.String("path", path), "error", err)
			report.Failed++
			continue
		}
		a.process(ctx, path, rec, &report)
	}
	a.logReport(report)
	return report
}

func (a *App) process(ctx context.Context, origin string, rec *source.Record, report *RunReport) {
	res, err := a.mapper.MapRecord(ctx, rec)
	if err != nil {
		a.logger.Error("Record mapping failed", slog.String("record", origin), "error", err)
		report.Failed++
		return
	}
	a.assembler.Add(res.Entities...)
	report.Records++
	report.Entities += len(res.Entities)
	report.Diagnostics += len(res.Diagnostics)
}

func (a *App) logReport(r RunReport) {
	a.logger.Info("Records processed",
		"records", r.Records,
		"failed", r.Failed,
		"entities", r.Entities,
		"diagnostics", r.Diagnostics,
		"nodes", a.assembler.Len())
}

// Finish saves the term cache, exports the assembled graph and hands it to
// the configured sinks. Every step runs; failures are returned joined.
func (a *App) Finish(ctx context.Context) error {
	var errs []error

	if err := a.cache.Save(ctx, a.store); err != nil {
		a.logger.Error("Term cache not saved", "error", err)
		errs = append(errs, err)
	} else {
		a.logger.Info("Term cache saved", "terms", a.cache.Len(), "added", a.cache.Added())
	}

	if err := a.export(); err != nil {
		errs = append(errs, err)
	}

	nodes := a.assembler.Nodes()
	if a.publisher != nil {
		if _, err := a.publisher.PublishNodes(ctx, nodes); err != nil {
			errs = append(errs, fmt.Errorf("publish graph: %w", err))
		}
	}
	if a.neo4j != nil {
		if err := a.neo4j.Write(ctx, nodes); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) export() error {
	format, err := export.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return err
	}
	exporter := export.NewRDFExporter(a.cfg.Output.Graph)
	for _, n := range a.assembler.Nodes() {
		exporter.AddEntity(n)
	}
	out, err := exporter.Export(format)
	if err != nil {
		return fmt.Errorf("export graph: %w", err)
	}

	if a.cfg.Output.Path == "" {
		_, err := io.WriteString(a.stdout, out)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.cfg.Output.Path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(a.cfg.Output.Path, []byte(out), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	a.logger.Info("Graph exported",
		slog.String("path", a.cfg.Output.Path),
		slog.String("format", string(format)),
		"nodes", exporter.Len())
	return nil
}

// Watch runs once over all input files and then again for every batch of
// changed files until ctx is done.
func (a *App) Watch(ctx context.Context) error {
	if a.files == nil {
		return errors.New("watch needs input files")
	}
	paths, err := a.files.Paths()
	if err != nil {
		return err
	}
	a.ProcessFiles(ctx, paths)
	if err := a.Finish(ctx); err != nil {
		a.logger.Error("Initial run incomplete", "error", err)
	}

	w, err := source.NewWatcher(a.files, a.cfg.Source.Debounce, a.logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.Prime(paths)
	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	for batch := range w.Batches() {
		a.logger.Info("Record files changed", "files", len(batch))
		a.ProcessFiles(ctx, batch)
		if err := a.Finish(ctx); err != nil {
			a.logger.Error("Run incomplete", "error", err)
		}
	}
	return nil
}

// Shutdown closes all connections.
func (a *App) Shutdown(ctx context.Context) {
	if err := a.neo4j.Close(ctx); err != nil {
		a.logger.Warn("Neo4j close failed", "error", err)
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
		a.natsConn.Close()
	}
}
