// Command navconv converts a navigation database into per-procedure leg
// files and reference tables, packs them into an archive, and optionally
// publishes procedures to Kafka and the archive to S3.
//
// Usage:
//
//	navconv -db navdata.db3 -start 0
//
// Missing -db or -start values fall back to NAVDB_PATH and
// START_TERMINAL_ID, then to an interactive prompt when stdin is a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/couchcryptid/navdata-etl/internal/adapter/archive"
	httpadapter "github.com/couchcryptid/navdata-etl/internal/adapter/http"
	"github.com/couchcryptid/navdata-etl/internal/adapter/jsonfile"
	kafkaadapter "github.com/couchcryptid/navdata-etl/internal/adapter/kafka"
	s3adapter "github.com/couchcryptid/navdata-etl/internal/adapter/s3"
	"github.com/couchcryptid/navdata-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/navdata-etl/internal/config"
	"github.com/couchcryptid/navdata-etl/internal/export"
	"github.com/couchcryptid/navdata-etl/internal/observability"
	"github.com/couchcryptid/navdata-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dbFlag := flag.String("db", "", "navigation database path (overrides NAVDB_PATH)")
	startFlag := flag.String("start", "", "first TerminalID to convert (overrides START_TERMINAL_ID)")
	flag.Parse()

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := resolveInputs(ctx, cfg, *dbFlag, *startFlag, logger); err != nil {
		logger.Error("invalid input", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("conversion failed", "error", err)
		os.Exit(1)
	}
}

// resolveInputs applies flags over the environment and prompts for whatever
// is still missing.
func resolveInputs(ctx context.Context, cfg *config.Config, db, start string, logger *slog.Logger) error {
	if db != "" {
		cfg.NavDBPath = db
	}
	if start != "" {
		if err := cfg.SetStartTerminalID(start); err != nil {
			return err
		}
	}
	if cfg.NavDBPath != "" && cfg.StartSet {
		return cfg.Validate()
	}

	if !isInteractive(os.Stdin) {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%w: %w", errNotInteractive, err)
		}
		return nil
	}

	p := newPrompter(os.Stdin, os.Stdout)
	if cfg.NavDBPath == "" {
		path, err := p.databasePath(checkDatabase(ctx, logger))
		if err != nil {
			return err
		}
		cfg.NavDBPath = path
	}
	if !cfg.StartSet {
		if err := p.startTerminalID(cfg.SetStartTerminalID); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

// checkDatabase returns a validator that accepts only existing .db3 files
// containing every required table.
func checkDatabase(ctx context.Context, logger *slog.Logger) func(string) error {
	return func(path string) error {
		if filepath.Ext(path) != ".db3" {
			return fmt.Errorf("%q is not a .db3 file", path)
		}
		src, err := sqlite.Open(ctx, path, logger)
		if err != nil {
			return err
		}
		defer src.Close()
		return src.CheckSchema(ctx)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	src, err := sqlite.Open(ctx, cfg.NavDBPath, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := src.CheckSchema(ctx); err != nil {
		return err
	}

	files, err := jsonfile.NewWriter(cfg.OutputDir)
	if err != nil {
		return err
	}

	loaders := []pipeline.ProcedureLoader{files}
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, clockwork.NewRealClock(), logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	var exporter pipeline.TableExporter
	if cfg.ExportReferenceTables {
		profile, err := export.LoadProfile(cfg.ExportProfilePath)
		if err != nil {
			return err
		}
		exporter = export.NewExporter(profile, src, files, logger)
	}

	p := pipeline.New(src, pipeline.FanOut(loaders...), exporter, logger, metrics)
	logger = logger.With("run_id", p.RunID())

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	sum, err := p.Run(ctx, cfg.StartTerminalID)
	if err != nil {
		return err
	}

	if !cfg.ArchiveEnabled {
		logger.Info("conversion complete", "output_dir", cfg.OutputDir, "procedures", sum.Procedures)
		return nil
	}

	packager := archive.NewPackager(clockwork.NewRealClock(), logger)
	res, err := packager.Package(ctx, cfg.OutputDir, cfg.ArchivePath, cfg.KeepOutputDir)
	if err != nil {
		return err
	}

	if cfg.S3Enabled() {
		uploader, err := s3adapter.NewUploader(ctx, cfg, logger)
		if err != nil {
			return err
		}
		meta := map[string]string{
			"run-id":            p.RunID(),
			"start-terminal-id": strconv.FormatInt(cfg.StartTerminalID, 10),
			"procedures":        strconv.Itoa(sum.Procedures),
		}
		if _, err := uploader.Upload(ctx, res.Path, meta); err != nil {
			return err
		}
	}

	logger.Info("conversion complete", "archive", res.Path, "procedures", sum.Procedures, "legs", sum.Legs)
	return nil
}
