package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/navdata-etl/internal/domain"
	"github.com/couchcryptid/navdata-etl/internal/observability"
	"github.com/google/uuid"
)

// Source reads the navigation database.
type Source interface {
	LoadReferences(ctx context.Context) (*domain.ReferenceTables, error)
	LegExtensions(ctx context.Context) (map[int64]domain.LegExtension, error)
	Legs(ctx context.Context, startTerminalID int64) ([]domain.Leg, error)
}

// ProcedureLoader writes one normalized procedure to a sink.
type ProcedureLoader interface {
	LoadProcedure(ctx context.Context, proc domain.Procedure) error
}

// TableExporter writes the reference tables that accompany the procedures.
type TableExporter interface {
	ExportTables(ctx context.Context) (int, error)
}

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Tables     int
	Procedures int
	Legs       int
	FAFs       int
	MAPs       int
	Backfills  map[domain.BackfillRule]domain.BackfillCount
	Duration   time.Duration
}

// Pipeline converts every procedure at or above a start TerminalID.
type Pipeline struct {
	source   Source
	loader   ProcedureLoader
	exporter TableExporter
	logger   *slog.Logger
	metrics  *observability.Metrics
	runID    string
	ready    atomic.Bool

	state      atomic.Int32
	procedures atomic.Int64
	legs       atomic.Int64
}

// Run states reported by Progress.
const (
	StatePending int32 = iota
	StateRunning
	StateFinished
	StateFailed
)

var stateNames = [...]string{"pending", "running", "finished", "failed"}

// Progress is a point-in-time view of a run, safe to read while it executes.
type Progress struct {
	RunID      string `json:"run_id"`
	State      string `json:"state"`
	Procedures int64  `json:"procedures"`
	Legs       int64  `json:"legs"`
}

// Failed reports whether the run stopped with an error.
func (p Progress) Failed() bool { return p.State == stateNames[StateFailed] }

// New creates a Pipeline. exporter may be nil to skip the reference tables.
// Each Pipeline gets a run id that is attached to its log lines.
func New(src Source, loader ProcedureLoader, exporter TableExporter, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	runID := uuid.NewString()
	return &Pipeline{
		source:   src,
		loader:   loader,
		exporter: exporter,
		logger:   logger.With("run_id", runID),
		metrics:  metrics,
		runID:    runID,
	}
}

// RunID identifies this run in logs and archive metadata.
func (p *Pipeline) RunID() string { return p.runID }

// CheckReadiness returns nil once at least one procedure has been loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any procedures yet")
	}
	return nil
}

// Progress reports the state of the run and how much it has loaded so far.
func (p *Pipeline) Progress() Progress {
	return Progress{
		RunID:      p.runID,
		State:      stateNames[p.state.Load()],
		Procedures: p.procedures.Load(),
		Legs:       p.legs.Load(),
	}
}

// Run exports the reference tables, loads the lookup data once, and then
// normalizes and loads each procedure in turn. Any source or sink error
// stops the run. Cancellation is checked between procedures.
func (p *Pipeline) Run(ctx context.Context, startTerminalID int64) (sum Summary, err error) {
	started := time.Now()
	p.state.Store(StateRunning)
	defer func() {
		sum.Duration = time.Since(started)
		if err != nil {
			p.state.Store(StateFailed)
			return
		}
		p.state.Store(StateFinished)
	}()

	sum = Summary{RunID: p.runID, Backfills: make(map[domain.BackfillRule]domain.BackfillCount)}

	p.logger.Info("pipeline started", "start_terminal_id", startTerminalID)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	if p.exporter != nil {
		n, err := p.exporter.ExportTables(ctx)
		p.metrics.TablesExported.Add(float64(n))
		sum.Tables = n
		if err != nil {
			return sum, fmt.Errorf("export reference tables: %w", err)
		}
		p.logger.Info("reference tables exported", "tables", n)
	}

	refs, err := p.source.LoadReferences(ctx)
	if err != nil {
		return sum, fmt.Errorf("load reference tables: %w", err)
	}
	extensions, err := p.source.LegExtensions(ctx)
	if err != nil {
		return sum, fmt.Errorf("load leg extensions: %w", err)
	}
	legs, err := p.source.Legs(ctx, startTerminalID)
	if err != nil {
		return sum, fmt.Errorf("load terminal legs: %w", err)
	}

	procedures := domain.GroupProcedures(legs)
	p.logger.Info("terminal legs loaded", "legs", len(legs), "procedures", len(procedures))

	normalizer := domain.NewNormalizer(refs, extensions)
	for _, proc := range procedures {
		if err := ctx.Err(); err != nil {
			p.logger.Info("pipeline stopping", "reason", err, "procedures_done", sum.Procedures)
			return sum, err
		}
		if err := p.processProcedure(ctx, normalizer, proc, &sum); err != nil {
			return sum, err
		}
	}

	p.logger.Info("pipeline finished",
		"procedures", sum.Procedures,
		"legs", sum.Legs,
		"faf", sum.FAFs,
		"map", sum.MAPs,
		"duration", time.Since(started),
	)
	return sum, nil
}

func (p *Pipeline) processProcedure(ctx context.Context, n *domain.Normalizer, proc domain.ProcedureLegs, sum *Summary) error {
	start := time.Now()

	res := n.Normalize(proc.TerminalID, proc.Legs)
	if err := p.loader.LoadProcedure(ctx, res.Procedure); err != nil {
		p.metrics.LoadErrors.Inc()
		return fmt.Errorf("load procedure %d: %w", proc.TerminalID, err)
	}

	p.record(res, sum)
	p.metrics.ProcedureDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)

	p.logger.Debug("procedure loaded",
		"terminal_id", proc.TerminalID,
		"legs", len(res.Procedure.Legs),
		"faf", res.FAFs,
		"map", res.MAPs,
	)
	return nil
}

func (p *Pipeline) record(res domain.ProcedureResult, sum *Summary) {
	legs := len(res.Procedure.Legs)
	sum.Procedures++
	sum.Legs += legs
	sum.FAFs += res.FAFs
	sum.MAPs += res.MAPs
	p.procedures.Add(1)
	p.legs.Add(int64(legs))

	p.metrics.ProceduresProcessed.Inc()
	p.metrics.LegsNormalized.Add(float64(legs))
	p.metrics.ProcedureSize.Observe(float64(legs))
	p.metrics.DerivedFlags.WithLabelValues("faf").Add(float64(res.FAFs))
	p.metrics.DerivedFlags.WithLabelValues("map").Add(float64(res.MAPs))

	for rule, c := range res.Backfills {
		total := sum.Backfills[rule]
		total.Resolved += c.Resolved
		total.Unresolved += c.Unresolved
		sum.Backfills[rule] = total

		p.metrics.Backfills.WithLabelValues(rule.String(), "resolved").Add(float64(c.Resolved))
		p.metrics.Backfills.WithLabelValues(rule.String(), "unresolved").Add(float64(c.Unresolved))
		if c.Unresolved > 0 {
			p.logger.Warn("coordinate backfill found no reference",
				"terminal_id", res.Procedure.TerminalID,
				"rule", rule.String(),
				"count", c.Unresolved,
			)
		}
	}
}
