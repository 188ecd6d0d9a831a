// Package export writes the auxiliary reference tables alongside the
// procedure files. Rows are copied column by column and shaped by a YAML
// profile; there is no cross-row logic apart from waypoint ident lookups.
package export

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/navdata-etl/internal/domain"
)

const (
	sourceLongitudeColumn = "Longtitude"
	longitudeColumn       = "Longitude"
	latitudeColumn        = "Latitude"
)

// TableReader reads whole tables from the navigation database.
type TableReader interface {
	TableRows(ctx context.Context, name string) ([]string, [][]domain.Value, error)
	WaypointIdents(ctx context.Context) (map[int64]domain.Value, error)
}

// TableWriter persists one exported table.
type TableWriter interface {
	WriteTable(ctx context.Context, name string, rows any) error
}

// Exporter copies the profile's tables from a reader to a writer.
type Exporter struct {
	profile Profile
	reader  TableReader
	writer  TableWriter
	logger  *slog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(profile Profile, reader TableReader, writer TableWriter, logger *slog.Logger) *Exporter {
	return &Exporter{profile: profile, reader: reader, writer: writer, logger: logger}
}

// ExportTables writes every table in the profile and returns how many were
// written. The first read or write error stops the export.
func (e *Exporter) ExportTables(ctx context.Context) (int, error) {
	idents, err := e.reader.WaypointIdents(ctx)
	if err != nil {
		return 0, err
	}

	for i, spec := range e.profile.Tables {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		cols, values, err := e.reader.TableRows(ctx, spec.Name)
		if err != nil {
			return i, err
		}

		rows := make([]*Row, 0, len(values))
		for _, v := range values {
			rows = append(rows, FormatRow(NewRow(cols, v), spec, idents))
		}
		if err := e.writer.WriteTable(ctx, spec.Name, rows); err != nil {
			return i, err
		}
		e.logger.Debug("table exported", "table", spec.Name, "rows", len(rows))
	}
	return len(e.profile.Tables), nil
}

// FormatRow applies the coordinate conventions and the table's rules to row.
func FormatRow(row *Row, spec TableSpec, idents map[int64]domain.Value) *Row {
	if v, ok := row.Pop(sourceLongitudeColumn); ok {
		row.Set(longitudeColumn, roundCoordinate(v))
	}
	if v, ok := row.Get(latitudeColumn); ok {
		row.Set(latitudeColumn, roundCoordinate(v))
	}

	for _, from := range sortedKeys(spec.Rename) {
		if v, ok := row.Pop(from); ok {
			row.Set(spec.Rename[from], v)
		}
	}

	for _, idCol := range sortedKeys(spec.Idents) {
		ref, ok := row.Get(idCol)
		if !ok {
			continue
		}
		ident := domain.Null()
		if id, ok := ref.Int64(); ok {
			ident = idents[id]
		}
		row.Set(spec.Idents[idCol], ident)
	}

	for _, c := range spec.Drop {
		row.Pop(c)
	}

	if len(spec.Columns) > 0 {
		return row.Project(spec.Columns)
	}
	return row
}

// roundCoordinate rounds reals only; integers and nulls pass through.
func roundCoordinate(v domain.Value) domain.Value {
	if f, ok := v.Any().(float64); ok {
		return domain.Real(domain.RoundCoordinate(f))
	}
	return v
}
