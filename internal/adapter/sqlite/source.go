package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/couchcryptid/navdata-etl/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotNavDatabase is returned by CheckSchema when required tables are missing.
var ErrNotNavDatabase = errors.New("not a navigation database")

// RequiredTables lists the tables a navigation database must contain. Names
// are matched case-sensitively against sqlite_master.
var RequiredTables = []string{
	"AirportCommunication", "AirportLookup", "Airports", "AirwayLegs", "Airways", "config",
	"Gls", "GridMora", "Holdings", "ILSes", "Markers", "MarkerTypes", "NavaidLookup",
	"Navaids", "NavaidTypes", "Runways", "SurfaceTypes", "TerminalLegs", "TerminalLegsEx",
	"Terminals", "TrmLegTypes", "WaypointLookup", "Waypoints",
}

// legColumns is the TerminalLegs projection read by Legs, in scan order.
const legColumns = `ID, TerminalID, Type, Transition, TrackCode,
	WptID, WptLat, WptLon, TurnDir,
	NavID, NavLat, NavLon, NavBear, NavDist,
	Course, Distance, Alt, Vnav,
	CenterID, CenterLat, CenterLon`

// Source reads a navigation database. It implements pipeline.Source and
// export.TableReader.
type Source struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens the database at path read-only. The file must already exist.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open navdata database: %w", err)
	}

	db, err := sql.Open("sqlite3", DSN(path, "ro"))
	if err != nil {
		return nil, fmt.Errorf("open navdata database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping navdata database: %w", err)
	}
	return &Source{db: db, path: path, logger: logger}, nil
}

// DSN returns a SQLite URI for the file at path opened with the given mode
// (ro, rw, rwc). The path is percent-encoded, so '#', '?' and '%' in file
// names reach the filesystem unchanged.
func DSN(path, mode string) string {
	u := url.URL{Scheme: "file", OmitHost: true, Path: path, RawQuery: "mode=" + mode}
	return u.String()
}

func (s *Source) Close() error {
	return s.db.Close()
}

// CheckSchema verifies every required table is present.
func (s *Source) CheckSchema(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("list tables: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list tables: %w", err)
	}

	var missing []string
	for _, t := range RequiredTables {
		if !present[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s is missing tables %s", ErrNotNavDatabase, s.path, strings.Join(missing, ", "))
	}
	return nil
}

// LoadReferences reads waypoint and runway coordinates and the runway of
// each terminal. Rows with a null coordinate or runway are left out, so
// lookups for them report not found.
func (s *Source) LoadReferences(ctx context.Context) (*domain.ReferenceTables, error) {
	waypoints, err := s.coordinates(ctx, "Waypoints")
	if err != nil {
		return nil, err
	}
	runways, err := s.coordinates(ctx, "Runways")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT ID, RwyID FROM Terminals")
	if err != nil {
		return nil, fmt.Errorf("query terminals: %w", err)
	}
	defer rows.Close()

	terminals := make(map[int64]int64)
	for rows.Next() {
		var id int64
		var rwy sql.NullInt64
		if err := rows.Scan(&id, &rwy); err != nil {
			return nil, fmt.Errorf("scan terminal: %w", err)
		}
		if rwy.Valid {
			terminals[id] = rwy.Int64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query terminals: %w", err)
	}

	refs := domain.NewReferenceTables(waypoints, runways, terminals)
	w, r, t := refs.Len()
	s.logger.Debug("reference tables loaded", "waypoints", w, "runways", r, "terminals", t)
	return refs, nil
}

// table is always one of the two constant names passed by LoadReferences.
func (s *Source) coordinates(ctx context.Context, table string) (map[int64]domain.Coordinate, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT ID, Latitude, Longtitude FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", strings.ToLower(table), err)
	}
	defer rows.Close()

	out := make(map[int64]domain.Coordinate)
	skipped := 0
	for rows.Next() {
		var id int64
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&id, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan %s: %w", strings.ToLower(table), err)
		}
		if !lat.Valid || !lon.Valid {
			skipped++
			continue
		}
		out[id] = domain.Coordinate{Lat: lat.Float64, Lon: lon.Float64}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", strings.ToLower(table), err)
	}
	if skipped > 0 {
		s.logger.Warn("reference rows without coordinates skipped", "table", table, "count", skipped)
	}
	return out, nil
}

// LegExtensions reads TerminalLegsEx keyed by leg id.
func (s *Source) LegExtensions(ctx context.Context) (map[int64]domain.LegExtension, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT ID, IsFlyOver, SpeedLimit FROM TerminalLegsEx")
	if err != nil {
		return nil, fmt.Errorf("query leg extensions: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]domain.LegExtension)
	for rows.Next() {
		var id int64
		var flyOver, speed any
		if err := rows.Scan(&id, &flyOver, &speed); err != nil {
			return nil, fmt.Errorf("scan leg extension: %w", err)
		}
		out[id] = domain.LegExtension{
			LegID:      id,
			FlyOver:    domain.ValueOf(flyOver),
			SpeedLimit: domain.ValueOf(speed),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query leg extensions: %w", err)
	}
	return out, nil
}

// Legs reads every TerminalLegs row with TerminalID >= start in storage
// order. No ORDER BY is applied: storage order is the leg sequence.
func (s *Source) Legs(ctx context.Context, start int64) ([]domain.Leg, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+legColumns+" FROM TerminalLegs WHERE TerminalID >= ?", start)
	if err != nil {
		return nil, fmt.Errorf("query terminal legs: %w", err)
	}
	defer rows.Close()

	var legs []domain.Leg
	for rows.Next() {
		leg, err := scanLeg(rows)
		if err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query terminal legs: %w", err)
	}
	return legs, nil
}

func scanLeg(rows *sql.Rows) (domain.Leg, error) {
	raw := make([]any, 21)
	ptrs := make([]any, len(raw))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return domain.Leg{}, fmt.Errorf("scan terminal leg: %w", err)
	}

	v := make([]domain.Value, len(raw))
	for i := range raw {
		v[i] = domain.ValueOf(raw[i])
	}

	id, ok := v[0].Int64()
	if !ok {
		return domain.Leg{}, fmt.Errorf("scan terminal leg: invalid ID %s", v[0])
	}
	terminalID, ok := v[1].Int64()
	if !ok {
		return domain.Leg{}, fmt.Errorf("scan terminal leg %d: invalid TerminalID %s", id, v[1])
	}

	return domain.Leg{
		ID:         id,
		TerminalID: terminalID,
		Type:       v[2],
		Transition: v[3],
		TrackCode:  v[4],
		Waypoint:   domain.FixRef{ID: v[5], Lat: v[6], Lon: v[7]},
		TurnDir:    v[8],
		Navaid:     domain.FixRef{ID: v[9], Lat: v[10], Lon: v[11]},
		NavBearing: v[12],
		NavDist:    v[13],
		Course:     v[14],
		Distance:   v[15],
		Altitude:   v[16],
		Vnav:       v[17],
		Center:     domain.FixRef{ID: v[18], Lat: v[19], Lon: v[20]},
	}, nil
}

// TableRows returns the column names and every row of a table in storage
// order. name must come from a trusted list; it is quoted but not checked.
func (s *Source) TableRows(ctx context.Context, name string) ([]string, [][]domain.Value, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return nil, nil, fmt.Errorf("query table %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("columns of %s: %w", name, err)
	}

	var out [][]domain.Value
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan table %s: %w", name, err)
		}
		row := make([]domain.Value, len(cols))
		for i := range raw {
			row[i] = domain.ValueOf(raw[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("query table %s: %w", name, err)
	}
	return cols, out, nil
}

// WaypointIdents maps waypoint ids to their idents.
func (s *Source) WaypointIdents(ctx context.Context) (map[int64]domain.Value, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT ID, Ident FROM Waypoints")
	if err != nil {
		return nil, fmt.Errorf("query waypoint idents: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]domain.Value)
	for rows.Next() {
		var id int64
		var ident any
		if err := rows.Scan(&id, &ident); err != nil {
			return nil, fmt.Errorf("scan waypoint ident: %w", err)
		}
		out[id] = domain.ValueOf(ident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query waypoint idents: %w", err)
	}
	return out, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
