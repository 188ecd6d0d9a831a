package export_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/navdata-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/navdata-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/navdata-etl/internal/domain"
	"github.com/couchcryptid/navdata-etl/internal/export"
	"github.com/couchcryptid/navdata-etl/internal/navfixture"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeRow(t *testing.T, r *export.Row) string {
	t.Helper()
	data, err := domain.EncodeJSON(r)
	require.NoError(t, err)
	return string(data)
}

func TestFormatRow_LongitudeMovesToEnd(t *testing.T) {
	row := export.NewRow(
		[]string{"ID", "Latitude", "Longtitude", "Elevation"},
		[]domain.Value{domain.Int(1), domain.Real(47.123456789), domain.Real(8.987654321), domain.Int(1400)},
	)

	out := export.FormatRow(row, export.TableSpec{Name: "Markers"}, nil)

	assert.Equal(t, `{"ID":1,"Latitude":47.12345679,"Elevation":1400,"Longitude":8.98765432}`, encodeRow(t, out))
}

func TestFormatRow_NullAndIntegerCoordinates(t *testing.T) {
	row := export.NewRow(
		[]string{"Latitude", "Longtitude"},
		[]domain.Value{domain.Null(), domain.Int(8)},
	)

	out := export.FormatRow(row, export.TableSpec{Name: "Markers"}, nil)

	assert.Equal(t, `{"Latitude":null,"Longitude":8}`, encodeRow(t, out))
}

func TestFormatRow_RenameAndProject(t *testing.T) {
	spec := export.TableSpec{
		Name:    "Airports",
		Rename:  map[string]string{"TransitionAltitude": "TransAlt"},
		Columns: []string{"ICAO", "TransAlt", "Missing"},
	}
	row := export.NewRow(
		[]string{"ID", "ICAO", "TransitionAltitude"},
		[]domain.Value{domain.Int(1), domain.Str("LSZH"), domain.Int(5000)},
	)

	assert.Equal(t, `{"ICAO":"LSZH","TransAlt":5000}`, encodeRow(t, export.FormatRow(row, spec, nil)))
}

func TestFormatRow_Idents(t *testing.T) {
	spec := export.TableSpec{
		Name:   "AirwayLegs",
		Idents: map[string]string{"Waypoint1ID": "Waypoint1", "Waypoint2ID": "Waypoint2"},
	}
	idents := map[int64]domain.Value{100: domain.Str("ALPHA")}
	row := export.NewRow(
		[]string{"ID", "Waypoint1ID", "Waypoint2ID"},
		[]domain.Value{domain.Int(1), domain.Int(100), domain.Null()},
	)

	got := encodeRow(t, export.FormatRow(row, spec, idents))
	assert.Equal(t, `{"ID":1,"Waypoint1ID":100,"Waypoint2ID":null,"Waypoint1":"ALPHA","Waypoint2":null}`, got)
}

func TestFormatRow_Drop(t *testing.T) {
	spec := export.TableSpec{Name: "Navaids", Drop: []string{"Range", "MagneticVariation"}}
	row := export.NewRow(
		[]string{"ID", "MagneticVariation", "Range", "Ident"},
		[]domain.Value{domain.Int(1), domain.Real(2.5), domain.Int(130), domain.Str("KLO")},
	)

	assert.Equal(t, `{"ID":1,"Ident":"KLO"}`, encodeRow(t, export.FormatRow(row, spec, nil)))
}

func TestRow_SetKeepsPosition(t *testing.T) {
	row := export.NewRow([]string{"A", "B"}, []domain.Value{domain.Int(1), domain.Int(2)})
	row.Set("A", domain.Int(3))
	row.Set("C", domain.Int(4))
	assert.Equal(t, []string{"A", "B", "C"}, row.Keys())

	_, ok := row.Pop("Z")
	assert.False(t, ok)
}

func TestDefaultProfile(t *testing.T) {
	p, err := export.DefaultProfile()
	require.NoError(t, err)

	var names []string
	for _, tbl := range p.Tables {
		names = append(names, tbl.Name)
	}
	want := []string{
		"AirportLookup", "Airports", "AirwayLegs", "Airways", "Ilses", "NavaidLookup",
		"Navaids", "Runways", "Terminals", "WaypointLookup", "Waypoints",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("profile tables mismatch (-want +got):\n%s", diff)
	}
}

func TestParseProfile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "tables: []"},
		{"bad name", "tables:\n  - name: \"Airports; DROP TABLE x\""},
		{"duplicate", "tables:\n  - name: Airports\n  - name: Airports"},
		{"malformed", "tables: [name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := export.ParseProfile([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoadProfile_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables:\n  - name: Airways\n"), 0o644))

	p, err := export.LoadProfile(path)
	require.NoError(t, err)
	require.Len(t, p.Tables, 1)
	assert.Equal(t, "Airways", p.Tables[0].Name)
}

// --- exporter ---

type fakeReader struct {
	err error
}

func (f *fakeReader) TableRows(_ context.Context, name string) ([]string, [][]domain.Value, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return []string{"ID"}, [][]domain.Value{{domain.Int(1)}}, nil
}

func (f *fakeReader) WaypointIdents(context.Context) (map[int64]domain.Value, error) {
	return nil, nil
}

type recordingWriter struct {
	tables []string
}

func (w *recordingWriter) WriteTable(_ context.Context, name string, _ any) error {
	w.tables = append(w.tables, name)
	return nil
}

func TestExportTables_ReadError(t *testing.T) {
	profile := export.Profile{Tables: []export.TableSpec{{Name: "Airways"}}}
	w := &recordingWriter{}
	e := export.NewExporter(profile, &fakeReader{err: errors.New("disk I/O error")}, w, slog.Default())

	n, err := e.ExportTables(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, w.tables)
}

func TestExportTables_Fixture(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "navdata.db3")
	require.NoError(t, navfixture.Create(context.Background(), dbPath))

	src, err := sqlite.Open(context.Background(), dbPath, slog.Default())
	require.NoError(t, err)
	defer src.Close()

	out, err := jsonfile.NewWriter(filepath.Join(dir, "Primary"))
	require.NoError(t, err)

	profile, err := export.DefaultProfile()
	require.NoError(t, err)

	n, err := export.NewExporter(profile, src, out, slog.Default()).ExportTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(out.Dir(), name+".json"))
		require.NoError(t, err)
		return string(data)
	}

	assert.Equal(t,
		`[{"Elevation":1417,"ICAO":"LSZH","ID":1,"Latitude":47.458056,"Longitude":8.548056,"Name":"ZURICH","PrimaryID":1,"TransAlt":5000}]`,
		read("Airports"))
	assert.Equal(t,
		`[{"ID":1,"AirwayID":1,"Level":"B","Waypoint1ID":100,"Waypoint2ID":101,"IsStart":1,"IsEnd":0,"Waypoint1":"ALPHA","Waypoint2":"BRAVO"},`+
			`{"ID":2,"AirwayID":1,"Level":"B","Waypoint1ID":101,"Waypoint2ID":999,"IsStart":0,"IsEnd":1,"Waypoint1":"BRAVO","Waypoint2":null}]`,
		read("AirwayLegs"))
	assert.Equal(t,
		`[{"ID":200,"Ident":"KLO","Type":1,"Name":"KLOTEN","Freq":114850,"Channel":null,"Usage":"H","Latitude":47.45,"Elevation":1400,"SlavedVar":2.0,"Longitude":8.54}]`,
		read("Navaids"))
	assert.Equal(t,
		`[{"ID":1,"AirportID":1,"Ident":"16","TrueHeading":155.2,"Length":3700,"Width":60,"Surface":"ASP","Latitude":47.46406161,"Longitude":8.54918691,"Elevation":1390}]`,
		read("Runways"))
	assert.Equal(t, `[{"ID":1,"extID":"LSZH"}]`, read("AirportLookup"))
}
