package jsonfile

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/navdata-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_CreatesProcedureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Primary")

	w, err := NewWriter(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, w.Dir())

	info, err := os.Stat(filepath.Join(dir, ProcedureDir))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadProcedure(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	proc := domain.Procedure{
		TerminalID: 42,
		Legs: []domain.NormalizedLeg{
			domain.Serialize(domain.Leg{ID: 7, TerminalID: 42, Type: domain.Str("IF"), Vnav: domain.Real(3)}),
		},
	}
	require.NoError(t, w.LoadProcedure(context.Background(), proc))

	data, err := os.ReadFile(filepath.Join(w.Dir(), "ProcedureLegs", "TermID_42.json"))
	require.NoError(t, err)

	want := `[{"ID":7,"TerminalID":42,"Type":"IF","Transition":"","TrackCode":null,` +
		`"WptID":null,"WptLat":null,"WptLon":null,"TurnDir":"",` +
		`"NavID":null,"NavLat":null,"NavLon":null,"NavBear":null,"NavDist":null,` +
		`"Course":null,"Distance":null,"Alt":"","Vnav":3.0,` +
		`"CenterID":null,"CenterLat":null,"CenterLon":null,` +
		`"IsFlyOver":null,"SpeedLimit":null,"IsFAF":0,"IsMAP":0}]`
	assert.Equal(t, want, string(data))
}

func TestLoadProcedure_Empty(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, w.LoadProcedure(context.Background(), domain.Procedure{TerminalID: 1}))

	data, err := os.ReadFile(w.ProcedurePath(1))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestLoadProcedure_EncodeErrorWritesNothing(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	proc := domain.Procedure{
		TerminalID: 5,
		Legs:       []domain.NormalizedLeg{{ID: 1, TerminalID: 5, Vnav: domain.Real(math.NaN())}},
	}
	err = w.LoadProcedure(context.Background(), proc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write procedure 5")

	_, statErr := os.Stat(w.ProcedurePath(5))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteTable_NonASCII(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	rows := []map[string]string{{"Name": "ZÜRICH <TWR> & APP"}}
	require.NoError(t, w.WriteTable(context.Background(), "Airports", rows))

	data, err := os.ReadFile(filepath.Join(w.Dir(), "Airports.json"))
	require.NoError(t, err)
	assert.Equal(t, `[{"Name":"ZÜRICH <TWR> & APP"}]`, string(data))
}

func TestProcedureFileName(t *testing.T) {
	assert.Equal(t, "TermID_1001.json", ProcedureFileName(1001))
}
