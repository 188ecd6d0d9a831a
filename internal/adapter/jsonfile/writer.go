// Package jsonfile writes procedures and exported tables as compact JSON
// files under an output directory.
package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/navdata-etl/internal/domain"
)

// ProcedureDir is the subdirectory that holds one file per procedure.
const ProcedureDir = "ProcedureLegs"

// Writer writes into a fixed output directory. It implements
// pipeline.ProcedureLoader and export.TableWriter.
type Writer struct {
	dir string
}

// NewWriter creates the output directory tree and returns a Writer for it.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Join(dir, ProcedureDir), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output root.
func (w *Writer) Dir() string { return w.dir }

// ProcedurePath returns the file a procedure is written to.
func (w *Writer) ProcedurePath(terminalID int64) string {
	return filepath.Join(w.dir, ProcedureDir, ProcedureFileName(terminalID))
}

// ProcedureFileName is the base name of a procedure's output file.
func ProcedureFileName(terminalID int64) string {
	return "TermID_" + strconv.FormatInt(terminalID, 10) + ".json"
}

// LoadProcedure writes the procedure's legs as a JSON array, replacing any
// previous file for the same TerminalID.
func (w *Writer) LoadProcedure(_ context.Context, proc domain.Procedure) error {
	legs := proc.Legs
	if legs == nil {
		legs = []domain.NormalizedLeg{}
	}
	if err := writeJSON(w.ProcedurePath(proc.TerminalID), legs); err != nil {
		return fmt.Errorf("write procedure %d: %w", proc.TerminalID, err)
	}
	return nil
}

// WriteTable writes an exported reference table to <name>.json.
func (w *Writer) WriteTable(_ context.Context, name string, rows any) error {
	if err := writeJSON(filepath.Join(w.dir, name+".json"), rows); err != nil {
		return fmt.Errorf("write table %s: %w", name, err)
	}
	return nil
}

// writeJSON encodes before touching the file so an encoding error leaves no
// partial output behind.
func writeJSON(path string, v any) error {
	data, err := domain.EncodeJSON(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
