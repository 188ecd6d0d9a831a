// Package navfixture builds a small navigation database with every table the
// converter requires. It backs local runs (cmd/genmock) and adapter tests.
package navfixture

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	"github.com/couchcryptid/navdata-etl/internal/adapter/sqlite"
)

//go:embed schema.sql
var schemaSQL string

//go:embed data.sql
var dataSQL string

// Identifiers present in the fixture data.
const (
	// ExcludedTerminalID sorts below StartTerminalID and is filtered out of
	// runs that start there.
	ExcludedTerminalID int64 = 9

	// StartTerminalID is the first procedure a typical run converts.
	StartTerminalID int64 = 10

	// ApproachTerminalID is an ILS approach with one FAF and a MAP leg
	// whose runway resolves.
	ApproachTerminalID int64 = 10

	// UnresolvedTerminalID has no runway, so its MAP leg keeps null
	// coordinates. It also exercises the center fix and navaid rules.
	UnresolvedTerminalID int64 = 11

	RunwayID int64 = 1
)

// ProcedureCount is the number of procedures at or above StartTerminalID.
const ProcedureCount = 2

// Create writes a fresh fixture database to path, replacing any existing
// file.
func Create(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing fixture: %w", err)
	}

	db, err := sql.Open("sqlite3", sqlite.DSN(path, "rwc"))
	if err != nil {
		return fmt.Errorf("open fixture database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create fixture schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, dataSQL); err != nil {
		return fmt.Errorf("insert fixture data: %w", err)
	}
	return nil
}
