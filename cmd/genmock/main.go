// Command genmock writes a small navigation database containing every table
// the converter requires, for local runs and manual testing. It can also
// run the normalizer over the new database and print what each procedure
// turns into.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/navdata.db3 -preview
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/navdata-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/navdata-etl/internal/domain"
	"github.com/couchcryptid/navdata-etl/internal/navfixture"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the fixture database (.db3)")
	preview := flag.Bool("preview", false, "print the normalized procedures after writing")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if filepath.Ext(*out) != ".db3" {
		return fmt.Errorf("output %q must have a .db3 extension", *out)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ctx := context.Background()
	if err := navfixture.Create(ctx, *out); err != nil {
		return err
	}
	log.Printf("wrote fixture database: %s", *out)

	src, err := sqlite.Open(ctx, *out, slog.Default())
	if err != nil {
		return err
	}
	defer src.Close()

	if err := src.CheckSchema(ctx); err != nil {
		return fmt.Errorf("fixture failed schema check: %w", err)
	}

	if *preview {
		return printPreview(ctx, src)
	}
	return nil
}

func printPreview(ctx context.Context, src *sqlite.Source) error {
	refs, err := src.LoadReferences(ctx)
	if err != nil {
		return err
	}
	ext, err := src.LegExtensions(ctx)
	if err != nil {
		return err
	}
	legs, err := src.Legs(ctx, 0)
	if err != nil {
		return err
	}

	n := domain.NewNormalizer(refs, ext)
	for _, proc := range domain.GroupProcedures(legs) {
		res := n.Normalize(proc.TerminalID, proc.Legs)
		data, err := domain.EncodeJSON(res.Procedure.Legs)
		if err != nil {
			return err
		}
		fmt.Printf("TerminalID %d: %d legs, %d FAF, %d MAP\n", proc.TerminalID, len(proc.Legs), res.FAFs, res.MAPs)
		printBackfills(res.Backfills)
		fmt.Printf("  %s\n", data)
	}
	return nil
}

func printBackfills(counts map[domain.BackfillRule]domain.BackfillCount) {
	rules := make([]domain.BackfillRule, 0, len(counts))
	for r := range counts {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i] < rules[j] })
	for _, r := range rules {
		c := counts[r]
		fmt.Printf("  backfill %-24s resolved=%d unresolved=%d\n", r, c.Resolved, c.Unresolved)
	}
}
