// Package archive packs the output directory into a zip file and removes
// the directory afterwards.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/klauspost/compress/zip"
)

// Result describes a finished archive.
type Result struct {
	Path  string
	Files int
	Bytes int64
}

// Packager zips output directories. Entry timestamps come from the clock so
// archives built from identical output are identical.
type Packager struct {
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewPackager creates a Packager.
func NewPackager(clock clockwork.Clock, logger *slog.Logger) *Packager {
	return &Packager{clock: clock, logger: logger}
}

// Package writes every regular file under srcDir into archivePath, with
// names relative to srcDir. srcDir is removed afterwards unless keep is set.
// A failed run removes the partial archive and leaves srcDir in place.
func (p *Packager) Package(ctx context.Context, srcDir, archivePath string, keep bool) (Result, error) {
	absSrc, err := filepath.Abs(srcDir)
	if err != nil {
		return Result{}, fmt.Errorf("resolve output directory: %w", err)
	}
	absArchive, err := filepath.Abs(archivePath)
	if err != nil {
		return Result{}, fmt.Errorf("resolve archive path: %w", err)
	}
	if strings.HasPrefix(absArchive, absSrc+string(filepath.Separator)) {
		return Result{}, fmt.Errorf("archive %s must not be inside %s", archivePath, srcDir)
	}

	res, err := p.write(ctx, srcDir, archivePath)
	if err != nil {
		os.Remove(archivePath)
		return Result{}, err
	}

	p.logger.Info("archive written", "path", res.Path, "files", res.Files, "bytes", res.Bytes)

	if !keep {
		if err := os.RemoveAll(srcDir); err != nil {
			return res, fmt.Errorf("remove output directory: %w", err)
		}
		p.logger.Debug("output directory removed", "dir", srcDir)
	}
	return res, nil
}

func (p *Packager) write(ctx context.Context, srcDir, archivePath string) (Result, error) {
	f, err := os.Create(archivePath)
	if err != nil {
		return Result{}, fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	modified := p.clock.Now()
	res := Result{Path: archivePath}

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		n, err := addFile(zw, path, filepath.ToSlash(rel), modified)
		if err != nil {
			return err
		}
		res.Files++
		res.Bytes += n
		return nil
	})
	if walkErr != nil {
		return Result{}, fmt.Errorf("archive %s: %w", srcDir, walkErr)
	}

	if err := zw.Close(); err != nil {
		return Result{}, fmt.Errorf("finish archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("close archive: %w", err)
	}
	return res, nil
}

func addFile(zw *zip.Writer, path, name string, modified time.Time) (int64, error) {
	src, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return 0, err
	}
	return io.Copy(w, src)
}
