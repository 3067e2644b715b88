// Package checkpoint persists materialized domain tables as parquet files
// and reads them back during crash recovery. Each domain has exactly one
// "latest" file; every successful pipeline run overwrites it.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"

	"fusionhub/internal/columnar"
)

// ErrNotFound is returned by Load when no checkpoint exists for a domain.
var ErrNotFound = errors.New("checkpoint not found")

const chunkSize = 64 * 1024

// Store writes and reads per-domain parquet checkpoints under one directory.
// Two stores must not share a directory; the caller namespaces per hub.
type Store struct {
	dir    string
	alloc  memory.Allocator
	logger *slog.Logger
}

// NewStore creates the checkpoint directory if needed and returns a store.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	return &Store{dir: dir, alloc: memory.NewGoAllocator(), logger: logger}, nil
}

// Path returns the checkpoint file path for a domain.
func (s *Store) Path(domain string) string {
	return filepath.Join(s.dir, domain+"_latest.parquet")
}

// Save overwrites the domain's checkpoint with the given frame. The write
// goes to a temp file first and is renamed into place, so a crash mid-write
// never clobbers the previous good checkpoint.
func (s *Store) Save(ctx context.Context, domain string, frame *columnar.Frame) error {
	rec := columnar.ToRecord(frame, s.alloc)
	defer rec.Release()

	tbl := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
	defer tbl.Release()

	tmp, err := os.CreateTemp(s.dir, domain+"_*.parquet.tmp")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpPath := tmp.Name()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithAllocator(s.alloc),
	)
	// WriteTable closes the sink itself; the explicit Close only matters
	// when the writer bailed out before getting there.
	writeErr := pqarrow.WriteTable(tbl, tmp, chunkSize, props, pqarrow.DefaultWriterProps())
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write checkpoint for %s: %w", domain, writeErr)
	}
	if closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		os.Remove(tmpPath)
		return fmt.Errorf("close checkpoint for %s: %w", domain, closeErr)
	}

	if err := os.Rename(tmpPath, s.Path(domain)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publish checkpoint for %s: %w", domain, err)
	}

	s.logger.InfoContext(ctx, "checkpoint saved",
		"domain", domain,
		"rows", frame.NumRows(),
		"columns", frame.NumCols(),
		"path", s.Path(domain),
	)
	return nil
}

// Load reads the domain's last checkpoint back into a frame, or ErrNotFound
// when no checkpoint has ever been written.
func (s *Store) Load(ctx context.Context, domain string) (*columnar.Frame, error) {
	path := s.Path(domain)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, domain)
		}
		return nil, fmt.Errorf("open checkpoint for %s: %w", domain, err)
	}
	defer f.Close()

	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(s.alloc), pqarrow.ArrowReadProperties{}, s.alloc)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint for %s: %w", domain, err)
	}
	defer tbl.Release()

	frame, err := columnar.FromTable(tbl)
	if err != nil {
		return nil, fmt.Errorf("decode checkpoint for %s: %w", domain, err)
	}

	s.logger.InfoContext(ctx, "checkpoint restored",
		"domain", domain,
		"rows", frame.NumRows(),
		"path", path,
	)
	return frame, nil
}
