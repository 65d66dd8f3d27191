package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/accident-analysis/internal/domain"
)

// ErrInputNotFound is returned by Open when the input path does not exist.
var ErrInputNotFound = errors.New("input file not found")

// MissingColumnsError lists required columns absent from the CSV header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// Reader streams fixed-size chunks of projected records from a CSV file.
// It implements pipeline.ChunkExtractor.
type Reader struct {
	file      io.Closer
	csv       *csv.Reader
	index     [domain.ColumnCount]int // header position of each projected column
	chunkSize int
	logger    *slog.Logger

	nextChunk int
	rowsRead  int64
	done      bool
}

// Open checks that path exists, reads its header and resolves the projected
// columns.
func Open(path string, chunkSize int, logger *slog.Logger) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	r, err := NewReader(f, chunkSize, logger)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// NewReader wraps an already open stream. The header row is consumed
// immediately.
func NewReader(src io.Reader, chunkSize int, logger *slog.Logger) (*Reader, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read header: empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	return &Reader{
		csv:       cr,
		index:     index,
		chunkSize: chunkSize,
		logger:    logger,
	}, nil
}

func resolveColumns(header []string) ([domain.ColumnCount]int, error) {
	var index [domain.ColumnCount]int
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	for c := domain.Column(0); c < domain.ColumnCount; c++ {
		i, ok := pos[c.String()]
		if !ok {
			missing = append(missing, c.String())
			continue
		}
		index[c] = i
	}
	if len(missing) > 0 {
		return index, &MissingColumnsError{Columns: missing}
	}
	return index, nil
}

// ExtractChunk reads up to chunkSize records. It returns io.EOF once the
// file is exhausted. Malformed CSV rows are reported on the chunk through
// ReadErr rather than as a returned error.
func (r *Reader) ExtractChunk(ctx context.Context) (domain.RawChunk, error) {
	if r.done {
		return domain.RawChunk{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return domain.RawChunk{}, err
	}

	chunk := domain.RawChunk{
		Index:    r.nextChunk,
		FirstRow: r.rowsRead,
		Records:  make([]domain.RawRecord, 0, min(r.chunkSize, 4096)),
	}

	for len(chunk.Records) < r.chunkSize {
		row, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			// The reader resynchronises on the next line.
			r.logger.Debug("malformed csv row", "chunk", r.nextChunk+1, "row", r.rowsRead+1, "error", err)
			if chunk.ReadErr == nil {
				chunk.ReadErr = fmt.Errorf("row %d: %w", r.rowsRead+1, err)
			}
			r.rowsRead++
			chunk.Records = append(chunk.Records, domain.RawRecord{})
			continue
		}
		if err != nil {
			return domain.RawChunk{}, fmt.Errorf("read chunk %d: %w", r.nextChunk+1, err)
		}

		chunk.Records = append(chunk.Records, r.project(row))
		r.rowsRead++
	}

	if len(chunk.Records) == 0 {
		return domain.RawChunk{}, io.EOF
	}
	r.nextChunk++
	return chunk, nil
}

func (r *Reader) project(row []string) domain.RawRecord {
	var rec domain.RawRecord
	for c, i := range r.index {
		if i < len(row) {
			rec[c] = row[i]
		}
	}
	return rec
}

// RowsRead reports how many data rows have been consumed so far.
func (r *Reader) RowsRead() int64 {
	return r.rowsRead
}

// Close releases the underlying file, if Open created one.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
