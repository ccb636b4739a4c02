package pipeline

import (
	"bufio"
	"context"
	"energy-pipeline/internal/model"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// FieldDelimiter separates the columns of an input line. Quoting is not
// understood: a quoted field holding a comma shifts every later column.
const FieldDelimiter = ","

// DefaultMaxLineBytes bounds a single input line
const DefaultMaxLineBytes = 4 << 20

const lineBatchSize = 256

// ------------------- Input -------------------

// OpenInput opens the input file, transparently decompressing .gz and
// .zst files.
func OpenInput(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to open gzip input: %w", err)
		}
		return &stackedReadCloser{Reader: zr, closers: []io.Closer{zr, file}}, nil
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to open zstd input: %w", err)
		}
		return &stackedReadCloser{Reader: zr, closers: []io.Closer{zstdCloser{zr}, file}}, nil
	default:
		return file, nil
	}
}

type stackedReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReadCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// zstd.Decoder.Close has no error result
type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}

// ------------------- Row Parser -------------------

// SplitRecord splits a line into its positional fields
func SplitRecord(line string) model.Record {
	return strings.Split(line, FieldDelimiter)
}

// lineReader yields the data lines of one pass. The header flag lives here,
// so every pass starts by dropping its own first line.
type lineReader struct {
	scanner    *bufio.Scanner
	headerSeen bool
}

func newLineReader(r io.Reader, maxLineBytes int) *lineReader {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	// The scanner honors the larger of cap(buf) and max
	initial := 64 * 1024
	if initial > maxLineBytes {
		initial = maxLineBytes
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initial), maxLineBytes)
	return &lineReader{scanner: scanner}
}

// next returns the next data line, false at end of input
func (lr *lineReader) next() (string, bool) {
	for lr.scanner.Scan() {
		if !lr.headerSeen {
			lr.headerSeen = true
			continue
		}
		return lr.scanner.Text(), true
	}
	return "", false
}

func (lr *lineReader) err() error {
	if err := lr.scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

// IngestLines streams the data lines of r to out in batches, skipping the
// header. out is not closed.
func IngestLines(ctx context.Context, r io.Reader, maxLineBytes int, out chan<- []string) error {
	lr := newLineReader(r, maxLineBytes)
	batch := make([]string, 0, lineBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- batch:
		}
		batch = make([]string, 0, lineBatchSize)
		return nil
	}

	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		batch = append(batch, line)
		if len(batch) == lineBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := lr.err(); err != nil {
		return err
	}
	return flush()
}
