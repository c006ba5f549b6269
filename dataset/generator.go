package dataset

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/lyricmind/core"
)

const utf8BOM = "\uFEFF"

// Result is the outcome of a load. Requests keep source order.
type Result struct {
	Requests []core.SongRequest
	// Failures are rows that were skipped.
	Failures []RowError
	// Warnings are rows that were kept with a defaulted value.
	Warnings []RowError
}

// Generator reads song sources into normalized requests.
// A Generator holds no per-load state and is safe for concurrent use.
type Generator struct {
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "dataset-generator")
	return g
}

// GenerateFromFile loads the CSV file at path.
func (g *Generator) GenerateFromFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return g.generate(ctx, f, path)
}

// Generate loads CSV data from r.
//
// It fails with ErrEmptySource when r has no lines and with a
// *MissingColumnError when the header lacks a required column; in both
// cases no rows are read. Rows that cannot be normalized are skipped and
// reported in Result.Failures.
func (g *Generator) Generate(ctx context.Context, r io.Reader) (*Result, error) {
	return g.generate(ctx, r, "")
}

func (g *Generator) generate(ctx context.Context, r io.Reader, source string) (*Result, error) {
	logger := g.logger
	if source != "" {
		logger = logger.With("source", source)
	}

	reader := bufio.NewReader(r)

	header, ok, err := readLine(reader)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEmptySource
	}

	columns, err := MapColumns(ParseLine(strings.TrimPrefix(header, utf8BOM)))
	if err != nil {
		return nil, err
	}

	result := &Result{}
	lineNumber := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, ok, err := readLine(reader)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		lineNumber++

		n, err := normalize(RawRow{Line: lineNumber, Fields: ParseLine(line)}, columns)
		if err != nil {
			logger.Error("skipping row", "line", lineNumber, "err", err)
			result.Failures = append(result.Failures, RowError{Line: lineNumber, Source: source, Err: err})
			continue
		}
		if n.yearWarning != nil {
			logger.Warn("using default release year", "line", lineNumber, "err", n.yearWarning)
			result.Warnings = append(result.Warnings, RowError{Line: lineNumber, Source: source, Err: n.yearWarning})
		}
		result.Requests = append(result.Requests, n.request)
	}

	logger.Info("dataset loaded",
		"rows", lineNumber-1,
		"requests", len(result.Requests),
		"failures", len(result.Failures),
		"warnings", len(result.Warnings))

	return result, nil
}

// readLine returns the next line without its terminator. ok is false once
// the reader is exhausted. Lines of any length are supported.
func readLine(reader *bufio.Reader) (line string, ok bool, err error) {
	line, err = reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if err != nil && line == "" {
		return "", false, nil
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}
