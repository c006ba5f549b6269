package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/dataset"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// SongSaver persists a batch of songs, assigning IDs and returning the songs
// in the order given. DeleteSongs undoes a save whose embedding failed.
type SongSaver interface {
	SaveSongs(ctx context.Context, songs ...*core.Song) ([]*core.Song, error)
	DeleteSongs(ctx context.Context, ids ...core.ID) error
}

// DocumentAdder embeds and stores a batch of documents.
// vectorstores.VectorStore implementations satisfy it.
type DocumentAdder interface {
	AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error)
}

// BulkRequest names a CSV file relative to the pipeline's data directory.
type BulkRequest struct {
	FileName string `json:"fileName"`
}

// BulkResponse reports the outcome of a bulk load.
type BulkResponse struct {
	Embedded int                `json:"numberOfEmbeddedSongs"`
	Skipped  int                `json:"skippedRows"`
	Failures []dataset.RowError `json:"-"`
}

// Pipeline saves songs and submits their documents for embedding.
type Pipeline struct {
	songs     SongSaver
	documents DocumentAdder
	generator *dataset.Generator
	dataDir   string
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithDataDir sets the directory bulk file names are resolved against.
// Default is the working directory.
func WithDataDir(dir string) Option {
	return func(p *Pipeline) error {
		p.dataDir = dir
		return nil
	}
}

// WithGenerator sets the generator used to read bulk files.
func WithGenerator(g *dataset.Generator) Option {
	return func(p *Pipeline) error {
		p.generator = g
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline over the given song store and vector store.
func NewPipeline(songs SongSaver, documents DocumentAdder, opts ...Option) (*Pipeline, error) {
	if songs == nil {
		return nil, ErrSongSaverRequired
	}
	if documents == nil {
		return nil, ErrDocumentAdderRequired
	}

	p := &Pipeline{
		songs:     songs,
		documents: documents,
		dataDir:   ".",
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if p.generator == nil {
		p.generator = dataset.NewGenerator(dataset.WithLogger(p.logger))
	}
	p.logger = p.logger.With("component", "ingestion")
	return p, nil
}

// EmbedSongs saves every request as a song and embeds the saved songs as one
// batch. It returns the number of documents embedded.
func (p *Pipeline) EmbedSongs(ctx context.Context, requests []core.SongRequest) (int, error) {
	if len(requests) == 0 {
		return 0, fmt.Errorf("%w: song request list cannot be empty", ErrInvalidArgument)
	}

	p.logger.Info("starting bulk embedding", "songs", len(requests))

	songs := make([]*core.Song, len(requests))
	for i, request := range requests {
		songs[i] = newSong(request)
	}

	saved, err := p.songs.SaveSongs(ctx, songs...)
	if err != nil {
		p.logger.Error("failed to save songs", "err", err)
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if len(saved) != len(songs) {
		err := fmt.Errorf("%w: saved %d of %d songs", ErrPersistence, len(saved), len(songs))
		p.logger.Error("failed to save songs", "err", err)
		return 0, errors.Join(err, p.unsave(ctx, saved))
	}

	docs := NewDocuments(saved)
	if _, err := p.documents.AddDocuments(ctx, docs); err != nil {
		p.logger.Error("failed to embed documents", "err", err)
		return 0, errors.Join(fmt.Errorf("%w: %w", ErrEmbeddingBackend, err), p.unsave(ctx, saved))
	}

	p.logger.Info("embedded songs", "count", len(docs))
	return len(docs), nil
}

// unsave deletes songs stored by a batch that did not complete, so a failed
// batch leaves nothing behind. It runs even when ctx is already canceled.
func (p *Pipeline) unsave(ctx context.Context, saved []*core.Song) error {
	ids := make([]core.ID, 0, len(saved))
	for _, song := range saved {
		if song != nil && song.Id != 0 {
			ids = append(ids, song.Id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	if err := p.songs.DeleteSongs(context.WithoutCancel(ctx), ids...); err != nil {
		p.logger.Error("failed to remove songs from failed batch", "songs", len(ids), "err", err)
		return fmt.Errorf("%w: removing saved songs: %w", ErrPersistence, err)
	}
	p.logger.Warn("removed songs from failed batch", "songs", len(ids))
	return nil
}

// EmbedBulk loads the named CSV file from the data directory and embeds its
// songs. A file with no usable rows embeds nothing and is not an error.
func (p *Pipeline) EmbedBulk(ctx context.Context, req BulkRequest) (*BulkResponse, error) {
	path, err := p.resolve(req.FileName)
	if err != nil {
		return nil, err
	}

	logger := p.logger.With("file", path)
	logger.Info("processing bulk song embedding")

	result, err := p.generator.GenerateFromFile(ctx, path)
	if err != nil {
		logger.Error("failed to read csv file", "err", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceRead, req.FileName, err)
	}

	return p.embedResult(ctx, result, logger)
}

// EmbedID3Dir embeds the songs tagged in the .mp3 files under dir.
func (p *Pipeline) EmbedID3Dir(ctx context.Context, dir string) (*BulkResponse, error) {
	logger := p.logger.With("dir", dir)

	result, err := p.generator.ScanID3Dir(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceRead, dir, err)
	}

	return p.embedResult(ctx, result, logger)
}

func (p *Pipeline) embedResult(ctx context.Context, result *dataset.Result, logger *slog.Logger) (*BulkResponse, error) {
	response := &BulkResponse{
		Skipped:  len(result.Failures),
		Failures: result.Failures,
	}

	if len(result.Requests) == 0 {
		logger.Warn("no songs found")
		return response, nil
	}

	embedded, err := p.EmbedSongs(ctx, result.Requests)
	if err != nil {
		return nil, err
	}
	response.Embedded = embedded

	logger.Info("processed songs", "embedded", embedded, "skipped", response.Skipped)
	return response, nil
}

// resolve maps a bulk file name to a path inside the data directory.
func (p *Pipeline) resolve(fileName string) (string, error) {
	name := strings.TrimSpace(fileName)
	if name == "" {
		return "", fmt.Errorf("%w: file name cannot be empty", ErrInvalidArgument)
	}
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: file name %q must be relative to the data directory", ErrInvalidArgument, fileName)
	}
	return filepath.Join(p.dataDir, name), nil
}
