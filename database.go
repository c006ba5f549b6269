// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package lyricmind ties song storage, embedding and search together behind
// a single Database handle.
package lyricmind

import (
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/lyricmind/ai"
	"github.com/poiesic/lyricmind/ai/openai"
	"github.com/poiesic/lyricmind/ingestion"
	"github.com/poiesic/lyricmind/reembed"
	"github.com/poiesic/lyricmind/search"
	"github.com/poiesic/lyricmind/storage"
	"github.com/poiesic/lyricmind/storage/badger"
	"github.com/poiesic/lyricmind/vectorstore"
)

type Database struct {
	backend       *badger.Backend
	songRepo      storage.SongRepository
	embeddingRepo storage.EmbeddingRepository
	store         *vectorstore.Store
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig     *ai.Config
	embedder     ai.Embedder
	storeOptions []vectorstore.Option
	inMemory     bool
	logger       *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithEmbedder uses embedder instead of an OpenAI-compatible client built
// from the AI config.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithVectorStoreOptions passes options through to the vector store.
func WithVectorStoreOptions(opts ...vectorstore.Option) DatabaseOption {
	return func(o *databaseOptions) {
		o.storeOptions = append(o.storeOptions, opts...)
	}
}

// InMemory keeps all data in memory; the file path is ignored.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	embedder := options.embedder
	if embedder == nil {
		var err error
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	songRepo, err := badger.NewSongRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embeddingRepo, err := badger.NewEmbeddingRepository(backend)
	if err != nil {
		songRepo.Close()
		backend.Close()
		return nil, err
	}

	storeOptions := append([]vectorstore.Option{vectorstore.WithLogger(options.logger)}, options.storeOptions...)
	store, err := vectorstore.New(embedder, embeddingRepo, storeOptions...)
	if err != nil {
		embeddingRepo.Close()
		songRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:       backend,
		songRepo:      songRepo,
		embeddingRepo: embeddingRepo,
		store:         store,
		logger:        options.logger,
	}, nil
}

// Close releases the vector store's workers and closes the repositories
// and the backend. It returns every error encountered.
func (db *Database) Close() error {
	db.store.Release()

	var errs []error
	if err := db.embeddingRepo.Close(); err != nil {
		db.logger.Error("error closing embedding repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.songRepo.Close(); err != nil {
		db.logger.Error("error closing song repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (db *Database) SongRepository() storage.SongRepository {
	return db.songRepo
}

func (db *Database) EmbeddingRepository() storage.EmbeddingRepository {
	return db.embeddingRepo
}

// VectorStore returns the langchaingo-compatible store over the song embeddings.
func (db *Database) VectorStore() *vectorstore.Store {
	return db.store
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewPipeline(db.songRepo, db.store, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	opts = append([]search.Option{search.WithLogger(db.logger)}, opts...)
	return search.NewSearcher(db.store, db.songRepo, opts...)
}

// NewReembedder returns a reembedder over every stored song. A nil config
// uses reembed.DefaultConfig().
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.songRepo, db.store, config, progress)
}
