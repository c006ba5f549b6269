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


package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/ingestion"
	"github.com/poiesic/lyricmind/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of songs to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of songs)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// SkipFailedBatches keeps going after a batch fails every attempt.
	// Run then reports the skipped songs as ErrSongsSkipped.
	SkipFailedBatches bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder rebuilds the embeddings of every song in a database.
type Reembedder struct {
	songs     storage.SongRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *SongIterator
	logger    *slog.Logger
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(songs storage.SongRepository, documents ingestion.DocumentAdder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		songs:     songs,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(documents, config.MaxRetries, config.RetryDelay),
		iterator:  NewSongIterator(songs, config.BatchSize),
		logger:    slog.Default().With("component", "reembedder"),
	}
}

// Run re-embeds every stored song and returns how many were processed.
func (r *Reembedder) Run(ctx context.Context) (int, error) {
	total, err := r.songs.CountSongs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No songs found in database (0 songs)\n")
		return 0, nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d songs (batch size: %d)\n",
		total, r.iterator.batchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed, skipped := 0, 0
	err = r.iterator.ForEach(ctx, func(songs []*core.Song) error {
		if err := r.processor.Process(ctx, songs); err != nil {
			if !r.config.SkipFailedBatches || ctx.Err() != nil {
				return fmt.Errorf("failed to process batch starting at song %d: %w", songs[0].Id, err)
			}
			r.logger.Warn("skipping batch", "firstSong", songs[0].Id, "size", len(songs), "err", err)
			skipped += len(songs)
			tracker.Skip(len(songs))
			return nil
		}

		processed += len(songs)
		tracker.Increment(len(songs))
		return nil
	})
	if err != nil {
		return processed, err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d songs in %v (%.1f songs/sec)\n",
		processed, elapsed.Round(time.Millisecond), float64(processed)/elapsed.Seconds())

	if skipped > 0 {
		return processed, fmt.Errorf("%w: %d of %d songs", ErrSongsSkipped, skipped, total)
	}
	return processed, nil
}
