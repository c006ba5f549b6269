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

	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/storage"
)

const (
	// DefaultBatchSize is the default number of songs to fetch in each batch
	DefaultBatchSize = 100
)

// SongIterator pages through every stored song in ID order.
type SongIterator struct {
	repo      storage.SongRepository
	batchSize int
}

// NewSongIterator creates a new song iterator.
// batchSize: number of songs to fetch in each batch, DefaultBatchSize if <= 0
func NewSongIterator(repo storage.SongRepository, batchSize int) *SongIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &SongIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn with each batch of songs.
// Iteration stops on the first error from fn or when all songs are processed.
// Context cancellation is checked between batches.
func (it *SongIterator) ForEach(ctx context.Context, fn func([]*core.Song) error) error {
	var after core.ID
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		songs, err := it.repo.ListSongs(ctx, after, it.batchSize)
		if err != nil {
			return err
		}
		if len(songs) == 0 {
			return nil
		}

		if err := fn(songs); err != nil {
			return err
		}

		if len(songs) < it.batchSize {
			return nil
		}
		after = songs[len(songs)-1].Id
	}
}
