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


package core

import "fmt"

// ValidateSong validates a Song according to domain rules.
//
// NOT validated:
//   - Text fields (empty strings are legitimate sanitized values)
//   - ID (0 until the repository assigns one)
//   - ReleaseYear (sources carry any integer, including 0 and negatives)
func ValidateSong(song *Song) error {
	if song == nil {
		return fmt.Errorf("%w: song is nil", ErrInvalidSong)
	}
	return nil
}

// ValidateSongEmbedding validates a SongEmbedding according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Vector must not be empty
func ValidateSongEmbedding(embedding *SongEmbedding) error {
	if embedding == nil {
		return fmt.Errorf("%w: embedding is nil", ErrInvalidSongEmbedding)
	}
	if embedding.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSongEmbedding, ErrEmptyContent)
	}
	if len(embedding.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSongEmbedding, ErrEmptyVector)
	}
	return nil
}
