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

package storage

import (
	"github.com/poiesic/lyricmind/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalSong serializes a Song to bytes.
func MarshalSong(song *core.Song) []byte {
	buf := make([]byte, core.SongMUS.Size(*song))
	core.SongMUS.Marshal(*song, buf)
	return buf
}

// UnmarshalSong deserializes a Song from bytes.
func UnmarshalSong(data []byte) (*core.Song, error) {
	song, _, err := core.SongMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &song, nil
}

// MarshalSongEmbedding serializes a SongEmbedding to bytes.
func MarshalSongEmbedding(embedding *core.SongEmbedding) []byte {
	buf := make([]byte, core.SongEmbeddingMUS.Size(*embedding))
	core.SongEmbeddingMUS.Marshal(*embedding, buf)
	return buf
}

// UnmarshalSongEmbedding deserializes a SongEmbedding from bytes.
func UnmarshalSongEmbedding(data []byte) (*core.SongEmbedding, error) {
	embedding, _, err := core.SongEmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &embedding, nil
}
