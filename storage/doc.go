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

// Package storage provides the storage abstraction layer for lyricmind.
//
// This package defines repository interfaces that decouple the storage
// implementation from ingestion and search. Constructors in backend packages
// return these interfaces:
//
//	songs, embeddings, err := badger.NewRepositories(path)
//
// # Architecture
//
//   - Repository: transaction and lifecycle operations shared by all repositories
//   - SongRepository: persisted, normalized song records
//   - EmbeddingRepository: song embeddings and vector similarity search
//
// Records are encoded with mus-go serializers defined in package core.
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use.
package storage
