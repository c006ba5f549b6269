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


// Package api exposes the ingestion pipeline and song search over HTTP.
//
// Routes:
//
//	POST /api/lyricmind/v1/embeddings/bulk-songs  {"fileName": "songs.csv"}
//	POST /api/lyricmind/v1/embeddings/songs       [SongRequest...]
//	GET  /api/lyricmind/v1/songs/search?q=...&limit=N
//	GET  /health
//
// Errors are returned as {"error": "..."}. Every response carries an
// X-Request-Id header, taken from the request when present.
package api
