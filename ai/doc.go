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


// Package ai provides the embedding abstraction used by lyricmind.
//
// Ingestion, search and re-embedding depend on the Embedder interface rather
// than a concrete client:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: deterministic test double
//
// Public constructors in ai/openai return the interface. The mock
// constructor returns its concrete type so tests can inspect call counts
// and inject behavior.
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vectors, err := embedder.EmbedDocuments(ctx, []string{"Title: Hello\nArtist: Adele\n"})
package ai
