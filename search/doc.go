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

// Package search finds songs whose lyrics are semantically close to a query.
//
// The Searcher asks a vector store for the nearest song documents, loads the
// songs they point at and ranks them by similarity. Songs whose title, artist
// or lyrics contain every non stop-word of the query get a verbatim boost.
package search
