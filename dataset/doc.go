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


// Package dataset turns tabular song sources into normalized song requests.
//
// A CSV source is read line by line. The header line is mapped with
// MapColumns, which fails the whole load when a required column is missing.
// Every following line is split with ParseLine and converted by Normalize.
// Rows that cannot be converted are recorded as RowError values in the
// Result and skipped; they never abort the load.
//
// Quoting follows a deliberately small dialect: a double quote always toggles
// the quoted state and is dropped, and there is no escaped-quote form.
//
//	gen := dataset.NewGenerator(dataset.WithLogger(logger))
//	result, err := gen.GenerateFromFile(ctx, "songs.csv")
//	if err != nil {
//	    return err // empty source, missing column or I/O
//	}
//	for _, failure := range result.Failures {
//	    log.Printf("line %d skipped: %v", failure.Line, failure.Err)
//	}
package dataset
