// Copyright 2024 The Accumulo Connector Authors.
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

// Package index is the Indexer (§4.C): the write path that maintains the
// inverted index T_idx and the per-value/global statistics T_idx_metrics
// for one logical table.
package index

// Sentinel bytes (§6).
const (
	MetricsTableRowID = "___METRICS_TABLE___"
	MetricsRowsCF     = "___rows___"
	CardinalityCQ     = "___card___"
	FirstRowCQ        = "___first_row___"
	LastRowCQ         = "___last_row___"
)
