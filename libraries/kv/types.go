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

// Package kv is the KV adapter (§4.A): it abstracts the underlying sorted
// key/value store behind batched writers, range/batch scanners, tablet
// boundary splitting, table metadata lookup, and combiner-iterator
// attachment. The Indexer and split planner never talk to a storage
// backend except through this package.
package kv

import "fmt"

// Cell is a four-tuple (row, family, qualifier, value) in the backing store.
type Cell struct {
	Row       string
	Family    string
	Qualifier string
	Value     []byte
}

// ColumnUpdate is one (family, qualifier, value) write within a Mutation.
type ColumnUpdate struct {
	Family    string
	Qualifier string
	Value     []byte
}

// Mutation is a set of column updates sharing one row, committed atomically
// at the row level.
type Mutation struct {
	Row     string
	Updates []ColumnUpdate
}

// Authorizations is the set of visibility labels presented for a scan. The
// core threads this through every scan call per the wire contract but never
// interprets it: enforcement against the backend is out of scope (§1).
type Authorizations []string

// Scope is a point at which a server-side iterator may run.
type Scope int

const (
	ScopeScan Scope = iota
	ScopeMinC
	ScopeMajC
)

func (s Scope) String() string {
	switch s {
	case ScopeScan:
		return "scan"
	case ScopeMinC:
		return "minc"
	case ScopeMajC:
		return "majc"
	default:
		return "unknown"
	}
}

// IteratorPriority is the priority band an iterator installs at. The
// summing combiner the metrics table requires runs at MAX so it is the last
// iterator applied in the stack.
type IteratorPriority int

const MaxPriority IteratorPriority = 1 << 30

// IteratorSetting describes a server-side iterator to attach to a table.
type IteratorSetting struct {
	Name     string
	Priority IteratorPriority
	Type     string // e.g. "STRING" for the summing combiner's numeric semantics
	Options  map[string]string
	Scopes   []Scope
	Columns  []string // column families the iterator applies to; nil/empty = all
	// Qualifiers restricts which qualifiers the iterator combines, within
	// the families in Columns. Empty means every qualifier. The metrics
	// table attaches the summing combiner scoped to CARDINALITY_CQ only:
	// first_row/last_row live under different qualifiers specifically so
	// the combiner's string-sum never applies to them (§4.C, §5) — summing
	// non-numeric row-ID bytes would be an Invariant violation.
	Qualifiers []string
}

// SummingCombinerSetting returns the server-side iterator setting the
// metrics table requires (§4.A, §6): a summing combiner configured for
// STRING decimal semantics, priority MAX, attached at all three scopes, for
// every column family (cardinalityQualifier scopes it to the qualifier that
// actually carries summable deltas).
func SummingCombinerSetting(cardinalityQualifier string) IteratorSetting {
	return IteratorSetting{
		Name:       "sum",
		Priority:   MaxPriority,
		Type:       "STRING",
		Options:    map[string]string{"all": "true", "type": "STRING"},
		Scopes:     []Scope{ScopeScan, ScopeMinC, ScopeMajC},
		Qualifiers: []string{cardinalityQualifier},
	}
}

// WriterConfig configures a BatchWriter's internal buffering.
type WriterConfig struct {
	MaxMemoryBytes int64
	MaxLatencyMS   int64
	MaxWriteThreads int
}

// DefaultWriterConfig mirrors commonly used Accumulo BatchWriterConfig
// defaults: a modest memory buffer, a short max latency, and a small number
// of write threads.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		MaxMemoryBytes:  10 * 1024 * 1024,
		MaxLatencyMS:    1000,
		MaxWriteThreads: 2,
	}
}

// DefaultTabletLocation is the sentinel preferred host used when a tablet's
// location cannot be resolved.
const DefaultTabletLocation = "unknown:0"

func (c Cell) String() string {
	return fmt.Sprintf("(%q,%q,%q,%q)", c.Row, c.Family, c.Qualifier, c.Value)
}
