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

package kv

import "context"

// Writer is a batched mutation sink. Write buffers; Flush blocks until all
// buffered mutations are durable; Close implies a final Flush.
type Writer interface {
	Write(m Mutation) error
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

// Scanner iterates cells of a single range in sorted order.
type Scanner interface {
	// SetRange constrains iteration to r. Must be called before Next.
	SetRange(r Range)
	// FetchColumn restricts returned cells to the given family (qualifier
	// empty means "any qualifier under this family").
	FetchColumn(family, qualifier string)
	// Next returns the next cell, or ok=false at end of range.
	Next(ctx context.Context) (cell Cell, ok bool, err error)
	Close()
}

// BatchScanner iterates cells over a set of ranges in parallel, using up to
// numThreads worker goroutines. Results across ranges may interleave; within
// one range cells are delivered in sorted order.
type BatchScanner interface {
	SetRanges(ranges []Range)
	FetchColumnFamily(family string)
	// Iterate calls fn once per cell. If fn returns an error, iteration
	// stops and that error is returned (wrapped in a Backend error if it
	// originated from the backend rather than fn itself).
	Iterate(ctx context.Context, fn func(Cell) error) error
	Close()
}

// Store is the backend the KV adapter talks to: a client to the sorted,
// distributed key/value store. One Store is shared per process (§5); the
// Indexer and planner reference it weakly.
type Store interface {
	// BatchWriter opens a buffered writer for table.
	BatchWriter(ctx context.Context, table string, cfg WriterConfig) (Writer, error)
	// Scanner opens a point/range iterator for table.
	Scanner(ctx context.Context, table string, auths Authorizations) (Scanner, error)
	// BatchScanner opens a parallel scanner over a set of ranges for table.
	BatchScanner(ctx context.Context, table string, auths Authorizations, numThreads int) (BatchScanner, error)
	// SplitRangeByTablets returns the sub-ranges of r induced by tablet
	// boundaries of table.
	SplitRangeByTablets(ctx context.Context, table string, r Range) ([]Range, error)
	// AttachIterator installs a server-side iterator on table at the scopes
	// the setting names.
	AttachIterator(ctx context.Context, table string, setting IteratorSetting) error
	// TabletLocations returns the host:port serving the tablet whose range
	// contains key, derived from the backend's catalog table: the least
	// tablet end-key >= key. A nil key returns the default (last) tablet's
	// location.
	TabletLocations(ctx context.Context, table string, key []byte) (string, error)
	// CreateLocalityGroups applies a locality-group configuration to table:
	// one group per name, each pinned to the column families listed.
	CreateLocalityGroups(ctx context.Context, table string, groups map[string][]string) error
	// CreateTable creates table if it does not already exist. Idempotent.
	CreateTable(ctx context.Context, table string) error
	// DropTable drops table. dropStorage additionally removes underlying
	// files rather than just the catalog entry.
	DropTable(ctx context.Context, table string, dropStorage bool) error
}
