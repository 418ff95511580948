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

// Package sqlcompat mirrors the shape of a SQL engine's table/partition
// collaborator (as go-mysql-server's sql.Table/sql.PartitionIter do) so a
// real binder can adapt this module's planner output into its own
// partitioned-scan model with a thin shim, without this module importing a
// SQL engine itself (query execution is out of scope; see Non-goals).
package sqlcompat

import (
	"context"

	"github.com/sqlkv/accumulo-connector/libraries/kv"
	"github.com/sqlkv/accumulo-connector/libraries/planner"
)

// Partition is one unit of parallel scan work handed to a SQL engine's
// executor, the way sql.Partition identifies one shard of a table scan.
type Partition interface {
	// Key uniquely identifies this partition within its table scan.
	Key() []byte
}

// PartitionIter enumerates the partitions of one scan, the way
// sql.PartitionIter does for a table's Partitions call.
type PartitionIter interface {
	Next(ctx context.Context) (Partition, error)
	Close(ctx context.Context) error
}

// splitPartition adapts one planner.TabletSplitMetadata to Partition.
type splitPartition struct {
	split planner.TabletSplitMetadata
}

func (p splitPartition) Key() []byte { return []byte(p.split.SplitID) }

// Split returns the TabletSplitMetadata this partition was built from, so a
// binder's PartitionRows implementation can recover the preferred host and
// scan ranges to drive its own BatchScanner.
func (p splitPartition) Split() planner.TabletSplitMetadata { return p.split }

// AsPartition adapts one TabletSplitMetadata value to Partition.
func AsPartition(split planner.TabletSplitMetadata) Partition {
	return splitPartition{split: split}
}

// splitPartitionIter walks a []TabletSplitMetadata as a PartitionIter.
type splitPartitionIter struct {
	splits []planner.TabletSplitMetadata
	pos    int
}

// NewPartitionIter adapts the output of Planner.GetTabletSplits into a
// PartitionIter, the shape a binder's sql.Table.Partitions would return.
func NewPartitionIter(splits []planner.TabletSplitMetadata) PartitionIter {
	return &splitPartitionIter{splits: splits}
}

var errPartitionIterDone = errPartitionsExhausted{}

type errPartitionsExhausted struct{}

func (errPartitionsExhausted) Error() string { return "sqlcompat: no more partitions" }

// Done reports whether err is the iterator-exhausted sentinel
// (go-mysql-server's io.EOF convention, restated here so sqlcompat has no
// dependency on a SQL engine's own sentinel values).
func Done(err error) bool {
	_, ok := err.(errPartitionsExhausted)
	return ok
}

func (it *splitPartitionIter) Next(ctx context.Context) (Partition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if it.pos >= len(it.splits) {
		return nil, errPartitionIterDone
	}
	s := it.splits[it.pos]
	it.pos++
	return splitPartition{split: s}, nil
}

func (it *splitPartitionIter) Close(ctx context.Context) error { return nil }

// RangesForPartition extracts the kv.Range scan ranges carried by a
// Partition produced by this package, for a binder's PartitionRows to hand
// to its own BatchScanner.
func RangesForPartition(p Partition) ([]kv.Range, bool) {
	sp, ok := p.(splitPartition)
	if !ok {
		return nil, false
	}
	return sp.split.Ranges, true
}
