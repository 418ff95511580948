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

package memkv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlkv/accumulo-connector/libraries/kv"
)

func TestWriter_PlainOverwriteWithoutCombiner(t *testing.T) {
	s := New()
	ctx := context.Background()
	w, err := s.BatchWriter(ctx, "t", kv.DefaultWriterConfig())
	require.NoError(t, err)

	require.NoError(t, w.Write(kv.Mutation{Row: "r1", Updates: []kv.ColumnUpdate{{Family: "f", Qualifier: "q", Value: []byte("first")}}}))
	require.NoError(t, w.Flush(ctx))
	require.NoError(t, w.Write(kv.Mutation{Row: "r1", Updates: []kv.ColumnUpdate{{Family: "f", Qualifier: "q", Value: []byte("second")}}}))
	require.NoError(t, w.Flush(ctx))

	sc, err := s.Scanner(ctx, "t", nil)
	require.NoError(t, err)
	sc.SetRange(kv.PointRange([]byte("r1")))
	c, ok, err := sc.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), c.Value)
}

func TestWriter_CombinerScopedToQualifier(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.AttachIterator(ctx, "metrics", kv.SummingCombinerSetting("___card___")))

	w, err := s.BatchWriter(ctx, "metrics", kv.DefaultWriterConfig())
	require.NoError(t, err)

	// Cardinality deltas sum.
	require.NoError(t, w.Write(kv.Mutation{Row: "v1", Updates: []kv.ColumnUpdate{{Family: "age_v", Qualifier: "___card___", Value: []byte("1")}}}))
	require.NoError(t, w.Flush(ctx))
	require.NoError(t, w.Write(kv.Mutation{Row: "v1", Updates: []kv.ColumnUpdate{{Family: "age_v", Qualifier: "___card___", Value: []byte("1")}}}))
	require.NoError(t, w.Flush(ctx))

	sc, err := s.Scanner(ctx, "metrics", nil)
	require.NoError(t, err)
	sc.SetRange(kv.PointRange([]byte("v1")))
	sc.FetchColumn("age_v", "___card___")
	c, ok, err := sc.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", string(c.Value))

	// first_row/last_row under a different qualifier must NOT be summed —
	// they are row-ID bytes, not decimal counts.
	w2, err := s.BatchWriter(ctx, "metrics", kv.DefaultWriterConfig())
	require.NoError(t, err)
	require.NoError(t, w2.Write(kv.Mutation{Row: "___METRICS_TABLE___", Updates: []kv.ColumnUpdate{{Family: "___rows___", Qualifier: "___first_row___", Value: []byte("row1")}}}))
	require.NoError(t, w2.Flush(ctx))
	require.NoError(t, w2.Write(kv.Mutation{Row: "___METRICS_TABLE___", Updates: []kv.ColumnUpdate{{Family: "___rows___", Qualifier: "___first_row___", Value: []byte("row0")}}}))
	require.NoError(t, w2.Flush(ctx))

	sc2, err := s.Scanner(ctx, "metrics", nil)
	require.NoError(t, err)
	sc2.SetRange(kv.PointRange([]byte("___METRICS_TABLE___")))
	sc2.FetchColumn("___rows___", "___first_row___")
	c2, ok, err := sc2.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "row0", string(c2.Value), "first_row must be overwritten, never summed")
}

func TestSplitRangeByTablets_NoBoundaries(t *testing.T) {
	s := New()
	ranges, err := s.SplitRangeByTablets(context.Background(), "t", kv.UnboundedRange())
	require.NoError(t, err)
	assert.Len(t, ranges, 1)
}

func TestSplitRangeByTablets_WithBoundaries(t *testing.T) {
	s := New()
	s.SetTabletBoundaries("t", [][]byte{[]byte("m")})
	ranges, err := s.SplitRangeByTablets(context.Background(), "t", kv.UnboundedRange())
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, []byte("m"), ranges[0].End)
	assert.True(t, ranges[0].EndInclusive)
	assert.Equal(t, []byte("m"), ranges[1].Start)
	assert.False(t, ranges[1].StartInclusive)
}

func TestBatchScanner_IteratesAllRanges(t *testing.T) {
	s := New()
	ctx := context.Background()
	w, err := s.BatchWriter(ctx, "t", kv.DefaultWriterConfig())
	require.NoError(t, err)
	for _, row := range []string{"a", "b", "c"} {
		require.NoError(t, w.Write(kv.Mutation{Row: row, Updates: []kv.ColumnUpdate{{Family: "f", Qualifier: "q", Value: []byte(row)}}}))
	}
	require.NoError(t, w.Flush(ctx))

	bs, err := s.BatchScanner(ctx, "t", nil, 4)
	require.NoError(t, err)
	bs.SetRanges([]kv.Range{kv.PointRange([]byte("a")), kv.PointRange([]byte("c"))})
	bs.FetchColumnFamily("f")

	var seen []string
	require.NoError(t, bs.Iterate(ctx, func(c kv.Cell) error {
		seen = append(seen, c.Row)
		return nil
	}))
	assert.ElementsMatch(t, []string{"a", "c"}, seen)
}
