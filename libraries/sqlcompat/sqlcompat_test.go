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

package sqlcompat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sqlkv/accumulo-connector/libraries/index"
	"github.com/sqlkv/accumulo-connector/libraries/kv"
	"github.com/sqlkv/accumulo-connector/libraries/kv/memkv"
	"github.com/sqlkv/accumulo-connector/libraries/planner"
	"github.com/sqlkv/accumulo-connector/libraries/rowcodec"
	"github.com/sqlkv/accumulo-connector/libraries/schema"
)

func widgetsDescriptor() schema.TableDescriptor {
	return schema.TableDescriptor{
		TableName: "widgets",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Type{Kind: schema.Varchar}, RowID: true},
			{Name: "color", Type: schema.Type{Kind: schema.Varchar}, Indexed: true, Family: "color", Qualifier: "v"},
		},
	}
}

func TestIndex_MirrorsTableShape(t *testing.T) {
	desc := widgetsDescriptor()
	idx := NewIndex(desc)
	require.Equal(t, "widgets_idx", idx.ID())
	require.Equal(t, "widgets", idx.Table())
	require.Equal(t, []string{"color"}, idx.ColumnNames())
}

func TestPlan_ReturnsPartitionIterOverTabletSplits(t *testing.T) {
	ctx := context.Background()
	desc := widgetsDescriptor()
	store := memkv.New()
	client := kv.NewClient(store, kv.Credentials{}, nil, nil)
	require.NoError(t, store.AttachIterator(ctx, desc.MetricsTableName(), kv.SummingCombinerSetting(index.CardinalityCQ)))

	idxr, err := index.New(ctx, desc, client, rowcodec.Default{}, nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, idxr.Index(ctx, index.Row{
			RowID:   fmt.Sprintf("row%02d", i),
			Updates: []index.ColumnUpdate{{Family: "color", Qualifier: "v", Value: "red"}},
		}))
	}
	require.NoError(t, idxr.Close(ctx))

	col, ok := desc.ColumnByName("color")
	require.True(t, ok)

	p := planner.New(client, desc, rowcodec.Default{}, nil)
	lookup := Lookup{Constraints: []planner.ColumnConstraint{
		{Column: col, Domain: planner.SingleValueDomain("red")},
	}}

	it, err := Plan(ctx, p, planner.DefaultSession(), lookup)
	require.NoError(t, err)

	var seen []Partition
	for {
		part, err := it.Next(ctx)
		if Done(err) {
			break
		}
		require.NoError(t, err)
		seen = append(seen, part)
	}
	require.NotEmpty(t, seen)

	for _, part := range seen {
		require.NotEmpty(t, part.Key())
		ranges, ok := RangesForPartition(part)
		require.True(t, ok)
		require.NotEmpty(t, ranges)
	}
}

func TestPlan_NoMatches_EmptyIter(t *testing.T) {
	ctx := context.Background()
	desc := widgetsDescriptor()
	store := memkv.New()
	client := kv.NewClient(store, kv.Credentials{}, nil, nil)
	require.NoError(t, store.AttachIterator(ctx, desc.MetricsTableName(), kv.SummingCombinerSetting(index.CardinalityCQ)))

	col, ok := desc.ColumnByName("color")
	require.True(t, ok)

	p := planner.New(client, desc, rowcodec.Default{}, nil)
	lookup := Lookup{Constraints: []planner.ColumnConstraint{
		{Column: col, Domain: planner.SingleValueDomain("nonexistent")},
	}}

	it, err := Plan(ctx, p, planner.DefaultSession(), lookup)
	require.NoError(t, err)

	_, err = it.Next(ctx)
	require.True(t, Done(err))
}
