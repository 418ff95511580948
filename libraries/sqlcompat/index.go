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

	"github.com/sqlkv/accumulo-connector/libraries/planner"
	"github.com/sqlkv/accumulo-connector/libraries/schema"
)

// Index mirrors the read-only shape of sql.Index: enough for a binder to
// discover which columns this module can plan splits against, without this
// module depending on a SQL engine's expression or index-registration types.
type Index interface {
	// ID identifies this index to a binder, e.g. for EXPLAIN output.
	ID() string
	// Table is the name of the data table this index covers.
	Table() string
	// ColumnNames are the indexed columns this index can plan against, in
	// the order a binder should supply ColumnConstraints.
	ColumnNames() []string
}

type tableIndex struct {
	desc schema.TableDescriptor
}

// NewIndex adapts a TableDescriptor's indexed columns into the Index shape.
// Unlike go-mysql-server's sql.Index, one Index here covers every indexed
// column of the table: T_idx is a single inverted index, not one btree per
// column (§2).
func NewIndex(desc schema.TableDescriptor) Index {
	return tableIndex{desc: desc}
}

func (t tableIndex) ID() string    { return t.desc.TableName + "_idx" }
func (t tableIndex) Table() string { return t.desc.TableName }

func (t tableIndex) ColumnNames() []string {
	cols := t.desc.IndexedColumns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Lookup is the input a binder assembles from its own predicate tree to
// drive one GetTabletSplits call, mirroring how sql.IndexLookup carries a
// pushed-down range set shaped for a specific index.
type Lookup struct {
	// RowIDRanges are ranges pushed down directly against the row ID
	// (§4.D "Row-ID pushdown"), independent of any indexed-column filter.
	RowIDRanges planner.Domain
	// Constraints are the indexed-column equality/range filters a binder
	// extracted from its WHERE clause.
	Constraints []planner.ColumnConstraint
}

// Plan runs the split planner for one Lookup against desc, returning the
// partitions a binder's sql.Table.Partitions would hand back to its
// executor. This is the one place sqlcompat actually calls into the
// planner; everything else in this package is pure adaptation.
func Plan(ctx context.Context, p *planner.Planner, session planner.Session, lookup Lookup) (PartitionIter, error) {
	rowIDDomain := lookup.RowIDRanges
	if rowIDDomain == nil {
		rowIDDomain = planner.UnboundedDomain()
	}
	splits, err := p.GetTabletSplits(ctx, session, rowIDDomain, lookup.Constraints)
	if err != nil {
		return nil, err
	}
	return NewPartitionIter(splits), nil
}
