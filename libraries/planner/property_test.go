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

package planner

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sqlkv/accumulo-connector/libraries/kv"
	"github.com/sqlkv/accumulo-connector/libraries/rowcodec"
)

// TestProperty_SplitsPartitionMatchingRows checks that a plan's returned
// splits cover exactly the set of row-IDs matching the constraint, and that
// no row-ID is claimed by more than one split's ranges — a plan is a
// partition of the matching rows, not just a superset or an overlapping
// cover.
func TestProperty_SplitsPartitionMatchingRows(t *testing.T) {
	cities := []string{"austin", "boston", "chicago"}
	client, desc := newPlannerFixture(t, cities, 60)
	p := New(client, desc, rowcodec.Default{}, nil)

	session := DefaultSession()
	session.RangesPerSplit = 1

	splits, err := p.GetTabletSplits(context.Background(), session, UnboundedDomain(),
		[]ColumnConstraint{cityConstraint(desc, "austin")})
	require.NoError(t, err)
	require.NotEmpty(t, splits)

	wantRows := make(map[string]struct{})
	for i := 0; i < 60; i++ {
		if cities[i%len(cities)] == "austin" {
			wantRows[fmt.Sprintf("row%04d", i)] = struct{}{}
		}
	}

	seenBy := make(map[string]int)
	for _, s := range splits {
		for row := range wantRows {
			if kv.InAnyRange([]byte(row), s.Ranges) {
				seenBy[row]++
			}
		}
	}

	require.Len(t, seenBy, len(wantRows), "every matching row must appear in at least one split")
	for row, n := range seenBy {
		require.Equalf(t, 1, n, "row %s claimed by %d splits, want exactly 1", row, n)
	}
}

// TestProperty_SplitsNeverClaimNonMatchingRows checks the converse: a row
// that does not satisfy the constraint must not fall inside any returned
// split's ranges, once the plan has narrowed past the index-ratio gate to
// point ranges (a loose pushdown-range fallback is allowed to be a
// superset, but the point-range path must be exact).
func TestProperty_SplitsNeverClaimNonMatchingRows(t *testing.T) {
	cities := []string{"austin", "boston", "chicago"}
	client, desc := newPlannerFixture(t, cities, 60)
	p := New(client, desc, rowcodec.Default{}, nil)

	session := DefaultSession()
	session.RangesPerSplit = 1

	splits, err := p.GetTabletSplits(context.Background(), session, UnboundedDomain(),
		[]ColumnConstraint{cityConstraint(desc, "austin")})
	require.NoError(t, err)
	require.NotEmpty(t, splits)

	for i := 0; i < 60; i++ {
		if cities[i%len(cities)] == "austin" {
			continue
		}
		row := fmt.Sprintf("row%04d", i)
		for _, s := range splits {
			require.Falsef(t, kv.InAnyRange([]byte(row), s.Ranges), "non-matching row %s unexpectedly claimed by split %s", row, s.SplitID)
		}
	}
}
