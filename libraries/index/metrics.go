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

package index

import (
	"context"

	"github.com/sqlkv/accumulo-connector/libraries/kv"
	"github.com/sqlkv/accumulo-connector/libraries/kverrors"
	"github.com/sqlkv/accumulo-connector/libraries/schema"
)

// MinMaxRowIDs reads the current global first_row/last_row sentinel cells
// from a table's metrics table, returning (nil, nil, nil) if it has never
// been written. It is the read half of the Indexer's read-modify-write for
// those two qualifiers (§4.C), and is also the split planner's source for
// the bounds that unbounded range endpoints are clamped to during
// artificial-split bisection (§4.D).
func MinMaxRowIDs(ctx context.Context, client *kv.Client, metricsTable string) (first, last []byte, err error) {
	sc, err := client.Store.Scanner(ctx, metricsTable, client.Auths)
	if err != nil {
		return nil, nil, kverrors.Backend(err, "open scanner for min/max row-ids")
	}
	defer sc.Close()

	sc.SetRange(kv.PointRange([]byte(MetricsTableRowID)))
	sc.FetchColumn(MetricsRowsCF, "")

	for {
		c, ok, nerr := sc.Next(ctx)
		if nerr != nil {
			return nil, nil, kverrors.Backend(nerr, "scan min/max row-ids")
		}
		if !ok {
			break
		}
		switch c.Qualifier {
		case FirstRowCQ:
			first = c.Value
		case LastRowCQ:
			last = c.Value
		}
	}
	return first, last, nil
}

// Cardinality returns the current count of rows carrying value under the
// indexed column famQual, or 0 if never observed (§4.D, cardinality probe).
func Cardinality(ctx context.Context, client *kv.Client, metricsTable, famQual string, value []byte) (int64, error) {
	sc, err := client.Store.Scanner(ctx, metricsTable, client.Auths)
	if err != nil {
		return 0, kverrors.Backend(err, "open scanner for cardinality")
	}
	defer sc.Close()

	sc.SetRange(kv.PointRange(value))
	sc.FetchColumn(famQual, CardinalityCQ)

	c, ok, err := sc.Next(ctx)
	if err != nil {
		return 0, kverrors.Backend(err, "scan cardinality")
	}
	if !ok {
		return 0, nil
	}
	return parseDecimalInt64(c.Value)
}

// RowCount returns the global row count currently recorded in the metrics
// table's sentinel row, or 0 if never written.
func RowCount(ctx context.Context, client *kv.Client, metricsTable string) (int64, error) {
	sc, err := client.Store.Scanner(ctx, metricsTable, client.Auths)
	if err != nil {
		return 0, kverrors.Backend(err, "open scanner for row count")
	}
	defer sc.Close()

	sc.SetRange(kv.PointRange([]byte(MetricsTableRowID)))
	sc.FetchColumn(MetricsRowsCF, CardinalityCQ)

	c, ok, err := sc.Next(ctx)
	if err != nil {
		return 0, kverrors.Backend(err, "scan row count")
	}
	if !ok {
		return 0, nil
	}
	return parseDecimalInt64(c.Value)
}

func parseDecimalInt64(v []byte) (int64, error) {
	if len(v) == 0 {
		return 0, nil
	}
	n, err := parseInt64Strict(string(v))
	if err != nil {
		return 0, kverrors.Invariant(err, "metrics cell is not a decimal integer")
	}
	return n, nil
}

func parseInt64Strict(s string) (int64, error) {
	var neg bool
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, kverrors.Invariant(nil, "empty decimal")
	}
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, kverrors.Invariant(nil, "non-digit in decimal cell")
		}
		n = n*10 + int64(r-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

// LocalityGroups returns the locality-group configuration applied to both
// the index and metrics tables at creation time (§4.C Construction): one
// group per indexed column, named after and containing its f_q family (the
// same family emitIndexCell/flush actually write cells under), so probes
// against a single indexed column don't pull unrelated families off disk.
func LocalityGroups(desc schema.TableDescriptor) map[string][]string {
	groups := make(map[string][]string)
	for _, c := range desc.IndexedColumns() {
		famQual := c.FamilyQualifier()
		groups[famQual] = []string{famQual}
	}
	return groups
}
