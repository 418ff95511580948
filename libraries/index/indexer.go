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
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sqlkv/accumulo-connector/libraries/kv"
	"github.com/sqlkv/accumulo-connector/libraries/kverrors"
	"github.com/sqlkv/accumulo-connector/libraries/observability"
	"github.com/sqlkv/accumulo-connector/libraries/rowcodec"
	"github.com/sqlkv/accumulo-connector/libraries/schema"
)

// ColumnUpdate is one logical column write within a Row: a scalar value, or
// (for an array-typed column) a native Go slice ([]string / []int64 /
// []float64) whose distinct elements each get an index cell (I1).
type ColumnUpdate struct {
	Family    string
	Qualifier string
	Value     interface{}
}

// Row is one logical mutation: a row-ID plus the column updates it carries.
// All updates in a Row commit atomically at the row level (per-table
// mutation semantics are the KV adapter's concern; Indexer only guarantees
// its own derived writes are queued together).
type Row struct {
	RowID   string
	Updates []ColumnUpdate
}

// Indexer maintains T_idx and T_idx_metrics for one user table. It is
// single-writer, synchronous (§5): index, Flush, and Close must not be
// called concurrently on the same Indexer.
type Indexer struct {
	desc       schema.TableDescriptor
	client     *kv.Client
	serializer rowcodec.Serializer
	log        *logrus.Entry

	indexedCols map[string]schema.Column // keyed by family+"\x00"+qualifier

	dataWriter    kv.Writer
	indexWriter   kv.Writer
	metricsWriter kv.Writer

	// In-memory, per-batch state, reset on every Flush (§9 design note:
	// "model it as a per-Indexer field reset on each flush, not as ambient
	// state").
	batchRows   atomic.Int64 // AtomicLong-equivalent hedge for a future concurrent-ingest variant (§4.C); unused concurrently today.
	mu          sync.Mutex   // guards firstRow/lastRow/cardinality
	haveRow     bool
	firstRow    []byte
	lastRow     []byte
	cardinality map[string]map[string]int64 // famQual -> value bytes (as string) -> delta this batch

	closed  bool
	metrics *observability.Metrics
}

// SetMetrics attaches operational counters/histograms (§ Ambient stack); a
// nil Indexer.metrics (the default) makes every observe call a no-op.
func (idx *Indexer) SetMetrics(m *observability.Metrics) {
	idx.metrics = m
}

// New constructs an Indexer for desc, opening one writer each for the data,
// index, and metrics tables with a shared WriterConfig (§4.C Construction).
func New(ctx context.Context, desc schema.TableDescriptor, client *kv.Client, serializer rowcodec.Serializer, log *logrus.Logger) (*Indexer, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if serializer == nil {
		serializer = rowcodec.Default{}
	}

	indexedCols := make(map[string]schema.Column)
	for _, c := range desc.IndexedColumns() {
		indexedCols[famQualKey(c.Family, c.Qualifier)] = c
	}

	cfg := kv.DefaultWriterConfig()
	dataWriter, err := client.Store.BatchWriter(ctx, desc.DataTableName(), cfg)
	if err != nil {
		return nil, kverrors.Backend(err, "open data writer")
	}
	indexWriter, err := client.Store.BatchWriter(ctx, desc.IndexTableName(), cfg)
	if err != nil {
		return nil, kverrors.Backend(err, "open index writer")
	}
	metricsWriter, err := client.Store.BatchWriter(ctx, desc.MetricsTableName(), cfg)
	if err != nil {
		return nil, kverrors.Backend(err, "open metrics writer")
	}

	return &Indexer{
		desc:          desc,
		client:        client,
		serializer:    serializer,
		log:           log.WithFields(logrus.Fields{"component": "index.Indexer", "table": desc.DataTableName()}),
		indexedCols:   indexedCols,
		dataWriter:    dataWriter,
		indexWriter:   indexWriter,
		metricsWriter: metricsWriter,
		cardinality:   make(map[string]map[string]int64),
	}, nil
}

func famQualKey(family, qualifier string) string { return family + "\x00" + qualifier }

// Index processes one mutation (§4.C steps 1-3).
func (idx *Indexer) Index(ctx context.Context, row Row) error {
	if idx.closed {
		return kverrors.Misconfiguration("index called after close")
	}

	// 1. Write to the data writer unchanged.
	dataUpdates := make([]kv.ColumnUpdate, 0, len(row.Updates))
	for _, u := range row.Updates {
		val, err := encodeDataValue(u.Value)
		if err != nil {
			return kverrors.Misconfiguration(fmt.Sprintf("encode column %s_%s: %v", u.Family, u.Qualifier, err))
		}
		dataUpdates = append(dataUpdates, kv.ColumnUpdate{Family: u.Family, Qualifier: u.Qualifier, Value: val})
	}
	if err := idx.dataWriter.Write(kv.Mutation{Row: row.RowID, Updates: dataUpdates}); err != nil {
		return kverrors.Backend(err, "write data mutation")
	}

	// 2. Per-batch row counter and min/max row-ID.
	idx.batchRows.Add(1)
	idx.mu.Lock()
	rowIDBytes := []byte(row.RowID)
	if !idx.haveRow || bytes.Compare(rowIDBytes, idx.firstRow) < 0 {
		idx.firstRow = rowIDBytes
	}
	if !idx.haveRow || bytes.Compare(rowIDBytes, idx.lastRow) > 0 {
		idx.lastRow = rowIDBytes
	}
	idx.haveRow = true
	idx.mu.Unlock()

	// 3. Derive index cells for indexed columns.
	for _, u := range row.Updates {
		col, ok := idx.indexedCols[famQualKey(u.Family, u.Qualifier)]
		if !ok {
			continue
		}
		if col.Type.IsArray() {
			if err := idx.indexArray(ctx, col, row.RowID, u.Value); err != nil {
				return err
			}
			continue
		}
		if err := idx.indexScalar(ctx, col, row.RowID, u.Value); err != nil {
			return err
		}
	}

	return nil
}

func (idx *Indexer) indexScalar(ctx context.Context, col schema.Column, rowID string, v interface{}) error {
	encoded, err := idx.serializer.Encode(col.Type, v)
	if err != nil {
		return kverrors.Misconfiguration(fmt.Sprintf("encode indexed value for %s: %v", col.FamilyQualifier(), err))
	}
	return idx.emitIndexCell(ctx, col.FamilyQualifier(), rowID, encoded)
}

func (idx *Indexer) indexArray(ctx context.Context, col schema.Column, rowID string, v interface{}) error {
	elems, err := idx.serializer.ArrayElements(*col.Type.Elem, v)
	if err != nil {
		return kverrors.Misconfiguration(fmt.Sprintf("decode array elements for %s: %v", col.FamilyQualifier(), err))
	}
	seen := make(map[string]struct{}, len(elems))
	for _, e := range elems {
		key := string(e)
		if _, dup := seen[key]; dup {
			continue // I1: one index cell per distinct element
		}
		seen[key] = struct{}{}
		if err := idx.emitIndexCell(ctx, col.FamilyQualifier(), rowID, e); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Indexer) emitIndexCell(ctx context.Context, famQual, rowID string, value []byte) error {
	m := kv.Mutation{
		Row:     string(value),
		Updates: []kv.ColumnUpdate{{Family: famQual, Qualifier: rowID, Value: nil}},
	}
	if err := idx.indexWriter.Write(m); err != nil {
		return kverrors.Backend(err, "write index mutation")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	counts, ok := idx.cardinality[famQual]
	if !ok {
		counts = make(map[string]int64)
		idx.cardinality[famQual] = counts
	}
	counts[string(value)]++
	return nil
}

// Flush drains the data and index writers, then builds and flushes the
// metrics mutations, then resets in-memory counters (§4.C flush semantics,
// §5 ordering guarantees: data→index→metrics so a crash mid-flush never
// leaves metrics claiming more than is on disk).
func (idx *Indexer) Flush(ctx context.Context) error {
	start := time.Now()
	rows := idx.batchRows.Load()
	err := idx.flush(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	idx.metrics.ObserveFlush(outcome, rows, time.Since(start).Seconds())
	return err
}

func (idx *Indexer) flush(ctx context.Context) error {
	if err := idx.dataWriter.Flush(ctx); err != nil {
		return kverrors.Backend(err, "flush data writer")
	}
	if err := idx.indexWriter.Flush(ctx); err != nil {
		return kverrors.Backend(err, "flush index writer")
	}

	idx.mu.Lock()
	cardinality := idx.cardinality
	haveRow := idx.haveRow
	firstRow := idx.firstRow
	lastRow := idx.lastRow
	idx.mu.Unlock()

	rows := idx.batchRows.Load()

	for famQual, counts := range cardinality {
		for valBytes, delta := range counts {
			if delta == 0 {
				continue
			}
			err := idx.metricsWriter.Write(kv.Mutation{
				Row: valBytes,
				Updates: []kv.ColumnUpdate{
					{Family: famQual, Qualifier: CardinalityCQ, Value: []byte(strconv.FormatInt(delta, 10))},
				},
			})
			if err != nil {
				return kverrors.Backend(err, "write cardinality metrics mutation")
			}
		}
	}

	if rows > 0 {
		updates := []kv.ColumnUpdate{
			{Family: MetricsRowsCF, Qualifier: CardinalityCQ, Value: []byte(strconv.FormatInt(rows, 10))},
		}
		if haveRow {
			// first_row/last_row must reflect the global extremes, not just
			// this batch's: read the currently stored sentinel and widen it.
			// These qualifiers are excluded from the summing combiner (they
			// live under FirstRowCQ/LastRowCQ, not CardinalityCQ) precisely
			// so this overwrite is safe.
			existingFirst, existingLast, err := idx.currentMinMax(ctx)
			if err != nil {
				return err
			}
			newFirst := firstRow
			if existingFirst != nil && bytes.Compare(existingFirst, newFirst) < 0 {
				newFirst = existingFirst
			}
			newLast := lastRow
			if existingLast != nil && bytes.Compare(existingLast, newLast) > 0 {
				newLast = existingLast
			}
			updates = append(updates,
				kv.ColumnUpdate{Family: MetricsRowsCF, Qualifier: FirstRowCQ, Value: newFirst},
				kv.ColumnUpdate{Family: MetricsRowsCF, Qualifier: LastRowCQ, Value: newLast},
			)
		}
		if err := idx.metricsWriter.Write(kv.Mutation{Row: MetricsTableRowID, Updates: updates}); err != nil {
			return kverrors.Backend(err, "write global row metrics mutation")
		}
	}

	if err := idx.metricsWriter.Flush(ctx); err != nil {
		return kverrors.Backend(err, "flush metrics writer")
	}

	idx.resetBatch()
	idx.log.WithFields(logrus.Fields{"rows": rows}).Debug("flushed indexer batch")
	return nil
}

func (idx *Indexer) resetBatch() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.batchRows.Store(0)
	idx.haveRow = false
	idx.firstRow = nil
	idx.lastRow = nil
	idx.cardinality = make(map[string]map[string]int64)
}

// currentMinMax reads the metrics table's sentinel first_row/last_row, or
// (nil, nil, nil) if the table has never been flushed before.
func (idx *Indexer) currentMinMax(ctx context.Context) (first, last []byte, err error) {
	return MinMaxRowIDs(ctx, idx.client, idx.desc.MetricsTableName())
}

// Close implies a final Flush, then closes all three writers (§4.C close()).
func (idx *Indexer) Close(ctx context.Context) error {
	if idx.closed {
		return nil
	}
	if err := idx.Flush(ctx); err != nil {
		return err
	}
	idx.closed = true
	var firstErr error
	for _, w := range []kv.Writer{idx.dataWriter, idx.indexWriter, idx.metricsWriter} {
		if err := w.Close(ctx); err != nil && firstErr == nil {
			firstErr = kverrors.Backend(err, "close writer")
		}
	}
	return firstErr
}

func encodeDataValue(v interface{}) ([]byte, error) {
	switch vv := v.(type) {
	case []byte:
		return vv, nil
	case string:
		return []byte(vv), nil
	default:
		return []byte(fmt.Sprintf("%v", vv)), nil
	}
}
