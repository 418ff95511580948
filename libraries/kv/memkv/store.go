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

// Package memkv is an in-memory kv.Store used by every Indexer/planner test
// in this module, the way the teacher's own storage-engine packages are
// tested against in-process fixtures rather than a live backend. It
// faithfully simulates the one server-side behavior the spec depends on:
// the metrics table's summing combiner (§4.A, §6), so tests can exercise I2
// without a real Accumulo cluster.
package memkv

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sqlkv/accumulo-connector/libraries/kv"
	"github.com/sqlkv/accumulo-connector/libraries/kverrors"
)

// Store is an in-memory, sorted implementation of kv.Store.
type Store struct {
	mu sync.Mutex

	tables    map[string]*table
	boundaries map[string][][]byte // sorted tablet end-keys, exclusive of the final (unbounded) tablet
	locality  map[string]map[string][]string
	combined  map[string]map[string]bool // table -> qualifier -> summing combiner applies
}

type table struct {
	cells []kv.Cell // sorted by (Row, Family, Qualifier)
}

func New() *Store {
	return &Store{
		tables:    make(map[string]*table),
		boundaries: make(map[string][][]byte),
		locality:  make(map[string]map[string][]string),
		combined:  make(map[string]map[string]bool),
	}
}

func cellLess(a, b kv.Cell) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	if a.Family != b.Family {
		return a.Family < b.Family
	}
	return a.Qualifier < b.Qualifier
}

func (s *Store) table(name string) *table {
	t, ok := s.tables[name]
	if !ok {
		t = &table{}
		s.tables[name] = t
	}
	return t
}

func (t *table) find(row, family, qualifier string) (int, bool) {
	target := kv.Cell{Row: row, Family: family, Qualifier: qualifier}
	i := sort.Search(len(t.cells), func(i int) bool { return !cellLess(t.cells[i], target) })
	if i < len(t.cells) && t.cells[i].Row == row && t.cells[i].Family == family && t.cells[i].Qualifier == qualifier {
		return i, true
	}
	return i, false
}

func (s *Store) isCombined(tableName, qualifier string) bool {
	quals, ok := s.combined[tableName]
	if !ok {
		return false
	}
	return quals[qualifier] || quals[""]
}

func (s *Store) applyCell(tableName string, c kv.Cell) error {
	t := s.table(tableName)
	i, found := t.find(c.Row, c.Family, c.Qualifier)
	if found && s.isCombined(tableName, c.Qualifier) {
		sum, err := sumDecimalASCII(t.cells[i].Value, c.Value)
		if err != nil {
			return kverrors.Invariant(err, "summing combiner: non-decimal value")
		}
		t.cells[i].Value = sum
		return nil
	}
	if found {
		t.cells[i].Value = c.Value
		return nil
	}
	t.cells = append(t.cells, kv.Cell{})
	copy(t.cells[i+1:], t.cells[i:])
	t.cells[i] = c
	return nil
}

func sumDecimalASCII(a, b []byte) ([]byte, error) {
	da, err := decimal.NewFromString(string(a))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q", a)
	}
	db, err := decimal.NewFromString(string(b))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q", b)
	}
	return []byte(da.Add(db).String()), nil
}

// --- kv.Store ---

func (s *Store) BatchWriter(ctx context.Context, tableName string, cfg kv.WriterConfig) (kv.Writer, error) {
	return &writer{store: s, table: tableName}, nil
}

func (s *Store) Scanner(ctx context.Context, tableName string, auths kv.Authorizations) (kv.Scanner, error) {
	return &scanner{store: s, table: tableName}, nil
}

func (s *Store) BatchScanner(ctx context.Context, tableName string, auths kv.Authorizations, numThreads int) (kv.BatchScanner, error) {
	if numThreads <= 0 {
		numThreads = 1
	}
	return &batchScanner{store: s, table: tableName, numThreads: numThreads}, nil
}

func (s *Store) SplitRangeByTablets(ctx context.Context, tableName string, r kv.Range) ([]kv.Range, error) {
	s.mu.Lock()
	bounds := append([][]byte(nil), s.boundaries[tableName]...)
	s.mu.Unlock()

	var inRange [][]byte
	for _, b := range bounds {
		if r.Contains(b) {
			inRange = append(inRange, b)
		}
	}
	if len(inRange) == 0 {
		return []kv.Range{r}, nil
	}
	out := make([]kv.Range, 0, len(inRange)+1)
	start := r.Start
	startIncl := r.StartInclusive
	for _, b := range inRange {
		out = append(out, kv.Range{Start: start, StartInclusive: startIncl, End: b, EndInclusive: true})
		start = b
		startIncl = false
	}
	out = append(out, kv.Range{Start: start, StartInclusive: startIncl, End: r.End, EndInclusive: r.EndInclusive})
	return out, nil
}

func (s *Store) AttachIterator(ctx context.Context, tableName string, setting kv.IteratorSetting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if setting.Type != "STRING" {
		return nil
	}
	quals, ok := s.combined[tableName]
	if !ok {
		quals = make(map[string]bool)
		s.combined[tableName] = quals
	}
	if len(setting.Qualifiers) == 0 {
		quals[""] = true // "" sentinel means every qualifier; isCombined treats it specially
		return nil
	}
	for _, q := range setting.Qualifiers {
		quals[q] = true
	}
	return nil
}

func (s *Store) TabletLocations(ctx context.Context, tableName string, key []byte) (string, error) {
	s.mu.Lock()
	bounds := s.boundaries[tableName]
	s.mu.Unlock()

	if len(bounds) == 0 {
		return kv.DefaultTabletLocation, nil
	}
	if key == nil {
		return fmt.Sprintf("tablet-%d:9997", len(bounds)), nil
	}
	idx := sort.Search(len(bounds), func(i int) bool {
		return compareBytes(bounds[i], key) >= 0
	})
	if idx == len(bounds) {
		return fmt.Sprintf("tablet-%d:9997", len(bounds)), nil
	}
	return fmt.Sprintf("tablet-%d:9997", idx), nil
}

func (s *Store) CreateLocalityGroups(ctx context.Context, tableName string, groups map[string][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locality[tableName] = groups
	return nil
}

func (s *Store) CreateTable(ctx context.Context, tableName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table(tableName)
	return nil
}

func (s *Store) DropTable(ctx context.Context, tableName string, dropStorage bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, tableName)
	delete(s.boundaries, tableName)
	delete(s.locality, tableName)
	delete(s.combined, tableName)
	return nil
}

// SetTabletBoundaries is a test helper to simulate pre-split tablets.
func (s *Store) SetTabletBoundaries(tableName string, boundaries [][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := append([][]byte(nil), boundaries...)
	sort.Slice(sorted, func(i, j int) bool { return compareBytes(sorted[i], sorted[j]) < 0 })
	s.boundaries[tableName] = sorted
}

func compareBytes(a, b []byte) int {
	switch {
	case string(a) < string(b):
		return -1
	case string(a) > string(b):
		return 1
	default:
		return 0
	}
}

// --- writer ---

type writer struct {
	store   *Store
	table   string
	pending []kv.Mutation
	closed  bool
}

func (w *writer) Write(m kv.Mutation) error {
	if w.closed {
		return kverrors.Backend(nil, "write after close")
	}
	w.pending = append(w.pending, m)
	return nil
}

func (w *writer) Flush(ctx context.Context) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	for _, m := range w.pending {
		for _, u := range m.Updates {
			if err := w.store.applyCell(w.table, kv.Cell{Row: m.Row, Family: u.Family, Qualifier: u.Qualifier, Value: u.Value}); err != nil {
				return err
			}
		}
	}
	w.pending = nil
	return nil
}

func (w *writer) Close(ctx context.Context) error {
	if err := w.Flush(ctx); err != nil {
		return err
	}
	w.closed = true
	return nil
}

// --- scanner ---

type scanner struct {
	store      *Store
	table      string
	rng        kv.Range
	family     string
	qualifier  string
	snapshot   []kv.Cell
	pos        int
	started    bool
}

func (s *scanner) SetRange(r kv.Range) { s.rng = r }

func (s *scanner) FetchColumn(family, qualifier string) {
	s.family = family
	s.qualifier = qualifier
}

func (s *scanner) Next(ctx context.Context) (kv.Cell, bool, error) {
	if err := ctx.Err(); err != nil {
		return kv.Cell{}, false, err
	}
	if !s.started {
		s.store.mu.Lock()
		t := s.store.table(s.table)
		for _, c := range t.cells {
			if !s.rng.Contains([]byte(c.Row)) {
				continue
			}
			if s.family != "" && c.Family != s.family {
				continue
			}
			if s.qualifier != "" && c.Qualifier != s.qualifier {
				continue
			}
			s.snapshot = append(s.snapshot, c)
		}
		s.store.mu.Unlock()
		s.started = true
	}
	if s.pos >= len(s.snapshot) {
		return kv.Cell{}, false, nil
	}
	c := s.snapshot[s.pos]
	s.pos++
	return c, true, nil
}

func (s *scanner) Close() {}

// --- batch scanner ---

type batchScanner struct {
	store      *Store
	table      string
	ranges     []kv.Range
	family     string
	numThreads int
}

func (b *batchScanner) SetRanges(ranges []kv.Range) { b.ranges = ranges }

func (b *batchScanner) FetchColumnFamily(family string) { b.family = family }

func (b *batchScanner) Iterate(ctx context.Context, fn func(kv.Cell) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.numThreads)
	var mu sync.Mutex

	for _, r := range b.ranges {
		r := r
		g.Go(func() error {
			sc := &scanner{store: b.store, table: b.table}
			sc.SetRange(r)
			sc.FetchColumn(b.family, "")
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				c, ok, err := sc.Next(gctx)
				if err != nil {
					return kverrors.Backend(err, "batch scan")
				}
				if !ok {
					return nil
				}
				mu.Lock()
				err = fn(c)
				mu.Unlock()
				if err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}

func (b *batchScanner) Close() {}
