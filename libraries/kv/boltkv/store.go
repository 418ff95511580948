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

// Package boltkv implements kv.Store against a single boltdb file
// (github.com/boltdb/bolt — a teacher dependency). Bolt's B+tree keeps keys
// in lexicographic byte order natively, so it stands in for one tablet of a
// real sorted, distributed store: this package exercises the adapter
// contract (scan ranges, combiner semantics, table lifecycle) against real
// durable storage rather than only the in-memory test double in
// libraries/kv/memkv. Bolt is single-node, so TabletLocations always
// resolves to this process and SplitRangeByTablets is a caller-supplied
// boundary list rather than a discovered catalog (see SetTabletBoundaries).
package boltkv

import (
	"bytes"
	"context"
	"sort"
	"sync"

	bolt "github.com/boltdb/bolt"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/sqlkv/accumulo-connector/libraries/kv"
	"github.com/sqlkv/accumulo-connector/libraries/kverrors"
)

const keySep = "\x00"

// Store is a kv.Store backed by one boltdb file; each table is a top-level
// bucket.
type Store struct {
	db *bolt.DB

	mu         sync.Mutex
	boundaries map[string][][]byte
	combined   map[string]map[string]bool // table -> qualifier -> summing combiner applies
	localAddr  string
}

// Open opens (creating if absent) a boltdb file at path.
func Open(path string, localAddr string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, kverrors.Backend(err, "open boltdb")
	}
	if localAddr == "" {
		localAddr = "local:" + path
	}
	return &Store{
		db:         db,
		boundaries: make(map[string][][]byte),
		combined:   make(map[string]map[string]bool),
		localAddr:  localAddr,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func encodeKey(row, family, qualifier string) []byte {
	return []byte(row + keySep + family + keySep + qualifier)
}

func decodeKey(k []byte) (row, family, qualifier string) {
	parts := bytes.SplitN(k, []byte(keySep), 3)
	row = string(parts[0])
	if len(parts) > 1 {
		family = string(parts[1])
	}
	if len(parts) > 2 {
		qualifier = string(parts[2])
	}
	return
}

func rowPrefixRange(b *bolt.Bucket, r kv.Range) (start, end []byte) {
	// bolt.Cursor.Seek gives us a lower bound directly; an upper bound is
	// enforced by the caller comparing the row component of each key.
	if r.Start != nil {
		start = encodeKey(string(r.Start), "", "")
	}
	if r.End != nil {
		end = encodeKey(string(r.End), "\xff", "\xff")
	}
	return
}

func (s *Store) CreateTable(ctx context.Context, table string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(table))
		return err
	})
}

func (s *Store) DropTable(ctx context.Context, table string, dropStorage bool) error {
	s.mu.Lock()
	delete(s.boundaries, table)
	delete(s.combined, table)
	s.mu.Unlock()
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(table))
		if err == bolt.ErrBucketNotFound {
			return nil
		}
		return err
	})
}

func (s *Store) CreateLocalityGroups(ctx context.Context, table string, groups map[string][]string) error {
	// Bolt has no locality-group concept (single B+tree per bucket); the
	// grouping is a pure storage-layout hint in the real backend and has no
	// observable effect here beyond being accepted.
	return nil
}

func (s *Store) AttachIterator(ctx context.Context, table string, setting kv.IteratorSetting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if setting.Type != "STRING" {
		return nil
	}
	quals, ok := s.combined[table]
	if !ok {
		quals = make(map[string]bool)
		s.combined[table] = quals
	}
	if len(setting.Qualifiers) == 0 {
		quals[""] = true
		return nil
	}
	for _, q := range setting.Qualifiers {
		quals[q] = true
	}
	return nil
}

func (s *Store) isCombined(table, qualifier string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	quals, ok := s.combined[table]
	if !ok {
		return false
	}
	return quals[qualifier] || quals[""]
}

func (s *Store) BatchWriter(ctx context.Context, table string, cfg kv.WriterConfig) (kv.Writer, error) {
	return &writer{store: s, table: table}, nil
}

type writer struct {
	store   *Store
	table   string
	pending []kv.Mutation
}

func (w *writer) Write(m kv.Mutation) error {
	w.pending = append(w.pending, m)
	return nil
}

func (w *writer) Flush(ctx context.Context) error {
	err := w.store.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(w.table))
		if err != nil {
			return err
		}
		for _, m := range w.pending {
			for _, u := range m.Updates {
				key := encodeKey(m.Row, u.Family, u.Qualifier)
				val := u.Value
				if w.store.isCombined(w.table, u.Qualifier) {
					if existing := b.Get(key); existing != nil {
						sum, serr := sumDecimalASCII(existing, val)
						if serr != nil {
							return kverrors.Invariant(serr, "summing combiner: non-decimal value")
						}
						val = sum
					}
				}
				if err := b.Put(key, val); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return kverrors.Backend(err, "flush")
	}
	w.pending = nil
	return nil
}

func (w *writer) Close(ctx context.Context) error {
	return w.Flush(ctx)
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

func (s *Store) Scanner(ctx context.Context, table string, auths kv.Authorizations) (kv.Scanner, error) {
	return &scanner{store: s, table: table}, nil
}

type scanner struct {
	store     *Store
	table     string
	rng       kv.Range
	family    string
	qualifier string
	cells     []kv.Cell
	pos       int
	started   bool
}

func (sc *scanner) SetRange(r kv.Range) { sc.rng = r }

func (sc *scanner) FetchColumn(family, qualifier string) {
	sc.family = family
	sc.qualifier = qualifier
}

func (sc *scanner) load() error {
	return sc.store.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(sc.table))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			row, family, qualifier := decodeKey(k)
			if !sc.rng.Contains([]byte(row)) {
				continue
			}
			if sc.family != "" && family != sc.family {
				continue
			}
			if sc.qualifier != "" && qualifier != sc.qualifier {
				continue
			}
			valCopy := append([]byte(nil), v...)
			sc.cells = append(sc.cells, kv.Cell{Row: row, Family: family, Qualifier: qualifier, Value: valCopy})
		}
		return nil
	})
}

func (sc *scanner) Next(ctx context.Context) (kv.Cell, bool, error) {
	if err := ctx.Err(); err != nil {
		return kv.Cell{}, false, err
	}
	if !sc.started {
		if err := sc.load(); err != nil {
			return kv.Cell{}, false, kverrors.Backend(err, "scan")
		}
		sc.started = true
	}
	if sc.pos >= len(sc.cells) {
		return kv.Cell{}, false, nil
	}
	c := sc.cells[sc.pos]
	sc.pos++
	return c, true, nil
}

func (sc *scanner) Close() {}

func (s *Store) BatchScanner(ctx context.Context, table string, auths kv.Authorizations, numThreads int) (kv.BatchScanner, error) {
	return &batchScanner{store: s, table: table}, nil
}

type batchScanner struct {
	store  *Store
	table  string
	ranges []kv.Range
	family string
}

func (b *batchScanner) SetRanges(ranges []kv.Range)     { b.ranges = ranges }
func (b *batchScanner) FetchColumnFamily(family string) { b.family = family }

func (b *batchScanner) Iterate(ctx context.Context, fn func(kv.Cell) error) error {
	for _, r := range b.ranges {
		sc := &scanner{store: b.store, table: b.table}
		sc.SetRange(r)
		sc.FetchColumn(b.family, "")
		for {
			c, ok, err := sc.Next(ctx)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if err := fn(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *batchScanner) Close() {}

func (s *Store) SplitRangeByTablets(ctx context.Context, table string, r kv.Range) ([]kv.Range, error) {
	s.mu.Lock()
	bounds := append([][]byte(nil), s.boundaries[table]...)
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

// SetTabletBoundaries simulates pre-split tablets for SplitRangeByTablets /
// TabletLocations, since a single boltdb file has no catalog table of its
// own.
func (s *Store) SetTabletBoundaries(table string, boundaries [][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := append([][]byte(nil), boundaries...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i], sorted[j]) < 0 })
	s.boundaries[table] = sorted
}

func (s *Store) TabletLocations(ctx context.Context, table string, key []byte) (string, error) {
	// Single-node store: every tablet is served locally.
	return s.localAddr, nil
}
