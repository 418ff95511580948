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
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sqlkv/accumulo-connector/libraries/index"
	"github.com/sqlkv/accumulo-connector/libraries/kv"
	"github.com/sqlkv/accumulo-connector/libraries/kverrors"
	"github.com/sqlkv/accumulo-connector/libraries/observability"
	"github.com/sqlkv/accumulo-connector/libraries/rowcodec"
	"github.com/sqlkv/accumulo-connector/libraries/schema"
)

// TabletSplitMetadata is one unit of parallel scan work: a preferred host
// and the scan ranges assigned to it (§4.D Output).
type TabletSplitMetadata struct {
	SplitID       string
	PreferredHost string
	Ranges        []kv.Range
}

// Planner plans splits for one user table. It is read-only and re-entrant:
// multiple Planners (or concurrent calls) may run against the same
// metrics/index tables (§5 Planner concurrency).
type Planner struct {
	client     *kv.Client
	desc       schema.TableDescriptor
	serializer rowcodec.Serializer
	log        *logrus.Entry
	metrics    *observability.Metrics
}

// New constructs a Planner for desc.
func New(client *kv.Client, desc schema.TableDescriptor, serializer rowcodec.Serializer, log *logrus.Logger) *Planner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if serializer == nil {
		serializer = rowcodec.Default{}
	}
	return &Planner{
		client:     client,
		desc:       desc,
		serializer: serializer,
		log:        log.WithFields(logrus.Fields{"component": "planner.Planner", "table": desc.DataTableName()}),
	}
}

// SetMetrics attaches operational counters/histograms; a nil metrics field
// (the default) makes every observe call a no-op.
func (p *Planner) SetMetrics(m *observability.Metrics) {
	p.metrics = m
}

type cardinalityResult struct {
	constraint ColumnConstraint
	count      int64
}

// GetTabletSplits implements the split-planning algorithm (§4.D).
func (p *Planner) GetTabletSplits(ctx context.Context, session Session, rowDomain Domain, constraints []ColumnConstraint) ([]TabletSplitMetadata, error) {
	start := time.Now()
	mode := "full-scan"
	splits, err := p.planTabletSplits(ctx, session, rowDomain, constraints, &mode)
	p.metrics.ObservePlan(mode, len(splits), time.Since(start).Seconds())
	return splits, err
}

func (p *Planner) planTabletSplits(ctx context.Context, session Session, rowDomain Domain, constraints []ColumnConstraint, mode *string) ([]TabletSplitMetadata, error) {
	rowIDCol, ok := p.desc.RowIDColumn()
	if !ok {
		return nil, kverrors.Misconfiguration("table has no row-id column")
	}
	for _, c := range constraints {
		if !c.Column.Indexed {
			continue
		}
		if _, found := p.desc.ColumnByName(c.Column.Name); !found {
			return nil, kverrors.Misconfiguration("constraint refers to unknown column " + c.Column.Name)
		}
	}

	// 1. Row-ID pushdown ranges.
	var candidateRanges []kv.Range
	if session.OptimizeRangePredicatePushdown {
		ranges, err := storageRanges(p.serializer, rowIDCol.Type, rowDomain)
		if err != nil {
			return nil, err
		}
		candidateRanges = ranges
	} else {
		candidateRanges = []kv.Range{kv.UnboundedRange()}
	}

	// 2. Index decision.
	var indexed []ColumnConstraint
	for _, c := range constraints {
		if c.Column.Indexed {
			indexed = append(indexed, c)
		}
	}
	if !session.SecondaryIndexEnabled || len(indexed) == 0 {
		return p.finishPlan(ctx, session, candidateRanges)
	}

	metricsTable := p.desc.MetricsTableName()

	// 3. Cardinality probe.
	results, err := p.probeCardinalities(ctx, metricsTable, indexed)
	if err != nil {
		return nil, wrapPlannerError(err)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].count < results[j].count })

	rowCount, err := index.RowCount(ctx, p.client, metricsTable)
	if err != nil {
		return nil, wrapPlannerError(err)
	}

	if results[0].count == 0 {
		p.log.WithField("column", results[0].constraint.Column.Name).Debug("zero-cardinality short-circuit")
		return nil, nil
	}

	// 4. Intersect or single-probe.
	var probeSet map[string]struct{}
	ratio := 0.0
	if rowCount > 0 {
		ratio = float64(results[0].count) / float64(rowCount)
	}
	intersection := ratio > session.LowestCardinalityThreshold
	if intersection {
		*mode = "intersection"
		probeSet, err = p.intersectionProbe(ctx, results, candidateRanges)
		p.log.WithFields(logrus.Fields{"mode": "intersection", "columns": len(results)}).Debug("planning mode chosen")
	} else {
		*mode = "single-probe"
		probeSet, err = p.singleProbe(ctx, results[0], candidateRanges)
		p.log.WithFields(logrus.Fields{"mode": "single-probe", "column": results[0].constraint.Column.Name}).Debug("planning mode chosen")
	}
	if err != nil {
		return nil, wrapPlannerError(err)
	}

	m := int64(len(probeSet))
	indexRatio := 0.0
	if rowCount > 0 {
		indexRatio = float64(m) / float64(rowCount)
	}
	if indexRatio < session.IndexRatio {
		candidateRanges = make([]kv.Range, 0, len(probeSet))
		for rowID := range probeSet {
			candidateRanges = append(candidateRanges, kv.PointRange([]byte(rowID)))
		}
		sort.Slice(candidateRanges, func(i, j int) bool {
			return string(candidateRanges[i].Start) < string(candidateRanges[j].Start)
		})
	}

	return p.finishPlan(ctx, session, candidateRanges)
}

func (p *Planner) probeCardinalities(ctx context.Context, metricsTable string, indexed []ColumnConstraint) ([]cardinalityResult, error) {
	results := make([]cardinalityResult, len(indexed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(10) // mirrors the KV adapter's documented 10-thread BatchScanner fan-out (§5)

	for i, c := range indexed {
		i, c := i, c
		g.Go(func() error {
			ranges, err := storageRanges(p.serializer, c.Column.Type, c.Domain)
			if err != nil {
				return err
			}
			count, err := p.sumCardinality(gctx, metricsTable, c.Column.FamilyQualifier(), ranges)
			if err != nil {
				return err
			}
			results[i] = cardinalityResult{constraint: c, count: count}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Planner) sumCardinality(ctx context.Context, table, family string, ranges []kv.Range) (int64, error) {
	sum := decimal.Zero
	for _, r := range ranges {
		sc, err := p.client.Store.Scanner(ctx, table, p.client.Auths)
		if err != nil {
			return 0, kverrors.Backend(err, "open scanner for cardinality probe")
		}
		sc.SetRange(r)
		sc.FetchColumn(family, index.CardinalityCQ)
		for {
			c, ok, err := sc.Next(ctx)
			if err != nil {
				sc.Close()
				return 0, kverrors.Backend(err, "scan cardinality probe")
			}
			if !ok {
				break
			}
			d, derr := decimal.NewFromString(string(c.Value))
			if derr != nil {
				sc.Close()
				return 0, kverrors.Invariant(derr, "cardinality cell is not a decimal")
			}
			sum = sum.Add(d)
		}
		sc.Close()
	}
	return sum.IntPart(), nil
}

// intersectionProbe scans T_idx for every indexed column over its own
// domain's ranges, keeps only row-IDs contained in the row-ID pushdown
// ranges, and intersects the resulting sets across columns.
func (p *Planner) intersectionProbe(ctx context.Context, results []cardinalityResult, candidateRanges []kv.Range) (map[string]struct{}, error) {
	var (
		mu   sync.Mutex
		sets = make([]map[string]struct{}, len(results))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(10)
	for i, res := range results {
		i, res := i, res
		g.Go(func() error {
			set, err := p.probeIndex(gctx, res.constraint, candidateRanges)
			if err != nil {
				return err
			}
			mu.Lock()
			sets[i] = set
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := sets[0]
	for _, s := range sets[1:] {
		out = intersectSets(out, s)
	}
	return out, nil
}

func (p *Planner) singleProbe(ctx context.Context, lowest cardinalityResult, candidateRanges []kv.Range) (map[string]struct{}, error) {
	return p.probeIndex(ctx, lowest.constraint, candidateRanges)
}

func (p *Planner) probeIndex(ctx context.Context, c ColumnConstraint, candidateRanges []kv.Range) (map[string]struct{}, error) {
	p.metrics.ObserveIndexProbe()
	ranges, err := storageRanges(p.serializer, c.Column.Type, c.Domain)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{})
	table := p.desc.IndexTableName()
	for _, r := range ranges {
		sc, err := p.client.Store.Scanner(ctx, table, p.client.Auths)
		if err != nil {
			return nil, kverrors.Backend(err, "open scanner for index probe")
		}
		sc.SetRange(r)
		sc.FetchColumn(c.Column.FamilyQualifier(), "")
		for {
			cell, ok, err := sc.Next(ctx)
			if err != nil {
				sc.Close()
				return nil, kverrors.Backend(err, "scan index probe")
			}
			if !ok {
				break
			}
			if kv.InAnyRange([]byte(cell.Qualifier), candidateRanges) {
				out[cell.Qualifier] = struct{}{}
			}
		}
		sc.Close()
	}
	return out, nil
}

func intersectSets(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	for k := range small {
		if _, ok := large[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// finishPlan applies tablet splitting and artificial splits, then bins the
// survivors into TabletSplitMetadata (§4.D steps 5-7).
func (p *Planner) finishPlan(ctx context.Context, session Session, candidateRanges []kv.Range) ([]TabletSplitMetadata, error) {
	if candidateRanges == nil {
		return nil, nil
	}

	ranges := candidateRanges
	if session.OptimizeRangeSplits {
		var split []kv.Range
		for _, r := range ranges {
			sub, err := p.client.Store.SplitRangeByTablets(ctx, p.desc.DataTableName(), r)
			if err != nil {
				return nil, wrapPlannerError(kverrors.Backend(err, "split range by tablets"))
			}
			split = append(split, sub...)
		}
		ranges = split
	}

	if session.NumArtificialSplits > 0 {
		first, last, err := index.MinMaxRowIDs(ctx, p.client, p.desc.MetricsTableName())
		if err != nil {
			return nil, wrapPlannerError(err)
		}
		if first != nil && last != nil {
			var bisected []kv.Range
			for _, r := range ranges {
				bisected = append(bisected, bisect(r, first, last, session.NumArtificialSplits)...)
			}
			ranges = bisected
		}
	}

	rand.Shuffle(len(ranges), func(i, j int) { ranges[i], ranges[j] = ranges[j], ranges[i] })

	perSplit := session.RangesPerSplit
	if perSplit <= 0 {
		perSplit = 1
	}

	var splits []TabletSplitMetadata
	for i := 0; i < len(ranges); i += perSplit {
		end := i + perSplit
		if end > len(ranges) {
			end = len(ranges)
		}
		group := ranges[i:end]
		host := kv.DefaultTabletLocation
		if len(group) > 0 {
			if loc, err := p.client.TabletLocations(ctx, p.desc.DataTableName(), group[0].Start); err == nil {
				host = loc
			}
		}
		splits = append(splits, TabletSplitMetadata{
			SplitID:       uuid.NewString(),
			PreferredHost: host,
			Ranges:        group,
		})
	}
	return splits, nil
}
