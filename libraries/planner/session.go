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

// Package planner is the index-driven split planner (§4.D): given a
// predicate over a user table, it consults T_idx_metrics and T_idx via the
// KV adapter to decide between a full scan and one or more secondary-index
// probes, and packages the surviving ranges into TabletSplitMetadata.
package planner

// Session holds the planner's tunable knobs (§6), assembled by the DDL/CLI
// collaborator from flags or config before being handed to GetTabletSplits,
// the way the teacher's command layer settles a struct before invoking the
// engine.
type Session struct {
	OptimizeRangePredicatePushdown bool
	SecondaryIndexEnabled          bool
	OptimizeRangeSplits            bool
	LowestCardinalityThreshold     float64
	IndexRatio                     float64
	NumArtificialSplits            int
	RangesPerSplit                 int
}

// Option configures a Session.
type Option func(*Session)

// DefaultSession returns a Session with conservative defaults: row-ID
// pushdown, the secondary index, and tablet-aligned range splitting all on,
// a 5% lowest-cardinality threshold for intersection mode,
// a 50% index-selectivity gate, no artificial splits, and one range per
// split.
func DefaultSession(opts ...Option) Session {
	s := Session{
		OptimizeRangePredicatePushdown: true,
		SecondaryIndexEnabled:          true,
		OptimizeRangeSplits:            true,
		LowestCardinalityThreshold:     0.05,
		IndexRatio:                     0.5,
		NumArtificialSplits:            0,
		RangesPerSplit:                 1,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func WithRangePredicatePushdown(enabled bool) Option {
	return func(s *Session) { s.OptimizeRangePredicatePushdown = enabled }
}

func WithSecondaryIndexEnabled(enabled bool) Option {
	return func(s *Session) { s.SecondaryIndexEnabled = enabled }
}

func WithRangeSplits(enabled bool) Option {
	return func(s *Session) { s.OptimizeRangeSplits = enabled }
}

func WithLowestCardinalityThreshold(t float64) Option {
	return func(s *Session) { s.LowestCardinalityThreshold = t }
}

func WithIndexRatio(r float64) Option {
	return func(s *Session) { s.IndexRatio = r }
}

func WithNumArtificialSplits(k int) Option {
	return func(s *Session) { s.NumArtificialSplits = k }
}

func WithRangesPerSplit(n int) Option {
	return func(s *Session) { s.RangesPerSplit = n }
}
