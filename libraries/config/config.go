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

// Package config loads the planner's session knobs (§6) for the
// administrative collaborator (cmd/accumuloctl): a TOML file provides
// defaults, environment variables (prefixed ACCCONN_) override them.
package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/sqlkv/accumulo-connector/libraries/kverrors"
	"github.com/sqlkv/accumulo-connector/libraries/planner"
)

// File mirrors planner.Session with TOML tags, so a config file only needs
// to set the knobs it wants to override.
type File struct {
	OptimizeRangePredicatePushdown *bool    `toml:"optimize_range_predicate_pushdown"`
	SecondaryIndexEnabled          *bool    `toml:"secondary_index_enabled"`
	OptimizeRangeSplits            *bool    `toml:"optimize_range_splits"`
	LowestCardinalityThreshold     *float64 `toml:"lowest_cardinality_threshold"`
	IndexRatio                     *float64 `toml:"index_ratio"`
	NumArtificialSplits            *int     `toml:"num_artificial_splits"`
	RangesPerSplit                 *int     `toml:"ranges_per_split"`
}

const envPrefix = "ACCCONN_"

// Load builds a planner.Session starting from planner.DefaultSession(),
// applying path's TOML contents (if path is non-empty), then environment
// variable overrides, in that precedence order (env wins).
func Load(path string) (planner.Session, error) {
	session := planner.DefaultSession()

	if path != "" {
		var f File
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return planner.Session{}, kverrors.Misconfiguration("decode config file: " + err.Error())
		}
		applyFile(&session, f)
	}

	if err := applyEnv(&session); err != nil {
		return planner.Session{}, err
	}
	return session, nil
}

func applyFile(s *planner.Session, f File) {
	if f.OptimizeRangePredicatePushdown != nil {
		s.OptimizeRangePredicatePushdown = *f.OptimizeRangePredicatePushdown
	}
	if f.SecondaryIndexEnabled != nil {
		s.SecondaryIndexEnabled = *f.SecondaryIndexEnabled
	}
	if f.OptimizeRangeSplits != nil {
		s.OptimizeRangeSplits = *f.OptimizeRangeSplits
	}
	if f.LowestCardinalityThreshold != nil {
		s.LowestCardinalityThreshold = *f.LowestCardinalityThreshold
	}
	if f.IndexRatio != nil {
		s.IndexRatio = *f.IndexRatio
	}
	if f.NumArtificialSplits != nil {
		s.NumArtificialSplits = *f.NumArtificialSplits
	}
	if f.RangesPerSplit != nil {
		s.RangesPerSplit = *f.RangesPerSplit
	}
}

func applyEnv(s *planner.Session) error {
	if v, ok := lookupBool("OPTIMIZE_RANGE_PREDICATE_PUSHDOWN"); ok {
		s.OptimizeRangePredicatePushdown = v
	}
	if v, ok := lookupBool("SECONDARY_INDEX_ENABLED"); ok {
		s.SecondaryIndexEnabled = v
	}
	if v, ok := lookupBool("OPTIMIZE_RANGE_SPLITS"); ok {
		s.OptimizeRangeSplits = v
	}
	if v, ok, err := lookupFloat("LOWEST_CARDINALITY_THRESHOLD"); err != nil {
		return err
	} else if ok {
		s.LowestCardinalityThreshold = v
	}
	if v, ok, err := lookupFloat("INDEX_RATIO"); err != nil {
		return err
	} else if ok {
		s.IndexRatio = v
	}
	if v, ok, err := lookupInt("NUM_ARTIFICIAL_SPLITS"); err != nil {
		return err
	} else if ok {
		s.NumArtificialSplits = v
	}
	if v, ok, err := lookupInt("RANGES_PER_SPLIT"); err != nil {
		return err
	} else if ok {
		s.RangesPerSplit = v
	}
	return nil
}

func lookupBool(key string) (bool, bool) {
	raw, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func lookupFloat(key string) (float64, bool, error) {
	raw, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, kverrors.Misconfiguration("env " + envPrefix + key + " is not a float: " + err.Error())
	}
	return v, true, nil
}

func lookupInt(key string) (int, bool, error) {
	raw, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, kverrors.Misconfiguration("env " + envPrefix + key + " is not an int: " + err.Error())
	}
	return v, true, nil
}
