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

package kv

import "bytes"

// Range is a scan range over the sorted key space. A nil Start means
// unbounded below (−∞); a nil End means unbounded above (+∞).
type Range struct {
	Start        []byte
	StartInclusive bool
	End          []byte
	EndInclusive bool
}

// UnboundedRange is (−∞, +∞).
func UnboundedRange() Range {
	return Range{}
}

// PointRange is the single-key range {k}.
func PointRange(k []byte) Range {
	return Range{Start: k, StartInclusive: true, End: k, EndInclusive: true}
}

// BeforeStart reports whether k sorts strictly before r's start bound.
func (r Range) BeforeStart(k []byte) bool {
	if r.Start == nil {
		return false
	}
	c := bytes.Compare(k, r.Start)
	if r.StartInclusive {
		return c < 0
	}
	return c <= 0
}

// AfterEnd reports whether k sorts strictly after r's end bound.
func (r Range) AfterEnd(k []byte) bool {
	if r.End == nil {
		return false
	}
	c := bytes.Compare(k, r.End)
	if r.EndInclusive {
		return c > 0
	}
	return c >= 0
}

// Contains reports whether k is in range r: ¬BeforeStart(k) ∧ ¬AfterEnd(k).
func (r Range) Contains(k []byte) bool {
	return !r.BeforeStart(k) && !r.AfterEnd(k)
}

// InAnyRange reports whether k is in the set: in any range in rs.
func InAnyRange(k []byte, rs []Range) bool {
	for _, r := range rs {
		if r.Contains(k) {
			return true
		}
	}
	return false
}

// ContainedIn reports whether k lies within one of outer (used by
// the planner's intersection mode to decide whether a T_idx row's storage
// key, interpreted as a range of one point, is contained in the row-ID
// pushdown ranges).
func ContainedIn(k []byte, outer []Range) bool {
	return InAnyRange(k, outer)
}
