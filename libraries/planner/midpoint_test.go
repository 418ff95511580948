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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlkv/accumulo-connector/libraries/kv"
)

// P6: a <= midpoint(a,b) <= b, same length as inputs.
func TestMidpoint_P6(t *testing.T) {
	cases := []struct {
		a, b []byte
	}{
		{[]byte{0x00}, []byte{0xFF}},
		{[]byte{0x00, 0x00}, []byte{0xFF, 0xFF}},
		{[]byte{0x10}, []byte{0x11}},
		{[]byte{0x00}, []byte{0x01}},
	}
	for _, tc := range cases {
		mid := midpoint(tc.a, tc.b)
		assert.Len(t, mid, len(tc.a))
		assert.True(t, bytes.Compare(tc.a, mid) <= 0)
		assert.True(t, bytes.Compare(mid, tc.b) <= 0)
	}
}

func TestMidpoint_ExactCenter(t *testing.T) {
	mid := midpoint([]byte{0x00}, []byte{0x10})
	assert.Equal(t, []byte{0x08}, mid)
}

func TestMidpoint_AdjacentBytesFloor(t *testing.T) {
	// diff = 1: halves to 0 with a carry that has nowhere left to go, so the
	// midpoint of adjacent values floors down to the lower endpoint.
	mid := midpoint([]byte{0x00}, []byte{0x01})
	assert.Equal(t, []byte{0x00}, mid)
}

func TestMidpoint_CarryPropagatesAcrossBytes(t *testing.T) {
	// The high byte's remainder from halving carries into the next, less
	// significant byte (halving walks from the most significant byte down).
	mid := midpoint([]byte{0x00, 0x00}, []byte{0xFF, 0xFF})
	assert.Equal(t, []byte{0x7F, 0xFF}, mid)
}

func TestMidpoint_OrderIndependent(t *testing.T) {
	a := []byte{0xF0, 0x00}
	b := []byte{0x10, 0xFF}
	assert.Equal(t, midpoint(a, b), midpoint(b, a))
}

// S6 — Artificial splits.
func TestBisect_S6_ArtificialSplits(t *testing.T) {
	first := bytes.Repeat([]byte{0x00}, 8)
	last := bytes.Repeat([]byte{0xFF}, 8)
	unbounded := kv.UnboundedRange()

	out := bisect(unbounded, first, last, 2)
	assert.Len(t, out, 4, "k=2 levels of bisection on one range yields 2^2 sub-ranges")

	// Union covers [first, last]: first sub-range starts unbounded (clamped
	// to first implicitly), last sub-range ends unbounded (clamped to last).
	assert.Nil(t, out[0].Start)
	assert.Nil(t, out[len(out)-1].End)

	// Pairwise disjoint on the interior: each End equals the next Start,
	// with exactly one side inclusive.
	for i := 0; i < len(out)-1; i++ {
		assert.Equal(t, out[i].End, out[i+1].Start)
		assert.True(t, out[i].EndInclusive)
		assert.False(t, out[i+1].StartInclusive)
	}

	// The three interior boundaries are genuinely distinct and strictly
	// increasing: bisection quarters the space rather than collapsing to
	// degenerate repeats of first/last.
	boundaries := [][]byte{out[0].End, out[1].End, out[2].End}
	for i := 0; i < len(boundaries)-1; i++ {
		assert.True(t, bytes.Compare(boundaries[i], boundaries[i+1]) < 0)
	}
}
