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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRange_Unbounded(t *testing.T) {
	r := UnboundedRange()
	assert.True(t, r.Contains([]byte("anything")))
	assert.True(t, r.Contains([]byte{}))
}

func TestRange_Point(t *testing.T) {
	r := PointRange([]byte("m"))
	assert.True(t, r.Contains([]byte("m")))
	assert.False(t, r.Contains([]byte("l")))
	assert.False(t, r.Contains([]byte("n")))
}

func TestRange_HalfOpen(t *testing.T) {
	r := Range{Start: []byte("a"), StartInclusive: true, End: []byte("m"), EndInclusive: false}
	assert.True(t, r.Contains([]byte("a")))
	assert.True(t, r.Contains([]byte("b")))
	assert.False(t, r.Contains([]byte("m")))
	assert.False(t, r.Contains([]byte{}))
}

func TestRange_ExclusiveStart(t *testing.T) {
	r := Range{Start: []byte("a"), StartInclusive: false, End: []byte("z"), EndInclusive: true}
	assert.False(t, r.Contains([]byte("a")))
	assert.True(t, r.Contains([]byte("b")))
	assert.True(t, r.Contains([]byte("z")))
}

func TestInAnyRange(t *testing.T) {
	ranges := []Range{PointRange([]byte("a")), PointRange([]byte("c"))}
	assert.True(t, InAnyRange([]byte("a"), ranges))
	assert.True(t, InAnyRange([]byte("c"), ranges))
	assert.False(t, InAnyRange([]byte("b"), ranges))
}

func TestContainedIn(t *testing.T) {
	outer := []Range{{Start: []byte("a"), StartInclusive: true, End: []byte("m"), EndInclusive: true}}
	assert.True(t, ContainedIn([]byte("c"), outer))
	assert.False(t, ContainedIn([]byte("z"), outer))
}
