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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlkv/accumulo-connector/libraries/rowcodec"
	"github.com/sqlkv/accumulo-connector/libraries/schema"
)

// P5: translating an unbounded domain yields a single unbounded range that
// contains any encoded value.
func TestStorageRanges_UnboundedDomain(t *testing.T) {
	ranges, err := storageRanges(rowcodec.Default{}, schema.Type{Kind: schema.Varchar}, UnboundedDomain())
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Nil(t, ranges[0].Start)
	assert.Nil(t, ranges[0].End)
}

// A single-value domain round-trips to an inclusive point range that
// contains exactly the encoding of that value and nothing else.
func TestStorageRanges_SingleValueDomain_RoundTrips(t *testing.T) {
	ranges, err := storageRanges(rowcodec.Default{}, schema.Type{Kind: schema.Varchar}, SingleValueDomain("austin"))
	require.NoError(t, err)
	require.Len(t, ranges, 1)

	r := ranges[0]
	assert.Equal(t, []byte("austin"), r.Start)
	assert.Equal(t, []byte("austin"), r.End)
	assert.True(t, r.StartInclusive)
	assert.True(t, r.EndInclusive)
	assert.True(t, r.Contains([]byte("austin")))
	assert.False(t, r.Contains([]byte("boston")))
}

// A bounded ValueRange with Above/Below endpoints translates to an
// exclusive storage range on the corresponding side.
func TestStorageRange_AboveBelowBounds(t *testing.T) {
	domain := Domain{{
		Low:  &Endpoint{Value: "austin", Bound: Above},
		High: &Endpoint{Value: "denver", Bound: Below},
	}}
	ranges, err := storageRanges(rowcodec.Default{}, schema.Type{Kind: schema.Varchar}, domain)
	require.NoError(t, err)
	require.Len(t, ranges, 1)

	r := ranges[0]
	assert.False(t, r.StartInclusive)
	assert.False(t, r.EndInclusive)
	assert.False(t, r.Contains([]byte("austin")), "Above excludes the bound itself")
	assert.True(t, r.Contains([]byte("boston")))
	assert.False(t, r.Contains([]byte("denver")), "Below excludes the bound itself")
}

// A multi-range domain (disjunction) translates one kv.Range per ValueRange,
// in order.
func TestStorageRanges_Disjunction(t *testing.T) {
	domain := Domain{
		{Low: &Endpoint{Value: "austin", Bound: Exactly}, High: &Endpoint{Value: "austin", Bound: Exactly}},
		{Low: &Endpoint{Value: "denver", Bound: Exactly}, High: &Endpoint{Value: "denver", Bound: Exactly}},
	}
	ranges, err := storageRanges(rowcodec.Default{}, schema.Type{Kind: schema.Varchar}, domain)
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, []byte("austin"), ranges[0].Start)
	assert.Equal(t, []byte("denver"), ranges[1].Start)
}

// An encode failure (wrong Go type for the column's logical type) surfaces
// as a Misconfiguration, not a panic or a silent empty range.
func TestStorageRange_EncodeError(t *testing.T) {
	_, err := storageRanges(rowcodec.Default{}, schema.Type{Kind: schema.BigInt}, SingleValueDomain("not-a-number"))
	require.Error(t, err)
}
