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

package rowcodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlkv/accumulo-connector/libraries/schema"
)

func TestDefaultEncode_OrderPreservingBigInt(t *testing.T) {
	values := []int64{-1 << 40, -1000, -1, 0, 1, 1000, 1 << 40}
	var encs [][]byte
	for _, v := range values {
		enc, err := Default{}.Encode(schema.Type{Kind: schema.BigInt}, v)
		require.NoError(t, err)
		encs = append(encs, enc)
	}
	for i := 1; i < len(encs); i++ {
		assert.True(t, bytes.Compare(encs[i-1], encs[i]) < 0, "encoding of %d should sort before %d", values[i-1], values[i])
	}
}

func TestDefaultEncode_OrderPreservingDouble(t *testing.T) {
	values := []float64{-100.5, -1.0, -0.001, 0, 0.001, 1.0, 100.5}
	var encs [][]byte
	for _, v := range values {
		enc, err := Default{}.Encode(schema.Type{Kind: schema.Double}, v)
		require.NoError(t, err)
		encs = append(encs, enc)
	}
	for i := 1; i < len(encs); i++ {
		assert.True(t, bytes.Compare(encs[i-1], encs[i]) < 0, "encoding of %v should sort before %v", values[i-1], values[i])
	}
}

func TestDefaultEncode_Varchar(t *testing.T) {
	enc, err := Default{}.Encode(schema.Type{Kind: schema.Varchar}, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("alice"), enc)
}

func TestDefaultEncode_RejectsArrayType(t *testing.T) {
	elem := schema.Varchar
	_, err := Default{}.Encode(schema.Type{Kind: schema.Array, Elem: &elem}, []string{"a"})
	assert.Error(t, err)
}

func TestArrayElements_DistinctOrder(t *testing.T) {
	elems, err := Default{}.ArrayElements(schema.Varchar, []string{"abc", "def", "ghi"})
	require.NoError(t, err)
	require.Len(t, elems, 3)
	assert.Equal(t, []byte("abc"), elems[0])
	assert.Equal(t, []byte("def"), elems[1])
	assert.Equal(t, []byte("ghi"), elems[2])
}

func TestArrayElements_UnsupportedType(t *testing.T) {
	_, err := Default{}.ArrayElements(schema.BigInt, "not-a-slice")
	assert.Error(t, err)
}
