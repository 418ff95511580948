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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	Store
	lookups int
}

func (s *countingStore) TabletLocations(ctx context.Context, table string, key []byte) (string, error) {
	s.lookups++
	return "tablet-1:9997", nil
}

func TestClient_TabletLocationsCached(t *testing.T) {
	store := &countingStore{}
	c := NewClient(store, Credentials{}, nil, nil)

	loc, err := c.TabletLocations(context.Background(), "t", []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "tablet-1:9997", loc)

	_, err = c.TabletLocations(context.Background(), "t", []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, 1, store.lookups, "second lookup should hit the cache")
}

func TestClient_InvalidateTabletLocations(t *testing.T) {
	store := &countingStore{}
	c := NewClient(store, Credentials{}, nil, nil)

	_, err := c.TabletLocations(context.Background(), "t", []byte("k"))
	require.NoError(t, err)
	c.InvalidateTabletLocations("t")
	_, err = c.TabletLocations(context.Background(), "t", []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, 2, store.lookups, "invalidation forces a fresh lookup")
}
