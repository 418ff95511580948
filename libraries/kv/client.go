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

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// Credentials identifies the caller to the backend. Authentication itself is
// out of scope (§1); this is a transparent token the Store implementation
// may use.
type Credentials struct {
	Principal string
	Token     []byte
}

// Client is the shared handle to the backend: one per process, thread-safe,
// referenced weakly by every Indexer and planner (§3 Ownership, §5 Shared
// resources).
type Client struct {
	Store Store
	Creds Credentials
	Auths Authorizations

	log *logrus.Entry

	locCache *lru.Cache[tabletLocKey, string]
}

type tabletLocKey struct {
	table string
	key   string
}

// NewClient builds a Client around a Store, bounding repeated
// tablet_locations lookups with a small LRU cache (locations change rarely
// relative to query volume).
func NewClient(store Store, creds Credentials, auths Authorizations, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cache, _ := lru.New[tabletLocKey, string](4096)
	return &Client{
		Store:    store,
		Creds:    creds,
		Auths:    auths,
		log:      log.WithField("component", "kv.Client"),
		locCache: cache,
	}
}

// TabletLocations resolves the host:port serving the tablet for key (or the
// default tablet when key is nil), caching results.
func (c *Client) TabletLocations(ctx context.Context, table string, key []byte) (string, error) {
	cacheKey := tabletLocKey{table: table, key: string(key)}
	if loc, ok := c.locCache.Get(cacheKey); ok {
		return loc, nil
	}
	loc, err := c.Store.TabletLocations(ctx, table, key)
	if err != nil {
		return "", err
	}
	c.locCache.Add(cacheKey, loc)
	return loc, nil
}

// InvalidateTabletLocations drops all cached tablet locations for table,
// e.g. after a split or merge changes tablet boundaries.
func (c *Client) InvalidateTabletLocations(table string) {
	for _, k := range c.locCache.Keys() {
		if k.table == table {
			c.locCache.Remove(k)
		}
	}
}
