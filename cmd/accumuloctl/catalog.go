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

package main

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/sqlkv/accumulo-connector/libraries/schema"
)

// catalog is accumuloctl's in-memory table registry. The spec treats table
// definitions as owned by an external DDL collaborator; this shell needs
// something to hold them for the session so create_table/describe/plan have
// a table to operate on.
type catalog struct {
	mu     sync.Mutex
	tables map[string]schema.TableDescriptor
}

func newCatalog() *catalog {
	return &catalog{tables: make(map[string]schema.TableDescriptor)}
}

func (c *catalog) register(desc schema.TableDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[desc.TableName] = desc
}

func (c *catalog) lookup(name string) (schema.TableDescriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.tables[name]
	return d, ok
}

func (c *catalog) remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tables, name)
}

func (c *catalog) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.tables))
	for name := range c.tables {
		out = append(out, name)
	}
	return out
}

// parseColumnSpec parses "name:type[:rowid][:indexed]", e.g. "id:varchar:rowid"
// or "tags:array<varchar>:indexed". The column's index family/qualifier
// default to its own name and "v".
func parseColumnSpec(spec string) (schema.Column, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 {
		return schema.Column{}, errors.Errorf("column spec %q: want name:type[:rowid][:indexed]", spec)
	}
	name := parts[0]
	typ, err := parseType(parts[1])
	if err != nil {
		return schema.Column{}, errors.Wrapf(err, "column %s", name)
	}
	col := schema.Column{Name: name, Type: typ, Family: name, Qualifier: "v"}
	for _, flag := range parts[2:] {
		switch strings.ToLower(flag) {
		case "rowid":
			col.RowID = true
		case "indexed":
			col.Indexed = true
		default:
			return schema.Column{}, errors.Errorf("column %s: unknown flag %q", name, flag)
		}
	}
	return col, nil
}

func parseType(s string) (schema.Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "array<") && strings.HasSuffix(s, ">") {
		elemKind, err := parseKind(s[len("array<") : len(s)-1])
		if err != nil {
			return schema.Type{}, err
		}
		return schema.Type{Kind: schema.Array, Elem: &elemKind}, nil
	}
	kind, err := parseKind(s)
	if err != nil {
		return schema.Type{}, err
	}
	return schema.Type{Kind: kind}, nil
}

func parseKind(s string) (schema.Kind, error) {
	switch s {
	case "varchar":
		return schema.Varchar, nil
	case "bigint":
		return schema.BigInt, nil
	case "double":
		return schema.Double, nil
	case "boolean":
		return schema.Boolean, nil
	case "timestamp":
		return schema.Timestamp, nil
	default:
		return 0, errors.Errorf("unknown type %q", s)
	}
}
