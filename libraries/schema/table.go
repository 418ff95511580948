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

// Package schema models the table descriptor collaborator: the minimal
// value types the Indexer and split planner need to resolve indexed
// (family, qualifier) pairs and array element types. DDL itself (create_table
// / drop_table) lives in the cmd/accumuloctl collaborator, not here.
package schema

import "fmt"

// Kind enumerates the logical types a column may hold.
type Kind int

const (
	Varchar Kind = iota
	BigInt
	Double
	Boolean
	Timestamp
	Array
)

func (k Kind) String() string {
	switch k {
	case Varchar:
		return "VARCHAR"
	case BigInt:
		return "BIGINT"
	case Double:
		return "DOUBLE"
	case Boolean:
		return "BOOLEAN"
	case Timestamp:
		return "TIMESTAMP"
	case Array:
		return "ARRAY"
	default:
		return "UNKNOWN"
	}
}

// Type describes a column's logical type. Elem is non-nil iff Kind == Array,
// and names the element type E.
type Type struct {
	Kind Kind
	Elem *Kind
}

func (t Type) String() string {
	if t.Kind == Array && t.Elem != nil {
		return fmt.Sprintf("ARRAY<%s>", t.Elem)
	}
	return t.Kind.String()
}

// IsArray reports whether this type is an array of some element type E.
func (t Type) IsArray() bool {
	return t.Kind == Array && t.Elem != nil
}

// Column is one column of a user table.
type Column struct {
	Name      string
	Type      Type
	RowID     bool // true for the single row-ID column
	Indexed   bool // schema-time "indexed" flag, I4
	Family    string
	Qualifier string
}

// FamilyQualifier returns the index column family for this column: f || "_" || q.
func (c Column) FamilyQualifier() string {
	return c.Family + "_" + c.Qualifier
}

// TableDescriptor is the schema of one user table, by value: the ordinal
// vector of columns the Indexer and planner consult. Mutating operations
// (AddColumn) are functional rebuilds rather than in-place splices, so a
// descriptor handed to a live Indexer is never mutated out from under it.
type TableDescriptor struct {
	SchemaName string
	TableName  string
	Columns    []Column
}

// DataTableName returns the backend name of the data table (§6): schema "."
// table, or bare table when schema is "default".
func (d TableDescriptor) DataTableName() string {
	if d.SchemaName == "" || d.SchemaName == "default" {
		return d.TableName
	}
	return d.SchemaName + "." + d.TableName
}

// IndexTableName returns the backend name of the inverted-index table.
func (d TableDescriptor) IndexTableName() string {
	return d.DataTableName() + "_idx"
}

// MetricsTableName returns the backend name of the statistics table.
func (d TableDescriptor) MetricsTableName() string {
	return d.DataTableName() + "_idx_metrics"
}

// RowIDColumn returns the row-ID column, if the descriptor declares one.
func (d TableDescriptor) RowIDColumn() (Column, bool) {
	for _, c := range d.Columns {
		if c.RowID {
			return c, true
		}
	}
	return Column{}, false
}

// IndexedColumns returns the columns with the schema-time indexed flag set (I4).
func (d TableDescriptor) IndexedColumns() []Column {
	var out []Column
	for _, c := range d.Columns {
		if c.Indexed {
			out = append(out, c)
		}
	}
	return out
}

// HasIndexedColumns reports whether any column of d is indexed; this governs
// whether T_idx/T_idx_metrics are created alongside T at all.
func (d TableDescriptor) HasIndexedColumns() bool {
	for _, c := range d.Columns {
		if c.Indexed {
			return true
		}
	}
	return false
}

// ColumnByName finds a column by name.
func (d TableDescriptor) ColumnByName(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// AddColumn returns a new TableDescriptor with column appended or inserted at
// ord (nil means append). This is a functional rebuild of the column vector,
// never an in-place splice, so existing holders of the old descriptor are
// unaffected.
func (d TableDescriptor) AddColumn(col Column, ord *int) TableDescriptor {
	cols := make([]Column, 0, len(d.Columns)+1)
	if ord == nil {
		cols = append(cols, d.Columns...)
		cols = append(cols, col)
	} else {
		i := *ord
		if i < 0 {
			i = 0
		}
		if i > len(d.Columns) {
			i = len(d.Columns)
		}
		cols = append(cols, d.Columns[:i]...)
		cols = append(cols, col)
		cols = append(cols, d.Columns[i:]...)
	}
	return TableDescriptor{SchemaName: d.SchemaName, TableName: d.TableName, Columns: cols}
}
