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
	"context"
	"fmt"
	"strings"

	"github.com/dolthub/ishell"
	"github.com/dustin/go-humanize"
	shlex "github.com/flynn-archive/go-shlex"
	"github.com/sirupsen/logrus"

	"github.com/sqlkv/accumulo-connector/libraries/index"
	"github.com/sqlkv/accumulo-connector/libraries/kv"
	"github.com/sqlkv/accumulo-connector/libraries/observability"
	"github.com/sqlkv/accumulo-connector/libraries/planner"
	"github.com/sqlkv/accumulo-connector/libraries/rowcodec"
	"github.com/sqlkv/accumulo-connector/libraries/schema"
)

// registerCommands wires create_table/drop_table/describe/plan onto shell.
// Each handler is synchronous and talks to client/cat directly; accumuloctl
// is a single-session administrative tool, not a concurrent server.
func registerCommands(shell *ishell.Shell, cat *catalog, client *kv.Client, metrics *observability.Metrics, session planner.Session, log *logrus.Logger) {
	shell.AddCmd(&ishell.Cmd{
		Name: "create_table",
		Help: "create_table <table> <col:type[:rowid][:indexed]> ...",
		Func: func(c *ishell.Context) { cmdCreateTable(c, cat, client) },
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "drop_table",
		Help: "drop_table <table>",
		Func: func(c *ishell.Context) { cmdDropTable(c, cat, client) },
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "describe",
		Help: "describe <table>",
		Func: func(c *ishell.Context) { cmdDescribe(c, cat, client) },
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "plan",
		Help: `plan <table> ["col=value ..."] — prints the splits get_tablet_splits would produce`,
		Func: func(c *ishell.Context) { cmdPlan(c, cat, client, metrics, session, log) },
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "tables",
		Help: "tables — lists tables known to this session",
		Func: func(c *ishell.Context) {
			for _, name := range cat.names() {
				c.Println(name)
			}
		},
	})
}

func cmdCreateTable(c *ishell.Context, cat *catalog, client *kv.Client) {
	ctx := context.Background()
	if len(c.Args) < 2 {
		c.Println(errColor("usage: create_table <table> <col:type[:rowid][:indexed]> ..."))
		return
	}
	tableName := c.Args[0]

	cols := make([]schema.Column, 0, len(c.Args)-1)
	for _, spec := range c.Args[1:] {
		col, err := parseColumnSpec(spec)
		if err != nil {
			c.Println(errColor(err.Error()))
			return
		}
		cols = append(cols, col)
	}
	desc := schema.TableDescriptor{TableName: tableName, Columns: cols}
	rowIDCols := 0
	for _, col := range cols {
		if col.RowID {
			rowIDCols++
		}
	}
	if rowIDCols != 1 {
		c.Println(errColor("table must declare exactly one :rowid column"))
		return
	}

	if err := client.Store.CreateTable(ctx, desc.DataTableName()); err != nil {
		c.Println(errColor(err.Error()))
		return
	}
	if desc.HasIndexedColumns() {
		if err := client.Store.CreateTable(ctx, desc.IndexTableName()); err != nil {
			c.Println(errColor(err.Error()))
			return
		}
		if err := client.Store.CreateTable(ctx, desc.MetricsTableName()); err != nil {
			c.Println(errColor(err.Error()))
			return
		}
		if err := client.Store.CreateLocalityGroups(ctx, desc.IndexTableName(), index.LocalityGroups(desc)); err != nil {
			c.Println(errColor(err.Error()))
			return
		}
		if err := client.Store.CreateLocalityGroups(ctx, desc.MetricsTableName(), index.LocalityGroups(desc)); err != nil {
			c.Println(errColor(err.Error()))
			return
		}
		// The summing combiner must be scoped to ___card___ alone: attaching
		// it unscoped would sum first_row/last_row too (§4.A).
		if err := client.Store.AttachIterator(ctx, desc.MetricsTableName(), kv.SummingCombinerSetting(index.CardinalityCQ)); err != nil {
			c.Println(errColor(err.Error()))
			return
		}
	}

	cat.register(desc)
	c.Println(okColor(fmt.Sprintf("created %s (%d columns, %d indexed)", desc.DataTableName(), len(desc.Columns), len(desc.IndexedColumns()))))
}

func cmdDropTable(c *ishell.Context, cat *catalog, client *kv.Client) {
	ctx := context.Background()
	if len(c.Args) != 1 {
		c.Println(errColor("usage: drop_table <table>"))
		return
	}
	desc, ok := cat.lookup(c.Args[0])
	if !ok {
		c.Println(errColor("no such table: " + c.Args[0]))
		return
	}
	if desc.HasIndexedColumns() {
		if err := client.Store.DropTable(ctx, desc.IndexTableName(), true); err != nil {
			c.Println(errColor(err.Error()))
			return
		}
		if err := client.Store.DropTable(ctx, desc.MetricsTableName(), true); err != nil {
			c.Println(errColor(err.Error()))
			return
		}
	}
	if err := client.Store.DropTable(ctx, desc.DataTableName(), true); err != nil {
		c.Println(errColor(err.Error()))
		return
	}
	client.InvalidateTabletLocations(desc.DataTableName())
	cat.remove(desc.TableName)
	c.Println(okColor("dropped " + desc.TableName))
}

func cmdDescribe(c *ishell.Context, cat *catalog, client *kv.Client) {
	ctx := context.Background()
	if len(c.Args) != 1 {
		c.Println(errColor("usage: describe <table>"))
		return
	}
	desc, ok := cat.lookup(c.Args[0])
	if !ok {
		c.Println(errColor("no such table: " + c.Args[0]))
		return
	}

	c.Println(desc.DataTableName())
	for _, col := range desc.Columns {
		var flags []string
		if col.RowID {
			flags = append(flags, "rowid")
		}
		if col.Indexed {
			flags = append(flags, "indexed")
		}
		c.Printf("  %-20s %-14s %s\n", col.Name, col.Type.String(), strings.Join(flags, " "))
	}

	if !desc.HasIndexedColumns() {
		return
	}

	rows, err := index.RowCount(ctx, client, desc.MetricsTableName())
	if err != nil {
		c.Println(errColor(err.Error()))
		return
	}
	c.Printf("rows: %s\n", humanize.Comma(rows))

	first, last, err := index.MinMaxRowIDs(ctx, client, desc.MetricsTableName())
	if err != nil {
		c.Println(errColor(err.Error()))
		return
	}
	if first != nil {
		c.Printf("row-id range: %q .. %q\n", first, last)
	}
}

func cmdPlan(c *ishell.Context, cat *catalog, client *kv.Client, metrics *observability.Metrics, session planner.Session, log *logrus.Logger) {
	ctx := context.Background()
	if len(c.Args) < 1 {
		c.Println(errColor(`usage: plan <table> ["col=value ..."]`))
		return
	}
	desc, ok := cat.lookup(c.Args[0])
	if !ok {
		c.Println(errColor("no such table: " + c.Args[0]))
		return
	}

	tokens, err := shlex.Split(strings.Join(c.Args[1:], " "))
	if err != nil {
		c.Println(errColor("parsing predicate: " + err.Error()))
		return
	}

	constraints := make([]planner.ColumnConstraint, 0, len(tokens))
	for _, tok := range tokens {
		eq := strings.IndexByte(tok, '=')
		if eq < 0 {
			c.Println(errColor(fmt.Sprintf("predicate term %q: want col=value", tok)))
			return
		}
		colName, value := tok[:eq], tok[eq+1:]
		col, found := desc.ColumnByName(colName)
		if !found {
			c.Println(errColor("no such column: " + colName))
			return
		}
		constraints = append(constraints, planner.ColumnConstraint{Column: col, Domain: planner.SingleValueDomain(value)})
	}

	p := planner.New(client, desc, rowcodec.Default{}, log)
	p.SetMetrics(metrics)

	splits, err := p.GetTabletSplits(ctx, session, planner.UnboundedDomain(), constraints)
	if err != nil {
		c.Println(errColor(err.Error()))
		return
	}
	if len(splits) == 0 {
		c.Println("no matching rows")
		return
	}
	for _, s := range splits {
		c.Printf("%s  host=%-20s ranges=%d\n", s.SplitID, s.PreferredHost, len(s.Ranges))
	}
}
