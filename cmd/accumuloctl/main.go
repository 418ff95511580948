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

// Command accumuloctl is a minimal administrative shell over the Indexer
// and split planner: create_table/drop_table manage a table's data, index,
// and metrics tables (including attaching the scoped summing combiner and
// locality groups), describe reports a table's schema and row counts, and
// plan prints the splits get_tablet_splits would produce for a predicate.
// Query execution and SQL binding remain out of scope and belong to a real
// binder's own process.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/abiosoft/readline"
	"github.com/dolthub/ishell"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/sqlkv/accumulo-connector/libraries/config"
	"github.com/sqlkv/accumulo-connector/libraries/kv"
	"github.com/sqlkv/accumulo-connector/libraries/kv/boltkv"
	"github.com/sqlkv/accumulo-connector/libraries/observability"
)

var (
	errColor = color.New(color.FgRed).SprintFunc()
	okColor  = color.New(color.FgGreen).SprintFunc()
)

func main() {
	dbPath := flag.String("db", "accumuloctl.db", "path to the boltdb file backing this session")
	configPath := flag.String("config", "", "TOML file overriding planner session defaults")
	historyPath := flag.String("history", "", "readline history file (empty disables persistent history)")
	localAddr := flag.String("local-addr", "", "preferred-host string reported for tablet locations (defaults to \"local:\" followed by the db path)")
	flag.Parse()

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	log := logrus.StandardLogger()

	store, err := boltkv.Open(*dbPath, *localAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, errColor("accumuloctl: "+err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	client := kv.NewClient(store, kv.Credentials{}, nil, log)
	metrics := observability.New(prometheus.DefaultRegisterer)

	session, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errColor("accumuloctl: "+err.Error()))
		os.Exit(1)
	}

	cat := newCatalog()

	shell := ishell.NewWithConfig(&readline.Config{HistoryFile: *historyPath})
	shell.SetPrompt("accumuloctl> ")
	registerCommands(shell, cat, client, metrics, session, log)

	shell.Println(okColor("accumuloctl — secondary-index + split-planner admin shell"))
	shell.Run()
}
