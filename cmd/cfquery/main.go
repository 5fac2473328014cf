/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command cfquery runs a native query against a configured keyspace and prints the rows as YAML.
//
//	cfquery -config columnstore.yaml -keyspace app "SELECT * FROM app.users WHERE id = ?" u1
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/suparena/columnstore"
	"github.com/suparena/columnstore/config"
	"github.com/suparena/columnstore/storagemodels"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	configPath  = flag.String("config", "", "Path to the YAML configuration file")
	keyspace    = flag.String("keyspace", "", "Keyspace to query (default: first configured keyspace)")
	asyncFlag   = flag.Bool("async", false, "Run the query asynchronously and wait for the callback")
	prepareFlag = flag.Bool("prepare", false, "Prepare the query and execute it once per argument")
	timeout     = flag.Duration("timeout", 30*time.Second, "Overall deadline")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := columnstore.GetVersionInfo()
		fmt.Printf("columnstore cfquery version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: cfquery [flags] <query> [args...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "cfquery: %v\n", err)
		os.Exit(1)
	}
}

func run(query string, rawArgs []string) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	managers, err := columnstore.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := managers.Close(); err != nil {
			zap.S().Warnw("Failed to close managers", "error", err)
		}
	}()

	name := *keyspace
	if name == "" {
		name = cfg.Keyspaces[0]
	}
	m, err := managers.Get(name)
	if err != nil {
		return err
	}

	args := make([]any, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = a
	}

	var entities []storagemodels.Entity
	switch {
	case *prepareFlag:
		entities, err = runPrepared(ctx, m, query, args)
	case *asyncFlag:
		entities, err = runAsync(ctx, m, query, args)
	default:
		entities, err = m.NativeQuery(ctx, query, args...)
	}
	if err != nil {
		return err
	}
	return printEntities(entities)
}

// runPrepared prepares query once and executes it with each argument in turn.
func runPrepared(ctx context.Context, m *columnstore.Manager, query string, args []any) ([]storagemodels.Entity, error) {
	ps, err := m.NativeQueryPrepare(ctx, query)
	if err != nil {
		return nil, err
	}
	zap.S().Debugw("Prepared query", "id", ps.ID(), "query", ps.Query())

	if len(args) == 0 {
		return ps.Execute(ctx)
	}
	var all []storagemodels.Entity
	for _, arg := range args {
		entities, err := ps.Execute(ctx, arg)
		if err != nil {
			return nil, err
		}
		all = append(all, entities...)
	}
	return all, nil
}

func runAsync(ctx context.Context, m *columnstore.Manager, query string, args []any) ([]storagemodels.Entity, error) {
	type result struct {
		entities []storagemodels.Entity
		err      error
	}
	results := make(chan result, 1)
	err := m.NativeQueryAsync(ctx, query, func(entities []storagemodels.Entity, err error) {
		results <- result{entities, err}
	}, args...)
	if err != nil {
		return nil, err
	}

	select {
	case r := <-results:
		return r.entities, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func printEntities(entities []storagemodels.Entity) error {
	out := make([]map[string]any, len(entities))
	for i, e := range entities {
		row := e.ToMap()
		row["_table"] = e.Name
		out[i] = row
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to print rows: %w", err)
	}
	return enc.Close()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zcfg.Level = level
	}
	// keep stdout for query output
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}
