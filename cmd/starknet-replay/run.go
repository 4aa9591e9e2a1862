// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/0xsoniclabs/starknet-replay/config"
	"github.com/0xsoniclabs/starknet-replay/executor"
	"github.com/0xsoniclabs/starknet-replay/histogram"
	"github.com/0xsoniclabs/starknet-replay/logger"
	"github.com/0xsoniclabs/starknet-replay/profiler"
	"github.com/0xsoniclabs/starknet-replay/replay"
	"github.com/0xsoniclabs/starknet-replay/sierra"
	"github.com/0xsoniclabs/starknet-replay/statistics"
	"github.com/0xsoniclabs/starknet-replay/storage"
	"github.com/0xsoniclabs/starknet-replay/storage/rpcstore"
	"github.com/0xsoniclabs/starknet-replay/storage/sqlitestore"
)

// Compiler and ReExecutor are the Sierra-to-CASM lowering pipeline and
// the VM re-execution black box, per spec.md §1: both are specified
// only at interface level, with no ecosystem implementation to wire.
// An integrator building a production binary links a real Cairo
// compiler and VM in by replacing these before main() runs (e.g. from
// an init() in a build-specific file that this package does not carry).
var (
	Compiler   profiler.Compiler
	ReExecutor executor.ReExecutor
)

// jsonSierraDecoder decodes a contract class's SierraProgram bytes as
// JSON directly into the package-local sierra.Program shape. Wire
// format is explicitly out of scope (spec.md §1); this assumes the
// storage layer hands back an encoding that already matches the Go
// struct layout, which holds for the embedded sqlite store's own
// contract_classes table but not necessarily for every real-world
// class encoding an integrator's storage backend might use.
type jsonSierraDecoder struct{}

func (jsonSierraDecoder) Decode(raw []byte) (*sierra.Program, error) {
	var p sierra.Program
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errors.Wrap(err, "cmd: decoding sierra program")
	}
	return &p, nil
}

// Run is the cli.App action for starknet-replay.
func Run(ctx *cli.Context) error {
	cfg, err := config.New(ctx)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel, "starknet-replay")

	store, closeStore, err := openStorage(ctx.Context, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.ChainID != "" {
		actual, err := store.ChainID()
		if err != nil {
			return err
		}
		if actual != cfg.ChainID {
			return errors.Newf("cmd: store serves chain %q, expected %q", actual, cfg.ChainID)
		}
	}

	return run(cfg, store, log)
}

// openStorage opens the embedded sqlite store or dials the RPC store,
// depending on which of --db/--rpc-url was given (config.New already
// enforces exactly one is set).
func openStorage(ctx context.Context, cfg *config.Config) (storage.ChainStorage, func(), error) {
	if cfg.DbPath != "" {
		s, err := sqlitestore.Open(cfg.DbPath, sqlitestore.Options{
			ReExecutor: ReExecutor,
			DumpTraces: cfg.TraceDump,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}

	s, err := rpcstore.Dial(ctx, cfg.RpcURL, rpcstore.Options{
		ReExecutor: ReExecutor,
		SerialMode: cfg.SerialMode,
	})
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

// run drives the replay and writes the requested outputs. Factored out
// of Run so tests can supply a fake storage.ChainStorage without a
// cli.Context or a real sqlite file/RPC endpoint.
func run(cfg *config.Config, store storage.ChainStorage, log logger.Logger) error {
	driver := replay.New(replay.Options{
		Storage:     store,
		Decoder:     jsonSierraDecoder{},
		Compiler:    Compiler,
		NumWorkers:  cfg.Workers,
		Log:         log,
		PerFunction: cfg.PerFunction,
	})

	stats, err := driver.Replay(cfg.StartBlock, cfg.EndBlock)
	if err != nil {
		return err
	}

	if cfg.PerFunction {
		printStackWeights(driver.StackWeights())
	}

	if cfg.CsvOut != "" {
		if err := writeCSV(cfg.CsvOut, stats, cfg.Overwrite); err != nil {
			return err
		}
	}

	if cfg.SvgOut != "" {
		bars := make([]histogram.Bar, 0, len(stats.Libfuncs()))
		for _, name := range stats.Libfuncs() {
			bars = append(bars, histogram.Bar{Name: name, Count: stats.Count(name)})
		}
		if err := histogram.Render(cfg.SvgOut, bars, cfg.Overwrite); err != nil {
			return err
		}
	}

	total, err := stats.Total()
	if err != nil {
		return err
	}
	log.Infof("replay done: %d distinct libfuncs, %d total invocations", len(stats.Libfuncs()), total)
	return nil
}

// printStackWeights renders the optional per-function stack weights
// (spec.md §4.2 "Stack-trace variant") to stdout, in the teacher's
// go-pretty tabular style.
func printStackWeights(weights map[string]uint64) {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return weights[keys[i]] > weights[keys[j]] })

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"call stack", "weight"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, weights[k]})
	}
	t.Render()
}

// writeCSV writes stats.ToCSV() to path, failing with
// histogram.ErrFileExists if path already exists and overwrite is
// false - the same file-exists guard spec.md §6 specifies for the SVG
// output, applied consistently to the CSV dump.
func writeCSV(path string, stats *statistics.LibfuncStatistics, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.Mark(errors.Newf("cmd: %s already exists", path), histogram.ErrFileExists)
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "cmd: checking %s", path)
		}
	}
	if err := os.WriteFile(path, []byte(stats.ToCSV()), 0o644); err != nil {
		return errors.Wrapf(err, "cmd: writing %s", path)
	}
	return nil
}
