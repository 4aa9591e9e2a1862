// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package config

import "github.com/urfave/cli/v2"

var (
	// DbFlag points at the embedded sqlite store. Mutually exclusive
	// with RpcURLFlag; exactly one must be set.
	DbFlag = cli.PathFlag{
		Name:  "db",
		Usage: "path to the embedded sqlite chain store",
	}

	// RpcURLFlag points at a Starknet JSON-RPC endpoint. Mutually
	// exclusive with DbFlag.
	RpcURLFlag = cli.StringFlag{
		Name:  "rpc-url",
		Usage: "Starknet JSON-RPC endpoint to replay against",
	}

	// StartBlockFlag is the first block to replay (inclusive).
	StartBlockFlag = cli.Uint64Flag{
		Name:     "start-block",
		Usage:    "first block to replay (inclusive)",
		Required: true,
	}

	// EndBlockFlag is the last block to replay (inclusive). Clamped to
	// the store's latest block if it runs past it.
	EndBlockFlag = cli.Uint64Flag{
		Name:     "end-block",
		Usage:    "last block to replay (inclusive)",
		Required: true,
	}

	// CsvOutFlag is the optional path the libfunc statistics CSV dump
	// is written to.
	CsvOutFlag = cli.PathFlag{
		Name:  "csv-out",
		Usage: "path to write the libfunc statistics CSV dump to",
	}

	// SvgOutFlag is the optional path the SVG histogram is written to.
	SvgOutFlag = cli.PathFlag{
		Name:  "svg-out",
		Usage: "path to write the SVG libfunc histogram to",
	}

	// TraceDumpFlag enables persisting visited-PC traces to the sqlite
	// store's trace_dump table, for replay debugging. Only meaningful
	// with the sqlite store.
	TraceDumpFlag = cli.BoolFlag{
		Name:  "trace-dump",
		Usage: "persist per-block visited-PC traces to the sqlite store's trace-dump table",
	}

	// OverwriteFlag allows CsvOutFlag/SvgOutFlag to overwrite an
	// existing file instead of failing.
	OverwriteFlag = cli.BoolFlag{
		Name:    "overwrite",
		Usage:   "overwrite csv-out/svg-out if they already exist",
		Aliases: []string{"f"},
	}

	// WorkersFlag defines the number of parallel block-replay workers.
	WorkersFlag = cli.IntFlag{
		Name:    "workers",
		Usage:   "number of parallel block-replay workers",
		Value:   4,
		Aliases: []string{"w"},
	}

	// ChainIDFlag names the chain the store is expected to serve. It is
	// compared against the store's own ChainID and the run fails on a
	// mismatch; it does not replace the store's chain identification.
	ChainIDFlag = cli.StringFlag{
		Name:  "chain-id",
		Usage: "expected chain id (e.g. SN_MAIN); validated against the store's own chain id",
	}

	// PerFunctionFlag enables the optional stack-trace weighting pass
	// in addition to the primary per-libfunc statistics.
	PerFunctionFlag = cli.BoolFlag{
		Name:  "per-function",
		Usage: "additionally collect per-user-function call-stack weights",
	}

	// SerialModeFlag enables the RPC store's mutable state cache. Only
	// safe when --workers=1.
	SerialModeFlag = cli.BoolFlag{
		Name:  "serial",
		Usage: "enable the RPC store's per-process state cache; requires --workers=1",
	}
)
