// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package config builds a Config from CLI flags for cmd/starknet-replay.
package config

import (
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/0xsoniclabs/starknet-replay/logger"
	"github.com/0xsoniclabs/starknet-replay/storage"
)

// Config is the fully resolved, validated configuration for one replay
// run.
type Config struct {
	DbPath     string
	RpcURL     string
	StartBlock uint64
	EndBlock   uint64
	CsvOut     string
	SvgOut     string
	TraceDump  bool
	Overwrite  bool
	Workers    int
	ChainID    storage.ChainID
	PerFunction bool
	SerialMode bool
	LogLevel   string
}

// New builds and validates a Config from a cli.Context populated by the
// flags in this package.
func New(ctx *cli.Context) (*Config, error) {
	cfg := &Config{
		DbPath:      ctx.Path(DbFlag.Name),
		RpcURL:      ctx.String(RpcURLFlag.Name),
		StartBlock:  ctx.Uint64(StartBlockFlag.Name),
		EndBlock:    ctx.Uint64(EndBlockFlag.Name),
		CsvOut:      ctx.Path(CsvOutFlag.Name),
		SvgOut:      ctx.Path(SvgOutFlag.Name),
		TraceDump:   ctx.Bool(TraceDumpFlag.Name),
		Overwrite:   ctx.Bool(OverwriteFlag.Name),
		Workers:     ctx.Int(WorkersFlag.Name),
		ChainID:     storage.ChainID(ctx.String(ChainIDFlag.Name)),
		PerFunction: ctx.Bool(PerFunctionFlag.Name),
		SerialMode:  ctx.Bool(SerialModeFlag.Name),
		LogLevel:    ctx.String(logger.LogLevelFlag.Name),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DbPath == "" && c.RpcURL == "" {
		return errors.New("config: exactly one of --db or --rpc-url is required")
	}
	if c.DbPath != "" && c.RpcURL != "" {
		return errors.New("config: --db and --rpc-url are mutually exclusive")
	}
	if c.EndBlock < c.StartBlock {
		return errors.Newf("config: --end-block (%d) must not be less than --start-block (%d)", c.EndBlock, c.StartBlock)
	}
	if c.Workers < 1 {
		return errors.New("config: --workers must be >= 1")
	}
	if c.SerialMode && c.Workers != 1 {
		return errors.New("config: --serial requires --workers=1")
	}
	if c.ChainID != "" && !storage.KnownChainIDs(c.ChainID) {
		return errors.Newf("config: unknown --chain-id %q", c.ChainID)
	}
	return nil
}
