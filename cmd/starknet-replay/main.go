// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/0xsoniclabs/starknet-replay/config"
	"github.com/0xsoniclabs/starknet-replay/logger"
)

var replayApp = &cli.App{
	Action:    Run,
	Name:      "Starknet Sierra replay profiler",
	HelpName:  "starknet-replay",
	Copyright: "(c) 2026 Starknet Replay Contributors",
	Usage:     "replays a Starknet block range and profiles Sierra libfunc call frequencies",
	Flags: []cli.Flag{
		&config.DbFlag,
		&config.RpcURLFlag,
		&config.StartBlockFlag,
		&config.EndBlockFlag,
		&config.CsvOutFlag,
		&config.SvgOutFlag,
		&config.TraceDumpFlag,
		&config.OverwriteFlag,
		&config.WorkersFlag,
		&config.ChainIDFlag,
		&config.PerFunctionFlag,
		&config.SerialModeFlag,
		&logger.LogLevelFlag,
	},
}

func main() {
	if err := replayApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
