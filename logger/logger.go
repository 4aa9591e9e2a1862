// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.

// Package logger provides a thin, leveled wrapper around go-logging shared
// by every long-running component of the profiler.
package logger

import (
	"os"
	"time"

	"github.com/op/go-logging"
	"github.com/urfave/cli/v2"
)

// Logger is the type every component depends on instead of the global
// go-logging package state, so tests can swap in a silent/captured logger.
type Logger = *logging.Logger

// LogLevelFlag is the shared --log-level flag used by cmd/starknet-replay.
var LogLevelFlag = cli.StringFlag{
	Name:    "log-level",
	Usage:   "sets the log level (CRITICAL|ERROR|WARNING|NOTICE|INFO|DEBUG)",
	Aliases: []string{"ll"},
	Value:   "INFO",
}

var backendOnce = logging.NewLogBackend(os.Stderr, "", 0)

// NewLogger creates a new named logger at the requested level. An invalid
// level falls back to INFO rather than failing - this is a diagnostics
// aid, not something that should ever abort a replay run.
func NewLogger(level string, module string) *logging.Logger {
	log := logging.MustGetLogger(module)

	formatter := logging.MustStringFormatter(
		`%{color}%{time:15:04:05.000} %{shortfunc} [%{module}] %{level:.5s}%{color:reset} %{message}`,
	)
	backendFormatter := logging.NewBackendFormatter(backendOnce, formatter)
	leveled := logging.AddModuleLevel(backendFormatter)

	lvl, err := logging.LogLevel(level)
	if err != nil {
		lvl = logging.INFO
	}
	leveled.SetLevel(lvl, module)

	log.SetBackend(leveled)
	return log
}

// ParseTime splits a duration into whole hours, minutes, and seconds -
// used by progress-reporting extensions to render "1h01m01s"-style output.
func ParseTime(elapsed time.Duration) (hours, minutes, seconds uint32) {
	total := uint32(elapsed.Seconds())
	hours = total / 3600
	minutes = (total % 3600) / 60
	seconds = total % 60
	return hours, minutes, seconds
}
