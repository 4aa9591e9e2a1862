// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package profiler

import "github.com/cockroachdb/errors"

// ErrMetadata is returned when ap-change or gas metadata computation
// fails ahead of Sierra-to-CASM lowering.
var ErrMetadata = errors.New("profiler: metadata computation failed")

// ErrCompilation is returned when Sierra-to-CASM lowering itself fails.
var ErrCompilation = errors.New("profiler: sierra to casm compilation failed")

// ErrOverflow is returned when a weight accumulation would overflow its
// counter. Trace lengths are expected to stay far below this in
// practice; hitting it means something upstream is feeding bad data.
var ErrOverflow = errors.New("profiler: counter overflow")
