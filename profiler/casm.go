// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package profiler

import "github.com/0xsoniclabs/starknet-replay/sierra"

// CasmInstruction is one lowered CASM instruction. EncodingLen is the
// byte length of its memory encoding, which is how the VM's PC counter
// advances between instructions.
type CasmInstruction struct {
	EncodingLen int
}

// StatementInfo records, for one Sierra statement, where its lowering
// begins: the index of the first CASM instruction it produced, and the
// byte offset of that instruction within the program.
type StatementInfo struct {
	CasmInstructionIdx int
	CodeOffset         int
}

// CasmProgram is the result of lowering a Sierra program: its ordered
// CASM instructions and, per Sierra statement index, where that
// statement's lowering begins.
type CasmProgram struct {
	Instructions  []CasmInstruction
	StatementInfo []StatementInfo // indexed by sierra.StatementIdx
}

// MetadataConfig configures ap-change and gas metadata computation ahead
// of Sierra-to-CASM lowering. It is opaque to the profiler; a Compiler
// implementation interprets it.
type MetadataConfig struct {
	// SkipGasMetadata disables gas-usage metadata computation, useful
	// when profiling a program compiled without gas accounting enabled.
	SkipGasMetadata bool
}

// Compiler lowers a Sierra program to CASM. Sierra-to-CASM compilation -
// ap-change solving, gas metadata computation, and instruction selection
// - is a large, self-contained subsystem with no natural seam inside the
// profiler itself; SierraProfiler depends on this interface instead of
// embedding a lowering pipeline, the same way the teacher's executor
// depends on a Processor interface instead of embedding a VM.
//
// spec.md §4.2 distinguishes two construction failure modes: a
// MetadataError (ap-change or gas metadata computation failed, ahead of
// instruction selection) and a CompilationError (lowering itself
// failed). An implementation reports the former by marking its
// returned error with ErrMetadata (errors.Mark); New treats any other
// non-nil error as a CompilationError and marks it with ErrCompilation
// itself.
//
//go:generate mockgen -source casm.go -destination compiler_mock.go -package profiler
type Compiler interface {
	Compile(program *sierra.Program, cfg MetadataConfig) (*CasmProgram, error)
}
