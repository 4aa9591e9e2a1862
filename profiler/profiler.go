// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package profiler implements the Sierra profiler: given a compiled
// Cairo contract and a flat trace of visited VM program counters, it
// reconstructs which Sierra statement each PC belongs to and attributes
// weight to the concrete libfunc invoked at that statement.
package profiler

import (
	"github.com/cockroachdb/errors"

	"github.com/0xsoniclabs/starknet-replay/sierra"
)

// CompiledStatement ties one Sierra statement to the CASM instruction it
// lowered to, the PC at which that instruction begins, and the byte
// length of its encoding. The full slice of these, built once per
// (class-hash, block) pair, is the profiler's only lookup structure.
type CompiledStatement struct {
	StatementIdx       sierra.StatementIdx
	CasmInstructionIdx int
	EncodingLen        int
	StartingPC         int
}

// Options configures a SierraProfiler.
type Options struct {
	// Compiler lowers the Sierra program to CASM. Required.
	Compiler Compiler
	// Metadata is passed through to Compiler.Compile.
	Metadata MetadataConfig
	// HeaderOffset is added to every Compiled-Statement's StartingPC
	// before comparing against trace PCs, to account for the fixed
	// VM-trace header that precedes the program's own instructions.
	// When nil, CollectProfilingInfo derives it per-call from the
	// supplied trace (see deriveHeaderOffset) - a heuristic that only
	// holds for traces ending at the program's last statement. Callers
	// replaying full VM traces should leave this nil; callers driving
	// the profiler outside a full VM trace (e.g. unit tests feeding
	// already-header-relative PCs) should pin it, typically to 0.
	HeaderOffset *int
}

// SierraProfiler maps VM program counters to Sierra statements and
// libfunc weights for one compiled Sierra program.
type SierraProfiler struct {
	program      *sierra.Program
	idx          *sierra.Index
	casm         *CasmProgram
	statements   []CompiledStatement
	headerOffset *int
}

// New compiles the given Sierra program to CASM and builds the
// Compiled-Statement lookup table. program is expected to have already
// had its libfunc/type ids replaced (see package idreplacer) so
// UnpackProfilingInfo can report human-readable libfunc names.
func New(program *sierra.Program, opts Options) (*SierraProfiler, error) {
	if opts.Compiler == nil {
		return nil, errors.New("profiler: Options.Compiler is required")
	}

	casm, err := opts.Compiler.Compile(program, opts.Metadata)
	if err != nil {
		if errors.Is(err, ErrMetadata) {
			return nil, errors.Wrap(err, "computing sierra metadata")
		}
		return nil, errors.Mark(errors.Wrap(err, "compiling sierra program"), ErrCompilation)
	}

	statements, err := buildCompiledStatements(casm)
	if err != nil {
		return nil, err
	}

	return &SierraProfiler{
		program:      program,
		idx:          sierra.BuildIndex(program),
		casm:         casm,
		statements:   statements,
		headerOffset: opts.HeaderOffset,
	}, nil
}

// buildCompiledStatements implements the construction algorithm of
// spec.md §4.2: walk CASM instructions in order, maintaining a running
// 1-based PC counter, and emit one record per Sierra statement whose
// statement-info points at the current instruction.
func buildCompiledStatements(casm *CasmProgram) ([]CompiledStatement, error) {
	byInstruction := make(map[int][]sierra.StatementIdx, len(casm.StatementInfo))
	for stmtIdx, info := range casm.StatementInfo {
		byInstruction[info.CasmInstructionIdx] = append(byInstruction[info.CasmInstructionIdx], sierra.StatementIdx(stmtIdx))
	}

	var out []CompiledStatement
	pc := 1
	for instrIdx, instr := range casm.Instructions {
		for _, stmtIdx := range byInstruction[instrIdx] {
			out = append(out, CompiledStatement{
				StatementIdx:       stmtIdx,
				CasmInstructionIdx: instrIdx,
				EncodingLen:        instr.EncodingLen,
				StartingPC:         pc,
			})
		}
		pc += instr.EncodingLen
	}
	return out, nil
}

// CollectProfilingInfo maps a run's PC trace to per-statement counts.
// PCs outside the compiled program's range (VM header/footer, builtin
// tables) are simply absent from the lookup table and are ignored - this
// never fails on valid input, not even an empty trace.
func (p *SierraProfiler) CollectProfilingInfo(pcs []int) (map[sierra.StatementIdx]uint64, error) {
	offset := 0
	if p.headerOffset != nil {
		offset = *p.headerOffset
	} else {
		offset = p.deriveHeaderOffset(pcs)
	}

	byPC := make(map[int][]sierra.StatementIdx, len(p.statements))
	for _, s := range p.statements {
		byPC[s.StartingPC] = append(byPC[s.StartingPC], s.StatementIdx)
	}

	weights := make(map[sierra.StatementIdx]uint64)
	for _, rawPC := range pcs {
		localPC := rawPC - offset
		for _, stmtIdx := range byPC[localPC] {
			next, err := addChecked(weights[stmtIdx], 1)
			if err != nil {
				return nil, err
			}
			weights[stmtIdx] = next
		}
	}
	return weights, nil
}

// deriveHeaderOffset implements the spec's documented (and explicitly
// fragile, see spec.md §9) fallback: it assumes the trace ends exactly
// at the program's final instruction, so pcs.last() is that
// instruction's starting PC, and the header offset is whatever must be
// subtracted from it to land on the instruction's local StartingPC.
func (p *SierraProfiler) deriveHeaderOffset(pcs []int) int {
	if len(pcs) == 0 || len(p.statements) == 0 {
		return 0
	}
	last := p.statements[len(p.statements)-1]
	return pcs[len(pcs)-1] - last.StartingPC
}

// UnpackProfilingInfo turns per-statement weights into per-libfunc
// weights, crediting each invocation statement's count to its (already
// id-replaced) libfunc debug name. Return statements contribute nothing.
func (p *SierraProfiler) UnpackProfilingInfo(statementWeights map[sierra.StatementIdx]uint64) (map[string]uint64, error) {
	out := make(map[string]uint64)
	for stmtIdx, count := range statementWeights {
		if count == 0 {
			continue
		}
		if int(stmtIdx) < 0 || int(stmtIdx) >= len(p.program.Statements) {
			return nil, errors.Newf("profiler: statement index %d out of range", stmtIdx)
		}
		stmt := p.program.Statements[stmtIdx]
		if stmt.IsReturn() {
			continue
		}
		decl, ok := p.idx.LibfuncsByID[stmt.Invocation.LibfuncId]
		if !ok {
			return nil, errors.Newf("profiler: statement %d references undeclared libfunc %d", stmtIdx, stmt.Invocation.LibfuncId)
		}
		name := decl.DebugName
		if name == "" {
			name = decl.LongId.String()
		}
		next, err := addChecked(out[name], count)
		if err != nil {
			return nil, err
		}
		out[name] = next
	}
	return out, nil
}

// Statements exposes the Compiled-Statement lookup table, mostly for
// tests asserting PC-map completeness (spec.md §8 invariant 2).
func (p *SierraProfiler) Statements() []CompiledStatement {
	return p.statements
}

func addChecked(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, errors.Wrapf(ErrOverflow, "adding %d to %d", b, a)
	}
	return sum, nil
}
