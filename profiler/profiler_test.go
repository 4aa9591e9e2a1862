// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.

package profiler

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xsoniclabs/starknet-replay/sierra"
)

// stubCompiler lowers each Sierra statement to exactly one CASM
// instruction of a fixed encoding length, in statement order. It is a
// stand-in for a real Sierra-to-CASM compiler, which has no Go
// ecosystem equivalent.
type stubCompiler struct {
	encodingLen int
	err         error
	metadataErr error
}

func (c stubCompiler) Compile(program *sierra.Program, _ MetadataConfig) (*CasmProgram, error) {
	if c.metadataErr != nil {
		return nil, errors.Mark(c.metadataErr, ErrMetadata)
	}
	if c.err != nil {
		return nil, c.err
	}
	length := c.encodingLen
	if length == 0 {
		length = 2
	}
	casm := &CasmProgram{
		Instructions:  make([]CasmInstruction, len(program.Statements)),
		StatementInfo: make([]StatementInfo, len(program.Statements)),
	}
	offset := 0
	for i := range program.Statements {
		casm.Instructions[i] = CasmInstruction{EncodingLen: length}
		casm.StatementInfo[i] = StatementInfo{CasmInstructionIdx: i, CodeOffset: offset}
		offset += length
	}
	return casm, nil
}

func threeStatementProgram() *sierra.Program {
	return &sierra.Program{
		LibfuncDeclarations: []sierra.LibfuncDeclaration{
			{Id: 0, LongId: sierra.LongId{GenericId: "felt252_add"}, DebugName: "felt252_add"},
			{Id: 1, LongId: sierra.LongId{GenericId: "store_temp"}, DebugName: "store_temp<felt252>"},
		},
		Statements: []sierra.Statement{
			{Invocation: &sierra.Invocation{LibfuncId: 0, Branches: []sierra.BranchInfo{{Target: 1, Fallthrough: true}}}},
			{Invocation: &sierra.Invocation{LibfuncId: 1, Branches: []sierra.BranchInfo{{Target: 2, Fallthrough: true}}}},
			{Return: &sierra.ReturnStatement{}},
		},
		Funcs: []sierra.Function{
			{Id: 0, Name: "main", EntryPoint: 0},
		},
	}
}

func TestNew_BuildsCompiledStatementsInPCOrder(t *testing.T) {
	p := threeStatementProgram()
	prof, err := New(p, Options{Compiler: stubCompiler{encodingLen: 2}})
	require.NoError(t, err)

	stmts := prof.Statements()
	require.Len(t, stmts, 3)
	assert.Equal(t, []int{1, 3, 5}, []int{stmts[0].StartingPC, stmts[1].StartingPC, stmts[2].StartingPC})
	for i, s := range stmts {
		assert.Equal(t, sierra.StatementIdx(i), s.StatementIdx)
	}
}

// TestNew_PCMapCompleteness is invariant 2 from spec.md §8: every PC in
// the compiled program's valid range maps to exactly one
// Compiled-Statement whose StartingPC equals it.
func TestNew_PCMapCompleteness(t *testing.T) {
	p := threeStatementProgram()
	prof, err := New(p, Options{Compiler: stubCompiler{encodingLen: 2}})
	require.NoError(t, err)

	seen := make(map[int]int)
	for _, s := range prof.Statements() {
		seen[s.StartingPC]++
	}
	for pc, count := range seen {
		assert.Equalf(t, 1, count, "pc %d mapped by %d statements", pc, count)
	}
	assert.Len(t, seen, 3)
}

func TestNew_CompilerErrorWrapped(t *testing.T) {
	p := threeStatementProgram()
	_, err := New(p, Options{Compiler: stubCompiler{err: assert.AnError}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCompilation)
}

// TestNew_MetadataErrorPreserved is spec.md §4.2's second construction
// failure mode: a Compiler signaling a metadata failure (ap-change/gas)
// must surface as ErrMetadata, not get reclassified as ErrCompilation.
func TestNew_MetadataErrorPreserved(t *testing.T) {
	p := threeStatementProgram()
	_, err := New(p, Options{Compiler: stubCompiler{metadataErr: assert.AnError}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMetadata)
	assert.NotErrorIs(t, err, ErrCompilation)
}

func TestNew_RequiresCompiler(t *testing.T) {
	_, err := New(threeStatementProgram(), Options{})
	require.Error(t, err)
}

func TestCollectProfilingInfo_PinnedHeaderOffset(t *testing.T) {
	p := threeStatementProgram()
	offset := 100
	prof, err := New(p, Options{Compiler: stubCompiler{encodingLen: 2}, HeaderOffset: &offset})
	require.NoError(t, err)

	weights, err := prof.CollectProfilingInfo([]int{101, 101, 103, 105})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), weights[0])
	assert.Equal(t, uint64(1), weights[1])
	assert.Equal(t, uint64(1), weights[2])
}

func TestCollectProfilingInfo_IgnoresOutOfRangePCs(t *testing.T) {
	p := threeStatementProgram()
	offset := 0
	prof, err := New(p, Options{Compiler: stubCompiler{encodingLen: 2}, HeaderOffset: &offset})
	require.NoError(t, err)

	weights, err := prof.CollectProfilingInfo([]int{0, 1, 999, -5})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), weights[0])
	assert.Len(t, weights, 1)
}

func TestCollectProfilingInfo_EmptyTraceNeverFails(t *testing.T) {
	p := threeStatementProgram()
	offset := 0
	prof, err := New(p, Options{Compiler: stubCompiler{encodingLen: 2}, HeaderOffset: &offset})
	require.NoError(t, err)

	weights, err := prof.CollectProfilingInfo(nil)
	require.NoError(t, err)
	assert.Empty(t, weights)
}

func TestCollectProfilingInfo_DerivesHeaderOffsetWhenNil(t *testing.T) {
	p := threeStatementProgram()
	prof, err := New(p, Options{Compiler: stubCompiler{encodingLen: 2}})
	require.NoError(t, err)

	// Program occupies local PCs [1,6]; a trace with a 50-byte header
	// ending exactly at the program's last byte is [51, 56].
	weights, err := prof.CollectProfilingInfo([]int{51, 53, 55})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), weights[0])
	assert.Equal(t, uint64(1), weights[1])
	assert.Equal(t, uint64(1), weights[2])
}

// TestCollectProfilingInfo_OverflowFails checks the overflow guard that
// CollectProfilingInfo accumulates every statement count through
// (addChecked); a trace long enough to overflow a uint64 counter cannot
// be fed in directly, so the guard is exercised on a saturated count.
func TestCollectProfilingInfo_OverflowFails(t *testing.T) {
	p := threeStatementProgram()
	offset := 0
	_, err := New(p, Options{Compiler: stubCompiler{encodingLen: 2}, HeaderOffset: &offset})
	require.NoError(t, err)

	weights := map[sierra.StatementIdx]uint64{0: ^uint64(0)}
	_, err = addChecked(weights[0], 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestUnpackProfilingInfo_CreditsLibfuncDebugNames(t *testing.T) {
	p := threeStatementProgram()
	offset := 0
	prof, err := New(p, Options{Compiler: stubCompiler{encodingLen: 2}, HeaderOffset: &offset})
	require.NoError(t, err)

	byName, err := prof.UnpackProfilingInfo(map[sierra.StatementIdx]uint64{
		0: 5,
		1: 3,
		2: 100, // Return statement, must be dropped
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{
		"felt252_add":         5,
		"store_temp<felt252>": 3,
	}, byName)
}

func TestUnpackProfilingInfo_SkipsZeroWeights(t *testing.T) {
	p := threeStatementProgram()
	offset := 0
	prof, err := New(p, Options{Compiler: stubCompiler{encodingLen: 2}, HeaderOffset: &offset})
	require.NoError(t, err)

	byName, err := prof.UnpackProfilingInfo(map[sierra.StatementIdx]uint64{0: 0})
	require.NoError(t, err)
	assert.Empty(t, byName)
}

func TestUnpackProfilingInfo_UnknownLibfuncFails(t *testing.T) {
	p := threeStatementProgram()
	p.Statements[0] = sierra.Statement{Invocation: &sierra.Invocation{LibfuncId: 99}}
	offset := 0
	prof, err := New(p, Options{Compiler: stubCompiler{encodingLen: 2}, HeaderOffset: &offset})
	require.NoError(t, err)

	_, err = prof.UnpackProfilingInfo(map[sierra.StatementIdx]uint64{0: 1})
	require.Error(t, err)
}
