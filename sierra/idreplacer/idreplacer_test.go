// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.

package idreplacer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xsoniclabs/starknet-replay/sierra"
)

func felt252Type(id sierra.ConcreteTypeId) sierra.TypeDeclaration {
	return sierra.TypeDeclaration{Id: id, LongId: sierra.LongId{GenericId: "felt252"}}
}

func typeArg(id sierra.ConcreteTypeId) sierra.GenericArg {
	return sierra.GenericArg{Kind: sierra.GenericArgType, TypeId: id}
}

func valueArg(v int64) sierra.GenericArg {
	return sierra.GenericArg{Kind: sierra.GenericArgValue, Value: v}
}

func userTypeArg(name string) sierra.GenericArg {
	return sierra.GenericArg{Kind: sierra.GenericArgUserType, UserType: name}
}

func TestReplace_SimpleLibfuncsAndConstArgs(t *testing.T) {
	const felt252Id sierra.ConcreteTypeId = 0
	const constFeltId sierra.ConcreteTypeId = 1

	p := &sierra.Program{
		TypeDeclarations: []sierra.TypeDeclaration{
			felt252Type(felt252Id),
			{Id: constFeltId, LongId: sierra.LongId{GenericId: "Const", GenericArgs: []sierra.GenericArg{typeArg(felt252Id), valueArg(2)}}},
		},
		LibfuncDeclarations: []sierra.LibfuncDeclaration{
			{Id: 0, LongId: sierra.LongId{GenericId: "felt252_add"}},
			{Id: 1, LongId: sierra.LongId{GenericId: "store_temp", GenericArgs: []sierra.GenericArg{typeArg(felt252Id)}}},
			{Id: 2, LongId: sierra.LongId{GenericId: "const_as_immediate", GenericArgs: []sierra.GenericArg{typeArg(constFeltId)}}},
		},
	}

	out, err := Replace(p)
	require.NoError(t, err)

	assert.Equal(t, "felt252_add", out.LibfuncDeclarations[0].DebugName)
	assert.Equal(t, "store_temp<felt252>", out.LibfuncDeclarations[1].DebugName)
	assert.Equal(t, "const_as_immediate<Const<felt252, 2>>", out.LibfuncDeclarations[2].DebugName)
}

func TestReplace_NestedGenericsMemoized(t *testing.T) {
	const felt252Id sierra.ConcreteTypeId = 0
	const boxFeltId sierra.ConcreteTypeId = 1
	const boxBoxFeltId sierra.ConcreteTypeId = 2

	p := &sierra.Program{
		TypeDeclarations: []sierra.TypeDeclaration{
			felt252Type(felt252Id),
			{Id: boxFeltId, LongId: sierra.LongId{GenericId: "Box", GenericArgs: []sierra.GenericArg{typeArg(felt252Id)}}},
			{Id: boxBoxFeltId, LongId: sierra.LongId{GenericId: "Box", GenericArgs: []sierra.GenericArg{typeArg(boxFeltId)}}},
		},
		LibfuncDeclarations: []sierra.LibfuncDeclaration{
			{Id: 0, LongId: sierra.LongId{GenericId: "store_temp", GenericArgs: []sierra.GenericArg{typeArg(boxBoxFeltId)}}},
		},
	}

	out, err := Replace(p)
	require.NoError(t, err)
	assert.Equal(t, "store_temp<Box<Box<felt252>>>", out.LibfuncDeclarations[0].DebugName)
}

func TestReplace_FunctionCallDropsGenericArgs(t *testing.T) {
	const felt252Id sierra.ConcreteTypeId = 0
	p := &sierra.Program{
		TypeDeclarations: []sierra.TypeDeclaration{felt252Type(felt252Id)},
		LibfuncDeclarations: []sierra.LibfuncDeclaration{
			{Id: 0, LongId: sierra.LongId{GenericId: "function_call", GenericArgs: []sierra.GenericArg{
				{Kind: sierra.GenericArgUserFunc, UserFunc: 42},
			}}},
			{Id: 1, LongId: sierra.LongId{GenericId: "function_call<to_be_dropped>", GenericArgs: []sierra.GenericArg{
				{Kind: sierra.GenericArgUserFunc, UserFunc: 7},
			}}},
		},
	}

	out, err := Replace(p)
	require.NoError(t, err)
	assert.Equal(t, "function_call", out.LibfuncDeclarations[0].DebugName)
	assert.Equal(t, "function_call<to_be_dropped>", out.LibfuncDeclarations[1].DebugName)
}

func TestReplace_EnumAndStructPromotion(t *testing.T) {
	p := &sierra.Program{
		TypeDeclarations: []sierra.TypeDeclaration{
			{Id: 0, LongId: sierra.LongId{GenericId: "Enum", GenericArgs: []sierra.GenericArg{userTypeArg("my_contract::MyEnum")}}},
			{Id: 1, LongId: sierra.LongId{GenericId: "Struct", GenericArgs: []sierra.GenericArg{userTypeArg("my_contract::MyStruct"), valueArg(1)}}},
		},
	}

	out, err := Replace(p)
	require.NoError(t, err)
	assert.Equal(t, "my_contract::MyEnum", out.TypeDeclarations[0].DebugName)
	assert.Equal(t, "my_contract::MyStruct", out.TypeDeclarations[1].DebugName)
}

func TestReplace_TuplePromotion(t *testing.T) {
	const feltId sierra.ConcreteTypeId = 0
	const u32Id sierra.ConcreteTypeId = 1
	p := &sierra.Program{
		TypeDeclarations: []sierra.TypeDeclaration{
			felt252Type(feltId),
			{Id: u32Id, LongId: sierra.LongId{GenericId: "u32"}},
			{Id: 2, LongId: sierra.LongId{GenericId: "Struct", GenericArgs: []sierra.GenericArg{
				userTypeArg("Tuple"), typeArg(feltId), typeArg(u32Id),
			}}},
			{Id: 3, LongId: sierra.LongId{GenericId: "Struct", GenericArgs: []sierra.GenericArg{
				userTypeArg("Tuple"),
			}}},
		},
	}

	out, err := Replace(p)
	require.NoError(t, err)
	assert.Equal(t, "Tuple<felt252, u32>", out.TypeDeclarations[2].DebugName)
	assert.Equal(t, "Unit", out.TypeDeclarations[3].DebugName)
}

func TestReplace_CycleBreakerUnsupported(t *testing.T) {
	p := &sierra.Program{
		TypeDeclarations: []sierra.TypeDeclaration{
			{Id: 0, LongId: sierra.LongId{GenericId: "CycleBreaker"}},
		},
	}
	_, err := Replace(p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycleBreaker)
}

func TestReplace_UnknownIDFails(t *testing.T) {
	p := &sierra.Program{
		LibfuncDeclarations: []sierra.LibfuncDeclaration{
			{Id: 0, LongId: sierra.LongId{GenericId: "store_temp", GenericArgs: []sierra.GenericArg{typeArg(99)}}},
		},
	}
	_, err := Replace(p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownID)
}

// TestReplace_Idempotent is invariant 1 from spec.md §8: applying the
// replacer twice yields the same program as applying it once.
func TestReplace_Idempotent(t *testing.T) {
	const felt252Id sierra.ConcreteTypeId = 0
	const constFeltId sierra.ConcreteTypeId = 1
	p := &sierra.Program{
		TypeDeclarations: []sierra.TypeDeclaration{
			felt252Type(felt252Id),
			{Id: constFeltId, LongId: sierra.LongId{GenericId: "Const", GenericArgs: []sierra.GenericArg{typeArg(felt252Id), valueArg(3)}}},
			{Id: 2, LongId: sierra.LongId{GenericId: "Enum", GenericArgs: []sierra.GenericArg{userTypeArg("pkg::E")}}},
		},
		LibfuncDeclarations: []sierra.LibfuncDeclaration{
			{Id: 0, LongId: sierra.LongId{GenericId: "const_as_immediate", GenericArgs: []sierra.GenericArg{typeArg(constFeltId)}}},
			{Id: 1, LongId: sierra.LongId{GenericId: "function_call", GenericArgs: []sierra.GenericArg{{Kind: sierra.GenericArgUserFunc, UserFunc: 1}}}},
		},
	}

	once, err := Replace(p)
	require.NoError(t, err)
	twice, err := Replace(once)
	require.NoError(t, err)

	require.Equal(t, len(once.TypeDeclarations), len(twice.TypeDeclarations))
	for i := range once.TypeDeclarations {
		assert.Equal(t, once.TypeDeclarations[i].DebugName, twice.TypeDeclarations[i].DebugName)
	}
	require.Equal(t, len(once.LibfuncDeclarations), len(twice.LibfuncDeclarations))
	for i := range once.LibfuncDeclarations {
		assert.Equal(t, once.LibfuncDeclarations[i].DebugName, twice.LibfuncDeclarations[i].DebugName)
	}
}
