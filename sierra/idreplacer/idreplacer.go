// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package idreplacer rewrites the opaque numeric ids of a Sierra program's
// libfunc and type declarations into human-readable debug names, by
// recursively re-expanding each declaration's long id (generic id +
// generic arguments). Statements and user function ids are left
// untouched - function names are not recoverable once a contract is
// deployed, only the libfunc/type vocabulary compiled into it.
package idreplacer

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/0xsoniclabs/starknet-replay/sierra"
)

// ErrCycleBreaker is returned when a CycleBreaker type long-id is
// encountered. Deployed contracts never exercise CycleBreaker, so this is
// treated as a hard failure rather than something to work around.
var ErrCycleBreaker = errors.New("idreplacer: CycleBreaker type ids are not supported")

// ErrUnknownID is returned when a declaration's generic argument
// references a declaration id with no matching entry in the program's
// tables. Statements are not checked.
var ErrUnknownID = errors.New("idreplacer: reference to undeclared id")

// ErrCyclicReference guards against an unexpected (non-CycleBreaker) type
// reference cycle; such programs would not compile in the first place, so
// this only fires on malformed input.
var ErrCyclicReference = errors.New("idreplacer: cyclic type reference")

const cycleBreakerGenericId = "CycleBreaker"
const functionCallPrefix = "function_call"
const enumGenericId = "Enum"
const structGenericId = "Struct"
const tupleGenericId = "Tuple"
const unitGenericId = "Unit"

// Replace returns a new program in which every concrete libfunc and type
// declaration's DebugName has been set from its long id. The input
// program is not modified. Calling Replace on the result is a no-op
// (DebugName is always recomputed from the unchanged LongId fields, never
// from a prior DebugName), satisfying idempotence.
func Replace(p *sierra.Program) (*sierra.Program, error) {
	out := p.Clone()
	idx := sierra.BuildIndex(out)

	r := &replacer{idx: idx, typeNames: make(map[sierra.ConcreteTypeId]string), libfuncNames: make(map[sierra.ConcreteLibfuncId]string)}

	for i := range out.TypeDeclarations {
		name, err := r.typeName(out.TypeDeclarations[i].Id, nil)
		if err != nil {
			return nil, err
		}
		out.TypeDeclarations[i].DebugName = name
	}
	for i := range out.LibfuncDeclarations {
		name, err := r.libfuncName(out.LibfuncDeclarations[i].Id)
		if err != nil {
			return nil, err
		}
		out.LibfuncDeclarations[i].DebugName = name
	}
	return out, nil
}

type replacer struct {
	idx          *sierra.Index
	typeNames    map[sierra.ConcreteTypeId]string
	libfuncNames map[sierra.ConcreteLibfuncId]string
	visiting     map[sierra.ConcreteTypeId]bool
}

// typeName computes (and memoizes) the fully expanded debug name of a
// type declaration. visiting detects accidental cycles outside the
// explicitly-unsupported CycleBreaker case.
func (r *replacer) typeName(id sierra.ConcreteTypeId, visiting map[sierra.ConcreteTypeId]bool) (string, error) {
	if name, ok := r.typeNames[id]; ok {
		return name, nil
	}
	if visiting == nil {
		visiting = make(map[sierra.ConcreteTypeId]bool)
	}
	if visiting[id] {
		return "", errors.Wrapf(ErrCyclicReference, "type id %d", id)
	}
	visiting[id] = true
	defer delete(visiting, id)

	decl, ok := r.idx.TypesByID[id]
	if !ok {
		return "", errors.Wrapf(ErrUnknownID, "type id %d", id)
	}
	if decl.LongId.GenericId == cycleBreakerGenericId {
		return "", errors.Wrapf(ErrCycleBreaker, "type id %d", id)
	}

	argsText := make([]string, len(decl.LongId.GenericArgs))
	for i, a := range decl.LongId.GenericArgs {
		text, err := r.argText(a, visiting)
		if err != nil {
			return "", err
		}
		argsText[i] = text
	}

	var name string
	switch decl.LongId.GenericId {
	case enumGenericId, structGenericId:
		name = promoteUserType(argsText)
	default:
		name = joinGenericId(decl.LongId.GenericId, argsText)
	}

	r.typeNames[id] = name
	return name, nil
}

// promoteUserType implements the Enum/Struct id-replacement rule: the
// first generic argument (a user-type name) is promoted to become the
// type's own displayed generic id. A promoted name of "Tuple" is
// special-cased: it keeps its remaining arguments, renaming to "Unit"
// when none remain.
func promoteUserType(argsText []string) string {
	if len(argsText) == 0 {
		return ""
	}
	promoted := argsText[0]
	if promoted != tupleGenericId {
		return promoted
	}
	tail := argsText[1:]
	if len(tail) == 0 {
		return unitGenericId
	}
	return joinGenericId(tupleGenericId, tail)
}

// libfuncName computes (and memoizes) the fully expanded debug name of a
// libfunc declaration. function_call libfuncs drop their generic
// arguments entirely - call sites are not distinguished by target.
func (r *replacer) libfuncName(id sierra.ConcreteLibfuncId) (string, error) {
	if name, ok := r.libfuncNames[id]; ok {
		return name, nil
	}
	decl, ok := r.idx.LibfuncsByID[id]
	if !ok {
		return "", errors.Wrapf(ErrUnknownID, "libfunc id %d", id)
	}
	if strings.HasPrefix(decl.LongId.GenericId, functionCallPrefix) {
		r.libfuncNames[id] = decl.LongId.GenericId
		return decl.LongId.GenericId, nil
	}

	argsText := make([]string, len(decl.LongId.GenericArgs))
	for i, a := range decl.LongId.GenericArgs {
		text, err := r.argText(a, nil)
		if err != nil {
			return "", err
		}
		argsText[i] = text
	}

	name := joinGenericId(decl.LongId.GenericId, argsText)
	r.libfuncNames[id] = name
	return name, nil
}

// argText renders one generic argument, recursing through typeName/
// libfuncName for Type/Libfunc-kind arguments so nested generics (e.g.
// store_temp<Box<Box<felt252>>>) are fully expanded.
func (r *replacer) argText(a sierra.GenericArg, visiting map[sierra.ConcreteTypeId]bool) (string, error) {
	switch a.Kind {
	case sierra.GenericArgType:
		return r.typeName(a.TypeId, visiting)
	case sierra.GenericArgValue:
		return strconv.FormatInt(a.Value, 10), nil
	case sierra.GenericArgUserType:
		return a.UserType, nil
	case sierra.GenericArgUserFunc:
		return "user@" + strconv.FormatUint(uint64(a.UserFunc), 10), nil
	case sierra.GenericArgLibfunc:
		return r.libfuncName(a.LibfuncId)
	default:
		return "", errors.Newf("idreplacer: unknown generic arg kind %d", a.Kind)
	}
}

func joinGenericId(genericId string, argsText []string) string {
	if len(argsText) == 0 {
		return genericId
	}
	return genericId + "<" + strings.Join(argsText, ", ") + ">"
}
