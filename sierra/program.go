// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package sierra holds the Sierra program data model shared by the id
// replacer and the profiler: statements, concrete libfunc/type
// declarations, and the "long id" (generic id + generic arguments) each
// declaration carries.
package sierra

import (
	"fmt"
	"strconv"
	"strings"
)

// ConcreteLibfuncId identifies a libfunc declaration within a program.
type ConcreteLibfuncId uint64

// ConcreteTypeId identifies a type declaration within a program.
type ConcreteTypeId uint64

// FunctionId identifies a user function. Function names are never
// recoverable post-deployment, so the id replacer leaves these untouched.
type FunctionId uint64

// VarId identifies an SSA-like local variable referenced by statement args.
type VarId uint64

// GenericArgKind discriminates the variants of GenericArg.
type GenericArgKind int

const (
	// GenericArgType references another declared concrete type.
	GenericArgType GenericArgKind = iota
	// GenericArgValue is a plain integer constant (e.g. Const<felt252, 2>'s "2").
	GenericArgValue
	// GenericArgUserType is a textual user-type name (e.g. an Enum/Struct's own name).
	GenericArgUserType
	// GenericArgUserFunc references a user function, left untouched by the id replacer.
	GenericArgUserFunc
	// GenericArgLibfunc references another declared concrete libfunc.
	GenericArgLibfunc
)

// GenericArg is one argument of a LongId. Exactly one field is valid,
// selected by Kind.
type GenericArg struct {
	Kind      GenericArgKind
	TypeId    ConcreteTypeId
	Value     int64
	UserType  string
	UserFunc  FunctionId
	LibfuncId ConcreteLibfuncId
}

// LongId is a generic id plus its generic argument list, e.g.
// store_temp<felt252> has GenericId "store_temp" and one type argument.
type LongId struct {
	GenericId   string
	GenericArgs []GenericArg
}

// Clone returns a deep copy, so callers can mutate the result of
// expansion without aliasing the original declaration table.
func (l LongId) Clone() LongId {
	args := make([]GenericArg, len(l.GenericArgs))
	copy(args, l.GenericArgs)
	return LongId{GenericId: l.GenericId, GenericArgs: args}
}

// String renders the long id in Cairo's textual form: GenericId, or
// GenericId<arg1, arg2, ...> when there are generic arguments. Each
// GenericArg is rendered by GenericArg.String, so type and libfunc
// arguments appear as bare numeric ids, not resolved names.
func (l LongId) String() string {
	if len(l.GenericArgs) == 0 {
		return l.GenericId
	}
	parts := make([]string, len(l.GenericArgs))
	for i, a := range l.GenericArgs {
		parts[i] = a.String()
	}
	return l.GenericId + "<" + strings.Join(parts, ", ") + ">"
}

// String renders a GenericArg using only information carried by the arg
// itself (no program lookup). Type/Libfunc arguments render as their
// bare numeric id; the id replacer is what upgrades these to debug names
// by walking the owning program's declaration tables.
func (a GenericArg) String() string {
	switch a.Kind {
	case GenericArgType:
		return fmt.Sprintf("ty%d", a.TypeId)
	case GenericArgValue:
		return strconv.FormatInt(a.Value, 10)
	case GenericArgUserType:
		return a.UserType
	case GenericArgUserFunc:
		return fmt.Sprintf("user@%d", a.UserFunc)
	case GenericArgLibfunc:
		return fmt.Sprintf("lf%d", a.LibfuncId)
	default:
		return "?"
	}
}

// TypeDeclaration is a concrete type id together with its long id and,
// once the id replacer has run, a human-readable debug name.
type TypeDeclaration struct {
	Id        ConcreteTypeId
	LongId    LongId
	DebugName string
}

// LibfuncDeclaration is a concrete libfunc id together with its long id
// and, once the id replacer has run, a human-readable debug name.
type LibfuncDeclaration struct {
	Id        ConcreteLibfuncId
	LongId    LongId
	DebugName string
}

// Function is a user function entry point. Function ids are not
// recoverable post-deployment and are carried through unchanged.
type Function struct {
	Id         FunctionId
	Name       string
	EntryPoint StatementIdx
}

// StatementIdx is the index of a statement within a program's flat
// statement list.
type StatementIdx int

// BranchInfo describes one possible continuation of an invocation.
type BranchInfo struct {
	Target StatementIdx
	// Fallthrough is true for the (at most one) branch that falls
	// through to the next statement rather than jumping.
	Fallthrough bool
}

// Invocation is a statement that calls a concrete libfunc.
type Invocation struct {
	LibfuncId ConcreteLibfuncId
	Args      []VarId
	Branches  []BranchInfo
}

// ReturnStatement is a statement that returns from the enclosing function.
type ReturnStatement struct {
	Args []VarId
}

// Statement is either an Invocation or a ReturnStatement. Exactly one of
// the two fields is non-nil.
type Statement struct {
	Invocation *Invocation
	Return     *ReturnStatement
}

// IsReturn reports whether this statement is a ReturnStatement.
func (s Statement) IsReturn() bool {
	return s.Return != nil
}

// Program is a full Sierra program: its type and libfunc declaration
// tables, and its flat, ordered statement list. Invariant: every
// libfunc/type id referenced anywhere in the program has a declaration
// (enforced by the producer of the Program, not re-validated here).
type Program struct {
	TypeDeclarations    []TypeDeclaration
	LibfuncDeclarations []LibfuncDeclaration
	Statements          []Statement
	Funcs               []Function
}

// Clone returns a deep copy of the program, so transformations like the
// id replacer can build a new Program without mutating the input.
func (p *Program) Clone() *Program {
	clone := &Program{
		TypeDeclarations:    make([]TypeDeclaration, len(p.TypeDeclarations)),
		LibfuncDeclarations: make([]LibfuncDeclaration, len(p.LibfuncDeclarations)),
		Statements:          make([]Statement, len(p.Statements)),
		Funcs:               make([]Function, len(p.Funcs)),
	}
	for i, t := range p.TypeDeclarations {
		clone.TypeDeclarations[i] = TypeDeclaration{Id: t.Id, LongId: t.LongId.Clone(), DebugName: t.DebugName}
	}
	for i, l := range p.LibfuncDeclarations {
		clone.LibfuncDeclarations[i] = LibfuncDeclaration{Id: l.Id, LongId: l.LongId.Clone(), DebugName: l.DebugName}
	}
	for i, s := range p.Statements {
		clone.Statements[i] = s.clone()
	}
	copy(clone.Funcs, p.Funcs)
	return clone
}

func (s Statement) clone() Statement {
	if s.Invocation != nil {
		inv := *s.Invocation
		inv.Args = append([]VarId(nil), s.Invocation.Args...)
		inv.Branches = append([]BranchInfo(nil), s.Invocation.Branches...)
		return Statement{Invocation: &inv}
	}
	ret := *s.Return
	ret.Args = append([]VarId(nil), s.Return.Args...)
	return Statement{Return: &ret}
}

// Index builds lookup maps from concrete id to declaration, used by the
// id replacer and the profiler instead of a linear scan.
type Index struct {
	TypesByID    map[ConcreteTypeId]*TypeDeclaration
	LibfuncsByID map[ConcreteLibfuncId]*LibfuncDeclaration
}

// BuildIndex scans the program's declaration tables once.
func BuildIndex(p *Program) *Index {
	idx := &Index{
		TypesByID:    make(map[ConcreteTypeId]*TypeDeclaration, len(p.TypeDeclarations)),
		LibfuncsByID: make(map[ConcreteLibfuncId]*LibfuncDeclaration, len(p.LibfuncDeclarations)),
	}
	for i := range p.TypeDeclarations {
		idx.TypesByID[p.TypeDeclarations[i].Id] = &p.TypeDeclarations[i]
	}
	for i := range p.LibfuncDeclarations {
		idx.LibfuncsByID[p.LibfuncDeclarations[i].Id] = &p.LibfuncDeclarations[i]
	}
	return idx
}
