// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package profiler

import (
	"strconv"
	"strings"

	"github.com/0xsoniclabs/starknet-replay/sierra"
)

// DefaultMaxStackDepth bounds the user-function stack kept by
// CollectStackWeights. Once exceeded, the logical depth counter keeps
// counting but no frames are pushed; popping resumes once depth
// re-enters the bound.
const DefaultMaxStackDepth = 1000

const functionCallGenericId = "function_call"

// StackOptions configures CollectStackWeights.
type StackOptions struct {
	// MaxStackDepth caps memory used by the user-function stack. Zero
	// means DefaultMaxStackDepth.
	MaxStackDepth int
}

type stackFrame struct {
	fn          sierra.FunctionId
	savedWeight uint64
}

// CollectStackWeights is the optional stack-trace profiling pass
// (spec.md §4.2 "Stack-trace variant"): it attributes weight to
// call-stack paths of user functions rather than to individual libfuncs.
// It is kept for completeness alongside the primary
// CollectProfilingInfo/UnpackProfilingInfo path, which remains the
// default used by the replay driver.
func (p *SierraProfiler) CollectStackWeights(pcs []int, opts StackOptions) (map[string]uint64, error) {
	maxDepth := opts.MaxStackDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxStackDepth
	}

	callTargets := p.functionCallTargets()
	byPC := make(map[int][]sierra.StatementIdx, len(p.statements))
	for _, s := range p.statements {
		byPC[s.StartingPC] = append(byPC[s.StartingPC], s.StatementIdx)
	}

	offset := 0
	if p.headerOffset != nil {
		offset = *p.headerOffset
	} else {
		offset = p.deriveHeaderOffset(pcs)
	}

	result := make(map[string]uint64)
	var stack []stackFrame
	var currentFn sierra.FunctionId
	if len(p.program.Funcs) > 0 {
		currentFn = p.program.Funcs[0].Id
	}
	var weight uint64
	var logicalDepth int

pcLoop:
	for _, rawPC := range pcs {
		weight++
		localPC := rawPC - offset
		for _, stmtIdx := range byPC[localPC] {
			stmt := p.program.Statements[stmtIdx]
			switch {
			case stmt.Invocation != nil:
				target, isCall := callTargets[stmt.Invocation.LibfuncId]
				if !isCall {
					continue
				}
				logicalDepth++
				if logicalDepth <= maxDepth {
					stack = append(stack, stackFrame{fn: currentFn, savedWeight: weight})
					weight = 0
					currentFn = target
				}
			case stmt.Return != nil:
				if len(stack) == 0 {
					// Empty stack on return indicates program end; per
					// spec.md §4.2, ignore any further input.
					break pcLoop
				}
				withinBound := logicalDepth <= maxDepth
				logicalDepth--
				if withinBound {
					key := stackKey(stack, currentFn, p.program)
					frame := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					result[key] += weight
					weight = frame.savedWeight
					currentFn = frame.fn
				}
			}
		}
	}
	return result, nil
}

// functionCallTargets resolves, for every function_call libfunc
// declaration, the user function id it targets - information carried in
// the libfunc's own generic argument before the id replacer drops it.
func (p *SierraProfiler) functionCallTargets() map[sierra.ConcreteLibfuncId]sierra.FunctionId {
	targets := make(map[sierra.ConcreteLibfuncId]sierra.FunctionId)
	for _, decl := range p.program.LibfuncDeclarations {
		if !strings.HasPrefix(decl.LongId.GenericId, functionCallGenericId) {
			continue
		}
		for _, arg := range decl.LongId.GenericArgs {
			if arg.Kind == sierra.GenericArgUserFunc {
				targets[decl.Id] = arg.UserFunc
				break
			}
		}
	}
	return targets
}

func stackKey(callers []stackFrame, leaf sierra.FunctionId, program *sierra.Program) string {
	names := make([]string, 0, len(callers)+1)
	for _, f := range callers {
		names = append(names, functionName(program, f.fn))
	}
	names = append(names, functionName(program, leaf))
	return strings.Join(names, "->")
}

func functionName(program *sierra.Program, id sierra.FunctionId) string {
	for _, f := range program.Funcs {
		if f.Id == id {
			return f.Name
		}
	}
	return "fn" + strconv.FormatUint(uint64(id), 10)
}
