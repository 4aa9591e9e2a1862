// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package executor defines the injection seam between Chain Storage's
// ExecuteBlock and the transaction re-executor: this spec treats the VM
// as a black box that, given a block header, a transaction, and a state
// reader, emits the PCs visited per class hash. No Starknet VM exists in
// the Go ecosystem, so ReExecutor plays the role the teacher's own
// Processor[T] interface plays for the state-transition VM: a seam a
// storage backend is constructed with, not a VM it embeds.
package executor

import "github.com/0xsoniclabs/starknet-replay/storage"

// StateReader is the read-only state surface a ReExecutor consults
// while executing one transaction: nonces, class hashes, and storage
// slots as of the state immediately preceding the transaction. Missing
// contracts yield zero values, not errors, matching the RPC storage
// contract in spec.md §6.
type StateReader interface {
	Nonce(contractAddress string) (uint64, error)
	ClassHashAt(contractAddress string) (storage.ClassHash, error)
	StorageAt(contractAddress, key string) (string, error)
}

// ReExecutor re-executes one transaction against a state reader and
// reports the PCs visited per class hash during that execution. A
// ChainStorage implementation's ExecuteBlock is expected to run every
// transaction in a block through a ReExecutor, in transaction-index
// order, and concatenate the resulting per-class run lists.
//
//go:generate mockgen -source reexecutor.go -destination reexecutor_mock.go -package executor
type ReExecutor interface {
	ExecuteTransaction(header storage.BlockHeader, tx storage.Transaction, state StateReader) (storage.VisitedPCs, error)
}

// ErrVmExecution is returned by a ReExecutor when transaction
// re-execution itself fails (spec.md §7 VmExecution). Callers wrap it
// with block-number context before surfacing it.
var ErrVmExecution = storage.ErrVmExecution
