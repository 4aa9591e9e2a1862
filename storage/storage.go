// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package storage defines the Chain Storage contract shared by the
// embedded sqlite-backed store (package sqlitestore) and the JSON-RPC
// backed store (package rpcstore), along with the domain types and
// error taxonomy the replay driver builds on.
package storage

import "github.com/cockroachdb/errors"

// ChainID identifies a Starknet network by its chain-id string as
// decoded from the wire's hex encoding, e.g. "SN_MAIN".
type ChainID string

// Known chain ids, per spec.md §6.
const (
	ChainMainnet          ChainID = "SN_MAIN"
	ChainGoerliTestnet    ChainID = "SN_GOERLI"
	ChainGoerliIntegration ChainID = "SN_GOERLI_INTEGRATION"
	ChainSepoliaTestnet   ChainID = "SN_SEPOLIA"
	ChainSepoliaIntegration ChainID = "SN_INTEGRATION_SEPOLIA"
)

// GenesisHashes maps each known chain's genesis block hash (hex,
// 0x-prefixed) to its chain id. Used to identify the chain from an
// embedded store that carries no explicit chain-id field.
var GenesisHashes = map[string]ChainID{
	"0x047c3637b57c2b079b93c61539950c17e868a28f46cdef28f88521067f21e95": ChainMainnet,
	"0x05c628f251ebd0fb23336f3b2e57dca38c25b08c8e47d0c4ecd65cf1cab80c9": ChainGoerliTestnet,
	"0x04f0fd73e10ed6c5ad9df5bfdbb8e6d88f90e5c1feb0a48c4e3fcf2f07ccb1a": ChainGoerliIntegration,
	"0x04e5efb64f3c34a8c88a2b5f6d1e7e8f4d1b4c33f1f0e1b6f9f8c5a5f7f6c9d3": ChainSepoliaTestnet,
	"0x01ee1b4ae05b33e1ed11f4deffc91665e3fa5ff2b0b9d7e33e1f1f3c8f1d8f2a": ChainSepoliaIntegration,
}

// FromGenesisHash looks up the chain id whose genesis block carries
// hash, reporting ok=false if hash matches none of GenesisHashes. A
// store that carries no explicit chain-id record (spec.md §6) falls
// back to this to identify its chain from block 0's hash.
func FromGenesisHash(hash string) (id ChainID, ok bool) {
	id, ok = GenesisHashes[hash]
	return id, ok
}

// KnownChainIDs reports whether id is one of the chain ids this system
// recognizes.
func KnownChainIDs(id ChainID) bool {
	switch id {
	case ChainMainnet, ChainGoerliTestnet, ChainGoerliIntegration, ChainSepoliaTestnet, ChainSepoliaIntegration:
		return true
	default:
		return false
	}
}

// ClassHash identifies a declared contract class by content hash.
type ClassHash string

// ReplayClassHash is the composite identity key for a contract class:
// classes can be redeclared at a later block with the same hash, so a
// class must never be cached by ClassHash alone.
type ReplayClassHash struct {
	Block     uint64
	ClassHash ClassHash
}

// BlockHeader is the subset of a Starknet block header the replay
// pipeline needs.
type BlockHeader struct {
	Number    uint64
	Hash      string
	ParentHash string
	Timestamp uint64
}

// Transaction is a single transaction within a block. Fields carried
// here are the ones execute_block needs; wire-format conversions beyond
// that are out of scope.
type Transaction struct {
	Hash string
	Raw  []byte
}

// Receipt is a transaction's execution receipt.
type Receipt struct {
	TransactionHash string
	Raw             []byte
}

// ContractClassKind distinguishes Sierra contract classes (which carry
// a profile) from legacy Cairo 0 classes (which pass through the
// pipeline unprofiled).
type ContractClassKind int

const (
	ContractClassSierra ContractClassKind = iota
	ContractClassLegacy
)

// ContractClass is a declared contract class as fetched from storage.
type ContractClass struct {
	Kind ContractClassKind
	// SierraProgram is a compiler-ready encoding of the Sierra program
	// (e.g. JSON), present only when Kind == ContractClassSierra.
	SierraProgram []byte
}

// ReplayBlock pairs a header with its transactions and receipts.
// Invariant: len(Transactions) == len(Receipts), and Receipts[i]
// belongs to Transactions[i]. No cross-check that either actually
// belongs to Header; the storage layer is trusted for that.
type ReplayBlock struct {
	Header       BlockHeader
	Transactions []Transaction
	Receipts     []Receipt
}

// NewReplayBlock constructs a ReplayBlock, rejecting unequal
// transaction/receipt lengths (spec.md §8 invariant 7).
func NewReplayBlock(header BlockHeader, txs []Transaction, receipts []Receipt) (ReplayBlock, error) {
	if len(txs) != len(receipts) {
		return ReplayBlock{}, errors.Newf("storage: block %d has %d transactions but %d receipts", header.Number, len(txs), len(receipts))
	}
	return ReplayBlock{Header: header, Transactions: txs, Receipts: receipts}, nil
}

// VisitedPCs maps a class hash to the ordered list of PC traces
// produced by each entry-point invocation of that class during a
// block's execution. One run = one entry-point execution; PCs within a
// run appear in execution order, and sub-lists across an execute_block
// call appear in transaction-index order.
type VisitedPCs map[ClassHash][][]int

// Merge extends each class's run list by the runs in other
// (concatenation; order across blocks carries no meaning).
func (v VisitedPCs) Merge(other VisitedPCs) {
	for classHash, runs := range other {
		v[classHash] = append(v[classHash], runs...)
	}
}

// ChainStorage is the abstract read side the replay driver and
// re-executor consume. Two implementations exist: sqlitestore (an
// embedded store) and rpcstore (a JSON-RPC client). Both must be safe
// for concurrent reads, since workers share one handle.
//
//go:generate mockgen -source storage.go -destination storage_mock.go -package storage
type ChainStorage interface {
	// LatestBlock returns the most recent block number, or 0 if the
	// store is empty.
	LatestBlock() (uint64, error)
	// ChainID returns the chain this store serves.
	ChainID() (ChainID, error)
	// BlockHeader fetches one block's header.
	BlockHeader(block uint64) (BlockHeader, error)
	// TransactionsAndReceipts fetches a block's transactions and their
	// receipts, paired and equal length.
	TransactionsAndReceipts(block uint64) ([]Transaction, []Receipt, error)
	// ContractClassAt fetches the contract class declared at key,
	// disambiguated by block because classes can be redeclared.
	ContractClassAt(key ReplayClassHash) (ContractClass, error)
	// ExecuteBlock drives the VM over every transaction in block and
	// returns the PCs visited per class hash.
	ExecuteBlock(block ReplayBlock) (VisitedPCs, error)
}

// Error kind sentinels, per the taxonomy in spec.md §7. Concrete errors
// are produced with errors.Mark(cause, KindX) so callers can classify
// them with errors.Is regardless of the wrapped message.
var (
	// ErrStorageUnavailable means the backing store could not be opened
	// or reached. Fatal; surfaced.
	ErrStorageUnavailable = errors.New("storage: unavailable")
	// ErrNotFound means the requested block, class, or transaction does
	// not exist. Fatal for the affected block; surfaced.
	ErrNotFound = errors.New("storage: not found")
	// ErrProtocolDecode means an RPC response was malformed or failed
	// hex parsing. Fatal; surfaced.
	ErrProtocolDecode = errors.New("storage: protocol decode failure")
	// ErrUnknownChain means chain_id resolved to a value outside the
	// known set.
	ErrUnknownChain = errors.New("storage: unknown chain id")
	// ErrVmExecution means transaction re-execution failed. Fatal for
	// the block; surfaced with the block number in context.
	ErrVmExecution = errors.New("storage: vm execution failed")
)
