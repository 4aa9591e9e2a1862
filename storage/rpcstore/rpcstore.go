// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package rpcstore implements storage.ChainStorage as a Starknet
// JSON-RPC 2.0 client.
package rpcstore

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/status-im/keycard-go/hexutils"

	"github.com/0xsoniclabs/starknet-replay/executor"
	"github.com/0xsoniclabs/starknet-replay/storage"
)

// rpcClient is the subset of *rpc.Client Store depends on, narrowed so
// tests can substitute a fake transport instead of dialing a real node.
type rpcClient interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	Close()
}

// Store is a Starknet JSON-RPC backed storage.ChainStorage.
type Store struct {
	client rpcClient
	reexec executor.ReExecutor

	// serialMode enables the mutable per-process state cache. Per
	// spec.md §9, this must be disabled whenever blocks may be replayed
	// out of order, since blockifier writes through it out of order and
	// would corrupt successor reads.
	serialMode bool
	cacheMu    sync.Mutex
	cache      map[stateCacheKey]string
}

type stateCacheKey struct {
	kind    string
	address string
	extra   string
}

// Options configures Dial.
type Options struct {
	ReExecutor executor.ReExecutor
	// SerialMode enables the mutable state cache. Must be false when
	// blocks are replayed with more than one worker.
	SerialMode bool
}

// Dial connects to a Starknet JSON-RPC endpoint.
func Dial(ctx context.Context, url string, opts Options) (*Store, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "rpcstore: dialing %s", url), storage.ErrStorageUnavailable)
	}
	s := &Store{client: client, reexec: opts.ReExecutor, serialMode: opts.SerialMode}
	if opts.SerialMode {
		s.cache = make(map[stateCacheKey]string)
	}
	return s, nil
}

// Close releases the underlying RPC client.
func (s *Store) Close() {
	s.client.Close()
}

// LatestBlock implements storage.ChainStorage.
func (s *Store) LatestBlock() (uint64, error) {
	var n uint64
	if err := s.client.CallContext(context.Background(), &n, "starknet_blockNumber"); err != nil {
		return 0, errors.Mark(errors.Wrap(err, "rpcstore: starknet_blockNumber"), storage.ErrProtocolDecode)
	}
	return n, nil
}

// ChainID implements storage.ChainStorage. The wire value is a
// hex-encoded UTF-8 string, e.g. "0x534e5f4d41494e" for "SN_MAIN".
func (s *Store) ChainID() (storage.ChainID, error) {
	var hexID string
	if err := s.client.CallContext(context.Background(), &hexID, "starknet_chainId"); err != nil {
		return "", errors.Mark(errors.Wrap(err, "rpcstore: starknet_chainId"), storage.ErrProtocolDecode)
	}
	raw := hexutils.HexToBytes(strings.TrimPrefix(hexID, "0x"))
	id := storage.ChainID(raw)
	if !storage.KnownChainIDs(id) {
		return "", errors.Mark(errors.Newf("rpcstore: unknown chain id %q", id), storage.ErrUnknownChain)
	}
	return id, nil
}

func blockTag(block uint64) map[string]any {
	return map[string]any{"block_number": block}
}

type rpcBlockHeader struct {
	BlockHash  string `json:"block_hash"`
	ParentHash string `json:"parent_hash"`
	BlockNum   uint64 `json:"block_number"`
	Timestamp  uint64 `json:"timestamp"`
}

// BlockHeader implements storage.ChainStorage.
func (s *Store) BlockHeader(block uint64) (storage.BlockHeader, error) {
	var resp rpcBlockHeader
	err := s.client.CallContext(context.Background(), &resp, "starknet_getBlockWithTxHashes", blockTag(block))
	if err != nil {
		return storage.BlockHeader{}, classifyBlockError(err, block)
	}
	return storage.BlockHeader{
		Number:     resp.BlockNum,
		Hash:       resp.BlockHash,
		ParentHash: resp.ParentHash,
		Timestamp:  resp.Timestamp,
	}, nil
}

type rpcTxWithReceipt struct {
	Transaction struct {
		TransactionHash string `json:"transaction_hash"`
	} `json:"transaction"`
	Receipt struct {
		TransactionHash string `json:"transaction_hash"`
	} `json:"receipt"`
}

type rpcBlockWithReceipts struct {
	TransactionsWithReceipts []rpcTxWithReceipt `json:"transactions"`
}

// TransactionsAndReceipts implements storage.ChainStorage.
func (s *Store) TransactionsAndReceipts(block uint64) ([]storage.Transaction, []storage.Receipt, error) {
	var resp rpcBlockWithReceipts
	err := s.client.CallContext(context.Background(), &resp, "starknet_getBlockWithReceipts", blockTag(block))
	if err != nil {
		return nil, nil, classifyBlockError(err, block)
	}

	txs := make([]storage.Transaction, len(resp.TransactionsWithReceipts))
	receipts := make([]storage.Receipt, len(resp.TransactionsWithReceipts))
	for i, entry := range resp.TransactionsWithReceipts {
		txs[i] = storage.Transaction{Hash: entry.Transaction.TransactionHash}
		receipts[i] = storage.Receipt{TransactionHash: entry.Receipt.TransactionHash}
	}
	return txs, receipts, nil
}

// ContractClassAt implements storage.ChainStorage.
func (s *Store) ContractClassAt(key storage.ReplayClassHash) (storage.ContractClass, error) {
	var raw []byte
	err := s.client.CallContext(context.Background(), &raw, "starknet_getClass", blockTag(key.Block), string(key.ClassHash))
	if err != nil {
		return storage.ContractClass{}, classifyClassError(err, key)
	}
	return storage.ContractClass{Kind: storage.ContractClassSierra, SierraProgram: raw}, nil
}

// Nonce implements executor.StateReader. A contract with no deployed
// nonce yields 0, not an error, per spec.md §6.
func (s *Store) Nonce(contractAddress string) (uint64, error) {
	if v, ok := s.cached(stateCacheKey{kind: "nonce", address: contractAddress}); ok {
		return parseHexUint(v)
	}
	var hexNonce string
	err := s.client.CallContext(context.Background(), &hexNonce, "starknet_getNonce", "latest", contractAddress)
	if isContractNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "rpcstore: starknet_getNonce(%s)", contractAddress), storage.ErrProtocolDecode)
	}
	s.cacheSet(stateCacheKey{kind: "nonce", address: contractAddress}, hexNonce)
	return parseHexUint(hexNonce)
}

// ClassHashAt implements executor.StateReader. A contract that is not
// deployed yields the zero class hash "0x0", not an error.
func (s *Store) ClassHashAt(contractAddress string) (storage.ClassHash, error) {
	key := stateCacheKey{kind: "classhash", address: contractAddress}
	if v, ok := s.cached(key); ok {
		return storage.ClassHash(v), nil
	}
	var hash string
	err := s.client.CallContext(context.Background(), &hash, "starknet_getClassHashAt", "latest", contractAddress)
	if isContractNotFound(err) {
		return "0x0", nil
	}
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "rpcstore: starknet_getClassHashAt(%s)", contractAddress), storage.ErrProtocolDecode)
	}
	s.cacheSet(key, hash)
	return storage.ClassHash(hash), nil
}

// StorageAt implements executor.StateReader. A contract that is not
// deployed yields the zero value "0x0", not an error.
func (s *Store) StorageAt(contractAddress, storageKey string) (string, error) {
	key := stateCacheKey{kind: "storage", address: contractAddress, extra: storageKey}
	if v, ok := s.cached(key); ok {
		return v, nil
	}
	var value string
	err := s.client.CallContext(context.Background(), &value, "starknet_getStorageAt", contractAddress, storageKey, "latest")
	if isContractNotFound(err) {
		return "0x0", nil
	}
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "rpcstore: starknet_getStorageAt(%s,%s)", contractAddress, storageKey), storage.ErrProtocolDecode)
	}
	s.cacheSet(key, value)
	return value, nil
}

func (s *Store) cached(key stateCacheKey) (string, bool) {
	if !s.serialMode {
		return "", false
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	v, ok := s.cache[key]
	return v, ok
}

func (s *Store) cacheSet(key stateCacheKey, value string) {
	if !s.serialMode {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache[key] = value
}

// InvalidateCache clears the serial-mode state cache. Callers running
// in serial mode should call this once per block to keep reads fresh
// across state transitions.
func (s *Store) InvalidateCache() {
	if !s.serialMode {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache = make(map[stateCacheKey]string)
}

// ExecuteBlock implements storage.ChainStorage by driving the
// configured ReExecutor over every transaction in block, in
// transaction-index order.
func (s *Store) ExecuteBlock(block storage.ReplayBlock) (storage.VisitedPCs, error) {
	if s.reexec == nil {
		return nil, errors.New("rpcstore: no ReExecutor configured")
	}
	merged := make(storage.VisitedPCs)
	for i, tx := range block.Transactions {
		visited, err := s.reexec.ExecuteTransaction(block.Header, tx, s)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "rpcstore: executing tx %d of block %d", i, block.Header.Number), storage.ErrVmExecution)
		}
		merged.Merge(visited)
	}
	return merged, nil
}

func parseHexUint(hexStr string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(hexStr, "0x"), 16, 64)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "rpcstore: parsing hex value %q", hexStr), storage.ErrProtocolDecode)
	}
	return v, nil
}

func isContractNotFound(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == 20 // CONTRACT_NOT_FOUND per Starknet JSON-RPC spec
}

func classifyBlockError(err error, block uint64) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == 24 { // BLOCK_NOT_FOUND per Starknet JSON-RPC spec
		return errors.Mark(errors.Wrapf(err, "rpcstore: block %d not found", block), storage.ErrNotFound)
	}
	return errors.Mark(errors.Wrap(err, "rpcstore: fetching block"), storage.ErrProtocolDecode)
}

func classifyClassError(err error, key storage.ReplayClassHash) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == 28 { // CLASS_HASH_NOT_FOUND per Starknet JSON-RPC spec
		return errors.Mark(errors.Wrapf(err, "rpcstore: class %s not found at block %d", key.ClassHash, key.Block), storage.ErrNotFound)
	}
	return errors.Mark(errors.Wrap(err, "rpcstore: fetching contract class"), storage.ErrProtocolDecode)
}
