// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.

package rpcstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xsoniclabs/starknet-replay/executor"
	"github.com/0xsoniclabs/starknet-replay/storage"
)

type fakeClient struct {
	responses map[string]any
	errs      map[string]error
	calls     []string
}

func (f *fakeClient) CallContext(_ context.Context, result interface{}, method string, _ ...interface{}) error {
	f.calls = append(f.calls, method)
	if err, ok := f.errs[method]; ok {
		return err
	}
	resp, ok := f.responses[method]
	if !ok {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}

func (f *fakeClient) Close() {}

func TestLatestBlock(t *testing.T) {
	s := &Store{client: &fakeClient{responses: map[string]any{"starknet_blockNumber": 42}}}
	n, err := s.LatestBlock()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)
}

func TestChainID_DecodesHexString(t *testing.T) {
	// "SN_MAIN" hex-encoded.
	s := &Store{client: &fakeClient{responses: map[string]any{"starknet_chainId": "0x534e5f4d41494e"}}}
	id, err := s.ChainID()
	require.NoError(t, err)
	assert.Equal(t, storage.ChainMainnet, id)
}

func TestChainID_UnknownFails(t *testing.T) {
	s := &Store{client: &fakeClient{responses: map[string]any{"starknet_chainId": "0x414243"}}} // "ABC"
	_, err := s.ChainID()
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrUnknownChain)
}

func TestBlockHeader(t *testing.T) {
	s := &Store{client: &fakeClient{responses: map[string]any{
		"starknet_getBlockWithTxHashes": map[string]any{
			"block_hash": "0xabc", "parent_hash": "0xdef", "block_number": 7, "timestamp": 1000,
		},
	}}}
	header, err := s.BlockHeader(7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), header.Number)
	assert.Equal(t, "0xabc", header.Hash)
}

func TestNonce_CachesInSerialMode(t *testing.T) {
	client := &fakeClient{responses: map[string]any{"starknet_getNonce": "0x5"}}
	s := &Store{client: client, serialMode: true, cache: make(map[stateCacheKey]string)}

	n1, err := s.Nonce("0x1")
	require.NoError(t, err)
	n2, err := s.Nonce("0x1")
	require.NoError(t, err)

	assert.Equal(t, uint64(5), n1)
	assert.Equal(t, uint64(5), n2)
	assert.Len(t, client.calls, 1, "second call should be served from cache")
}

func TestNonce_NoCacheWhenNotSerial(t *testing.T) {
	client := &fakeClient{responses: map[string]any{"starknet_getNonce": "0x5"}}
	s := &Store{client: client}

	_, err := s.Nonce("0x1")
	require.NoError(t, err)
	_, err = s.Nonce("0x1")
	require.NoError(t, err)

	assert.Len(t, client.calls, 2)
}

func TestInvalidateCache_ClearsEntries(t *testing.T) {
	client := &fakeClient{responses: map[string]any{"starknet_getNonce": "0x1"}}
	s := &Store{client: client, serialMode: true, cache: make(map[stateCacheKey]string)}

	_, err := s.Nonce("0x1")
	require.NoError(t, err)
	s.InvalidateCache()
	_, err = s.Nonce("0x1")
	require.NoError(t, err)

	assert.Len(t, client.calls, 2)
}

type stubReExecutor struct {
	visited storage.VisitedPCs
	err     error
}

func (r stubReExecutor) ExecuteTransaction(storage.BlockHeader, storage.Transaction, executor.StateReader) (storage.VisitedPCs, error) {
	return r.visited, r.err
}

func TestExecuteBlock_MergesAcrossTransactions(t *testing.T) {
	s := &Store{reexec: stubReExecutor{visited: storage.VisitedPCs{"hash1": [][]int{{1, 2}}}}}
	block, err := storage.NewReplayBlock(storage.BlockHeader{Number: 1}, []storage.Transaction{{Hash: "0x1"}, {Hash: "0x2"}}, []storage.Receipt{{}, {}})
	require.NoError(t, err)

	visited, err := s.ExecuteBlock(block)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {1, 2}}, visited["hash1"])
}

func TestExecuteBlock_RequiresReExecutor(t *testing.T) {
	s := &Store{}
	block, err := storage.NewReplayBlock(storage.BlockHeader{Number: 1}, nil, nil)
	require.NoError(t, err)

	_, err = s.ExecuteBlock(block)
	require.Error(t, err)
}
