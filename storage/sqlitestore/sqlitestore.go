// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package sqlitestore implements storage.ChainStorage on top of an
// embedded sqlite3 database: a black-box key/block store per spec.md
// §6, plus an optional trace-dump side table for persisting visited-PC
// runs across invocations.
package sqlitestore

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/0xsoniclabs/starknet-replay/executor"
	"github.com/0xsoniclabs/starknet-replay/storage"
)

const createSchemaSQL = `
PRAGMA journal_mode = WAL;
CREATE TABLE IF NOT EXISTS chain_metadata (
	id INTEGER PRIMARY KEY CHECK (id = 0),
	chain_id TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS blocks (
	number INTEGER PRIMARY KEY,
	hash TEXT NOT NULL,
	parent_hash TEXT NOT NULL,
	timestamp INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS transactions (
	block INTEGER NOT NULL,
	idx INTEGER NOT NULL,
	hash TEXT NOT NULL,
	raw BLOB,
	PRIMARY KEY (block, idx)
);
CREATE TABLE IF NOT EXISTS receipts (
	block INTEGER NOT NULL,
	idx INTEGER NOT NULL,
	tx_hash TEXT NOT NULL,
	raw BLOB,
	PRIMARY KEY (block, idx)
);
CREATE TABLE IF NOT EXISTS contract_classes (
	block INTEGER NOT NULL,
	class_hash TEXT NOT NULL,
	kind INTEGER NOT NULL,
	sierra_program BLOB,
	PRIMARY KEY (block, class_hash)
);
CREATE TABLE IF NOT EXISTS trace_dump (
	block INTEGER NOT NULL,
	class_hash TEXT NOT NULL,
	run_idx INTEGER NOT NULL,
	pc_idx INTEGER NOT NULL,
	pc INTEGER NOT NULL
);
`

// Store is an embedded sqlite3-backed storage.ChainStorage.
type Store struct {
	db     *sqlx.DB
	reexec executor.ReExecutor
	state  executor.StateReader
	// dumpTraces enables persisting ExecuteBlock's VisitedPCs output to
	// the trace_dump table, so a run can be inspected or replayed
	// without re-executing the VM.
	dumpTraces bool
}

// Options configures Open.
type Options struct {
	// ReExecutor drives the VM over each transaction. Required for
	// ExecuteBlock; a read-only Store (e.g. one only ever used to feed
	// pre-recorded trace dumps back through the profiler) may leave it
	// nil as long as ExecuteBlock is never called.
	ReExecutor executor.ReExecutor
	StateReader executor.StateReader
	// DumpTraces persists every ExecuteBlock result to the trace_dump
	// table.
	DumpTraces bool
}

// Open opens (creating if necessary) a sqlite3 database at path and
// ensures its schema exists.
func Open(path string, opts Options) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "sqlitestore: opening %s", path), storage.ErrStorageUnavailable)
	}
	if _, err := db.Exec(createSchemaSQL); err != nil {
		db.Close()
		return nil, errors.Mark(errors.Wrap(err, "sqlitestore: creating schema"), storage.ErrStorageUnavailable)
	}
	return &Store{
		db:         db,
		reexec:     opts.ReExecutor,
		state:      opts.StateReader,
		dumpTraces: opts.DumpTraces,
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetChainID persists the chain this database serves. Embedded stores
// carry no chain-id field from the protocol itself, so callers that
// know it (e.g. from a genesis-hash lookup) record it explicitly.
func (s *Store) SetChainID(id storage.ChainID) error {
	_, err := s.db.Exec(`INSERT INTO chain_metadata (id, chain_id) VALUES (0, ?)
		ON CONFLICT(id) DO UPDATE SET chain_id = excluded.chain_id`, string(id))
	if err != nil {
		return errors.Wrap(err, "sqlitestore: setting chain id")
	}
	return nil
}

// ChainID implements storage.ChainStorage. When no id has been recorded
// via SetChainID, it falls back to identifying the chain from the
// genesis block's hash (storage.FromGenesisHash) and, on success,
// persists the result so later calls hit the fast path.
func (s *Store) ChainID() (storage.ChainID, error) {
	var id string
	err := s.db.Get(&id, `SELECT chain_id FROM chain_metadata WHERE id = 0`)
	if err == nil {
		return storage.ChainID(id), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", errors.Wrap(err, "sqlitestore: reading chain id")
	}

	genesisID, ok := s.chainIDFromGenesis()
	if !ok {
		return "", errors.Mark(errors.New("sqlitestore: chain id not set"), storage.ErrUnknownChain)
	}
	if err := s.SetChainID(genesisID); err != nil {
		return "", err
	}
	return genesisID, nil
}

// chainIDFromGenesis looks up block 0's hash and resolves it against
// storage.GenesisHashes. ok is false if block 0 isn't stored yet or its
// hash matches no known genesis.
func (s *Store) chainIDFromGenesis() (storage.ChainID, bool) {
	var hash string
	if err := s.db.Get(&hash, `SELECT hash FROM blocks WHERE number = 0`); err != nil {
		return "", false
	}
	return storage.FromGenesisHash(hash)
}

// LatestBlock implements storage.ChainStorage.
func (s *Store) LatestBlock() (uint64, error) {
	var n sql.NullInt64
	if err := s.db.Get(&n, `SELECT MAX(number) FROM blocks`); err != nil {
		return 0, errors.Wrap(err, "sqlitestore: reading latest block")
	}
	if !n.Valid {
		return 0, nil
	}
	return uint64(n.Int64), nil
}

type blockRow struct {
	Number     uint64 `db:"number"`
	Hash       string `db:"hash"`
	ParentHash string `db:"parent_hash"`
	Timestamp  uint64 `db:"timestamp"`
}

// BlockHeader implements storage.ChainStorage.
func (s *Store) BlockHeader(block uint64) (storage.BlockHeader, error) {
	var row blockRow
	err := s.db.Get(&row, `SELECT number, hash, parent_hash, timestamp FROM blocks WHERE number = ?`, block)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.BlockHeader{}, errors.Mark(errors.Newf("sqlitestore: block %d not found", block), storage.ErrNotFound)
	}
	if err != nil {
		return storage.BlockHeader{}, errors.Wrap(err, "sqlitestore: reading block header")
	}
	return storage.BlockHeader{Number: row.Number, Hash: row.Hash, ParentHash: row.ParentHash, Timestamp: row.Timestamp}, nil
}

type txRow struct {
	Hash string `db:"hash"`
	Raw  []byte `db:"raw"`
}

type receiptRow struct {
	TxHash string `db:"tx_hash"`
	Raw    []byte `db:"raw"`
}

// TransactionsAndReceipts implements storage.ChainStorage.
func (s *Store) TransactionsAndReceipts(block uint64) ([]storage.Transaction, []storage.Receipt, error) {
	var txRows []txRow
	if err := s.db.Select(&txRows, `SELECT hash, raw FROM transactions WHERE block = ? ORDER BY idx ASC`, block); err != nil {
		return nil, nil, errors.Wrap(err, "sqlitestore: reading transactions")
	}
	var receiptRows []receiptRow
	if err := s.db.Select(&receiptRows, `SELECT tx_hash, raw FROM receipts WHERE block = ? ORDER BY idx ASC`, block); err != nil {
		return nil, nil, errors.Wrap(err, "sqlitestore: reading receipts")
	}
	if len(txRows) == 0 {
		return nil, nil, errors.Mark(errors.Newf("sqlitestore: block %d not found", block), storage.ErrNotFound)
	}

	txs := make([]storage.Transaction, len(txRows))
	for i, r := range txRows {
		txs[i] = storage.Transaction{Hash: r.Hash, Raw: r.Raw}
	}
	receipts := make([]storage.Receipt, len(receiptRows))
	for i, r := range receiptRows {
		receipts[i] = storage.Receipt{TransactionHash: r.TxHash, Raw: r.Raw}
	}
	return txs, receipts, nil
}

type classRow struct {
	Kind          int    `db:"kind"`
	SierraProgram []byte `db:"sierra_program"`
}

// ContractClassAt implements storage.ChainStorage. It looks up the most
// recent declaration at or before key.Block, since a class may be
// declared well before the block being replayed and is never
// redeclared within it.
func (s *Store) ContractClassAt(key storage.ReplayClassHash) (storage.ContractClass, error) {
	var row classRow
	err := s.db.Get(&row, `SELECT kind, sierra_program FROM contract_classes
		WHERE class_hash = ? AND block <= ? ORDER BY block DESC LIMIT 1`, string(key.ClassHash), key.Block)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ContractClass{}, errors.Mark(errors.Newf("sqlitestore: class %s not found at or before block %d", key.ClassHash, key.Block), storage.ErrNotFound)
	}
	if err != nil {
		return storage.ContractClass{}, errors.Wrap(err, "sqlitestore: reading contract class")
	}
	return storage.ContractClass{Kind: storage.ContractClassKind(row.Kind), SierraProgram: row.SierraProgram}, nil
}

// ExecuteBlock implements storage.ChainStorage by driving the
// configured ReExecutor over every transaction in block, in
// transaction-index order, and concatenating the resulting per-class
// run lists.
func (s *Store) ExecuteBlock(block storage.ReplayBlock) (storage.VisitedPCs, error) {
	if s.reexec == nil {
		return nil, errors.New("sqlitestore: no ReExecutor configured")
	}

	merged := make(storage.VisitedPCs)
	for i, tx := range block.Transactions {
		visited, err := s.reexec.ExecuteTransaction(block.Header, tx, s.state)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "sqlitestore: executing tx %d of block %d", i, block.Header.Number), storage.ErrVmExecution)
		}
		merged.Merge(visited)
	}

	if s.dumpTraces {
		if err := s.persistTraceDump(block.Header.Number, merged); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func (s *Store) persistTraceDump(block uint64, visited storage.VisitedPCs) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "sqlitestore: beginning trace dump transaction")
	}
	stmt, err := tx.Preparex(`INSERT INTO trace_dump (block, class_hash, run_idx, pc_idx, pc) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "sqlitestore: preparing trace dump insert")
	}
	defer stmt.Close()

	for classHash, runs := range visited {
		for runIdx, pcs := range runs {
			for pcIdx, pc := range pcs {
				if _, err := stmt.Exec(block, string(classHash), runIdx, pcIdx, pc); err != nil {
					_ = tx.Rollback()
					return errors.Wrap(err, "sqlitestore: inserting trace dump row")
				}
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "sqlitestore: committing trace dump")
	}
	return nil
}

// LoadTraceDump reads back a previously persisted trace dump for block,
// reconstructing the VisitedPCs it represents.
func (s *Store) LoadTraceDump(block uint64) (storage.VisitedPCs, error) {
	type row struct {
		ClassHash string `db:"class_hash"`
		RunIdx    int    `db:"run_idx"`
		PCIdx     int    `db:"pc_idx"`
		PC        int    `db:"pc"`
	}
	var rows []row
	err := s.db.Select(&rows, `SELECT class_hash, run_idx, pc_idx, pc FROM trace_dump
		WHERE block = ? ORDER BY class_hash, run_idx, pc_idx`, block)
	if err != nil {
		return nil, errors.Wrap(err, "sqlitestore: reading trace dump")
	}

	out := make(storage.VisitedPCs)
	for _, r := range rows {
		ch := storage.ClassHash(r.ClassHash)
		for len(out[ch]) <= r.RunIdx {
			out[ch] = append(out[ch], nil)
		}
		out[ch][r.RunIdx] = append(out[ch][r.RunIdx], r.PC)
	}
	return out, nil
}
