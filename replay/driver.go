// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package replay implements the Replay Driver: it generates a block
// work list, fans blocks out to storage.ChainStorage.ExecuteBlock in
// parallel, merges the resulting visited-PC maps, and then drives the
// ID Replacer and Sierra Profiler over each class to build the global
// Libfunc Statistics.
package replay

import (
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/0xsoniclabs/starknet-replay/logger"
	"github.com/0xsoniclabs/starknet-replay/profiler"
	"github.com/0xsoniclabs/starknet-replay/sierra"
	"github.com/0xsoniclabs/starknet-replay/sierra/idreplacer"
	"github.com/0xsoniclabs/starknet-replay/statistics"
	"github.com/0xsoniclabs/starknet-replay/storage"
)

// ErrRangeInvalid is returned when the requested block range is empty
// or starts past the storage's latest known block.
var ErrRangeInvalid = errors.New("replay: invalid block range")

// SierraDecoder parses a contract class's opaque wire encoding into a
// Sierra program. Wire-format conversion is explicitly out of scope
// (spec.md §1); this is the injection seam a caller supplies it through.
type SierraDecoder interface {
	Decode(raw []byte) (*sierra.Program, error)
}

// Options configures a Driver.
type Options struct {
	Storage    storage.ChainStorage
	Decoder    SierraDecoder
	Compiler   profiler.Compiler
	Metadata   profiler.MetadataConfig
	// NumWorkers bounds parallel block dispatch. Values <= 1 run serially.
	NumWorkers int
	Log        logger.Logger
	// PerFunction enables the secondary stack-trace weighting pass
	// (spec.md §4.2 "Stack-trace variant") alongside the primary
	// libfunc statistics. Retrieve the result with StackWeights after
	// Replay returns.
	PerFunction bool
}

// Driver is the Replay Driver.
type Driver struct {
	store       storage.ChainStorage
	decoder     SierraDecoder
	compiler    profiler.Compiler
	metadata    profiler.MetadataConfig
	numWorkers  int
	log         logger.Logger
	perFunction bool

	stackWeights map[string]uint64
}

// New constructs a Driver.
func New(opts Options) *Driver {
	workers := opts.NumWorkers
	if workers < 1 {
		workers = 1
	}
	return &Driver{
		store:       opts.Storage,
		decoder:     opts.Decoder,
		compiler:    opts.Compiler,
		metadata:    opts.Metadata,
		numWorkers:  workers,
		log:         opts.Log,
		perFunction: opts.PerFunction,
	}
}

// StackWeights returns the accumulated user-function stack weights
// from the optional secondary pass enabled by Options.PerFunction. It
// is empty if that pass was not enabled, and only meaningful after
// Replay has returned successfully.
func (d *Driver) StackWeights() map[string]uint64 {
	return d.stackWeights
}

// classRun pairs one visited-PC run with the block it was observed in,
// since contract classes must be fetched disambiguated by block: a
// class can be redeclared at a later block under the same hash, and
// must never be cached by class hash alone (spec.md §9).
type classRun struct {
	block uint64
	pcs   []int
}

// Replay generates the work list for [start, end], executes it in
// parallel, and post-processes the merged visited-PC map into Libfunc
// Statistics.
func (d *Driver) Replay(start, end uint64) (*statistics.LibfuncStatistics, error) {
	latest, err := d.store.LatestBlock()
	if err != nil {
		return nil, errors.Wrap(err, "replay: fetching latest block")
	}
	if end < start || start > latest {
		return nil, errors.Mark(errors.Newf("replay: invalid range [%d,%d] (latest=%d)", start, end, latest), ErrRangeInvalid)
	}
	if end > latest {
		end = latest
	}

	blocks, err := d.generateWork(start, end)
	if err != nil {
		return nil, err
	}

	runsByClass, err := d.execute(blocks)
	if err != nil {
		return nil, err
	}

	return d.postProcess(runsByClass)
}

// generateWork pulls (header, txs, receipts) for every block in range
// and builds a ReplayBlock per block.
func (d *Driver) generateWork(start, end uint64) ([]storage.ReplayBlock, error) {
	blocks := make([]storage.ReplayBlock, end-start+1)

	g := new(errgroup.Group)
	g.SetLimit(d.numWorkers)
	for i := start; i <= end; i++ {
		block := i
		idx := block - start
		g.Go(func() error {
			header, err := d.store.BlockHeader(block)
			if err != nil {
				return errors.Wrapf(err, "replay: fetching header for block %d", block)
			}
			txs, receipts, err := d.store.TransactionsAndReceipts(block)
			if err != nil {
				return errors.Wrapf(err, "replay: fetching transactions for block %d", block)
			}
			rb, err := storage.NewReplayBlock(header, txs, receipts)
			if err != nil {
				return err
			}
			blocks[idx] = rb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// execute distributes Replay Blocks across worker goroutines, each
// calling storage.ExecuteBlock and merging the resulting PC map behind
// a lock. A worker error fails the whole run: the first error is
// returned and no partial result is published, per spec.md §5
// Cancellation. Blocks already dispatched still run to completion.
func (d *Driver) execute(blocks []storage.ReplayBlock) (map[storage.ClassHash][]classRun, error) {
	runsByClass := make(map[storage.ClassHash][]classRun)
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(d.numWorkers)
	for _, block := range blocks {
		block := block
		g.Go(func() error {
			visited, err := d.store.ExecuteBlock(block)
			if err != nil {
				return errors.Wrapf(err, "replay: executing block %d", block.Header.Number)
			}

			mu.Lock()
			defer mu.Unlock()
			for classHash, runs := range visited {
				for _, pcs := range runs {
					runsByClass[classHash] = append(runsByClass[classHash], classRun{block: block.Header.Number, pcs: pcs})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runsByClass, nil
}

// postProcess fetches each class's contract class (disambiguated per
// block), runs the ID Replacer, builds a Sierra Profiler, and merges
// every run's profiling info into the global Libfunc Statistics. A
// class that fails compilation is logged and skipped rather than
// aborting the run (spec.md §7 SierraCompile is recoverable); every
// other failure is fatal.
func (d *Driver) postProcess(runsByClass map[storage.ClassHash][]classRun) (*statistics.LibfuncStatistics, error) {
	global := statistics.New()
	if d.perFunction {
		d.stackWeights = make(map[string]uint64)
	}

	for classHash, runs := range runsByClass {
		byBlock := make(map[uint64][]classRun)
		for _, r := range runs {
			byBlock[r.block] = append(byBlock[r.block], r)
		}

		for block, blockRuns := range byBlock {
			prof, err := d.buildProfiler(storage.ReplayClassHash{Block: block, ClassHash: classHash})
			if err != nil {
				if errors.Is(err, profiler.ErrCompilation) || errors.Is(err, profiler.ErrMetadata) {
					if d.log != nil {
						d.log.Warningf("skipping class %s at block %d: %v", classHash, block, err)
					}
					continue
				}
				if errors.Is(err, errSkipLegacyClass) {
					continue
				}
				return nil, err
			}

			for _, run := range blockRuns {
				weights, err := prof.CollectProfilingInfo(run.pcs)
				if err != nil {
					return nil, errors.Wrapf(err, "replay: collecting profiling info for class %s at block %d", classHash, block)
				}
				byName, err := prof.UnpackProfilingInfo(weights)
				if err != nil {
					return nil, errors.Wrapf(err, "replay: unpacking profiling info for class %s at block %d", classHash, block)
				}
				for name, count := range byName {
					if err := global.Update(name, count); err != nil {
						return nil, err
					}
				}

				if d.perFunction {
					stackByFn, err := prof.CollectStackWeights(run.pcs, profiler.StackOptions{})
					if err != nil {
						return nil, errors.Wrapf(err, "replay: collecting stack weights for class %s at block %d", classHash, block)
					}
					for key, weight := range stackByFn {
						d.stackWeights[key] += weight
					}
				}
			}
		}
	}
	return global, nil
}

var errSkipLegacyClass = errors.New("replay: legacy contract class carries no sierra profile")

func (d *Driver) buildProfiler(key storage.ReplayClassHash) (*profiler.SierraProfiler, error) {
	class, err := d.store.ContractClassAt(key)
	if err != nil {
		return nil, errors.Wrapf(err, "replay: fetching contract class %s at block %d", key.ClassHash, key.Block)
	}
	if class.Kind != storage.ContractClassSierra {
		return nil, errSkipLegacyClass
	}

	program, err := d.decoder.Decode(class.SierraProgram)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "replay: decoding sierra program for class %s", key.ClassHash), profiler.ErrCompilation)
	}

	replaced, err := idreplacer.Replace(program)
	if err != nil {
		return nil, errors.Wrapf(err, "replay: replacing ids for class %s", key.ClassHash)
	}

	return profiler.New(replaced, profiler.Options{Compiler: d.compiler, Metadata: d.metadata})
}
