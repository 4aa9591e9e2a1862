// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package statistics accumulates per-libfunc call-frequency counts
// across a replay run, with merge and top-80%-cumulative filtering, and
// CSV serialization.
package statistics

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
)

// ErrOverflow is returned when accumulating a count would overflow its
// counter.
var ErrOverflow = errors.New("statistics: counter overflow")

// LibfuncStatistics is an accumulating libfunc-name -> count mapping.
// Counts are monotonically non-decreasing under Update and Merge. The
// zero value is ready to use.
type LibfuncStatistics struct {
	counts map[string]uint64
	// order records first-seen order, so FilterMostFrequent can break
	// ties between equal counts by insertion order rather than by the
	// nondeterministic map iteration order.
	order []string
}

// New returns an empty LibfuncStatistics.
func New() *LibfuncStatistics {
	return &LibfuncStatistics{counts: make(map[string]uint64)}
}

// Update adds weight to the count for name, recording first-seen order.
func (s *LibfuncStatistics) Update(name string, weight uint64) error {
	if s.counts == nil {
		s.counts = make(map[string]uint64)
	}
	cur, seen := s.counts[name]
	next := cur + weight
	if next < cur {
		return errors.Wrapf(ErrOverflow, "updating %q by %d", name, weight)
	}
	if !seen {
		s.order = append(s.order, name)
	}
	s.counts[name] = next
	return nil
}

// Merge adds every count in other into s, pointwise. Merge is
// commutative and associative: for any a, b, c,
// Merge(a,b) == Merge(b,a) and Merge(Merge(a,b),c) == Merge(a,Merge(b,c)).
func (s *LibfuncStatistics) Merge(other *LibfuncStatistics) error {
	if other == nil {
		return nil
	}
	for _, name := range other.order {
		if err := s.Update(name, other.counts[name]); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the current count for name.
func (s *LibfuncStatistics) Count(name string) uint64 {
	return s.counts[name]
}

// Libfuncs returns every libfunc name passed to Update (including any
// whose count is still zero), in first-seen order.
func (s *LibfuncStatistics) Libfuncs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Total returns the sum of all counts, failing on overflow.
func (s *LibfuncStatistics) Total() (uint64, error) {
	var total uint64
	for _, name := range s.order {
		next := total + s.counts[name]
		if next < total {
			return 0, errors.Wrap(ErrOverflow, "summing total")
		}
		total = next
	}
	return total, nil
}

// HighestFrequency returns the largest single count, or 0 if empty.
func (s *LibfuncStatistics) HighestFrequency() uint64 {
	var max uint64
	for _, c := range s.counts {
		if c > max {
			max = c
		}
	}
	return max
}

// FilterMostFrequent returns a new LibfuncStatistics containing exactly
// the top-k libfuncs, ordered highest to lowest, whose cumulative count
// first reaches at least 80% of the total (rounded up). Libfuncs with equal counts retain
// their original insertion order (stable sort by count descending).
func (s *LibfuncStatistics) FilterMostFrequent() (*LibfuncStatistics, error) {
	total, err := s.Total()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(s.order))
	copy(names, s.order)
	sort.SliceStable(names, func(i, j int) bool {
		return s.counts[names[i]] > s.counts[names[j]]
	})

	out := New()
	if total == 0 {
		return out, nil
	}

	threshold := (total*8 + 9) / 10 // ceil(total * 0.8), integer-safe
	var cumulative uint64
	for _, name := range names {
		if cumulative >= threshold {
			break
		}
		if err := out.Update(name, s.counts[name]); err != nil {
			return nil, err
		}
		cumulative += s.counts[name]
	}
	return out, nil
}

// ToCSV renders the statistics as UTF-8 CSV: header row
// "Function Name,Weight", then one row per libfunc sorted by count
// ascending, with every row newline-terminated. Libfunc names may contain commas or angle brackets; the
// underlying writer quotes fields as needed.
func (s *LibfuncStatistics) ToCSV() string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	sort.SliceStable(names, func(i, j int) bool {
		return s.counts[names[i]] < s.counts[names[j]]
	})

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Function Name", "Weight"})
	for _, name := range names {
		t.AppendRow(table.Row{name, s.counts[name]})
	}
	return t.RenderCSV() + "\n"
}

// FromCSV parses the output of ToCSV (or any CSV with the same header)
// back into a LibfuncStatistics. Parsing the CSV output of a statistics
// object yields an equal statistics object.
func FromCSV(r io.Reader) (*LibfuncStatistics, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "statistics: parsing csv")
	}
	if len(records) == 0 {
		return nil, errors.New("statistics: empty csv")
	}
	if header := records[0]; len(header) != 2 || strings.TrimSpace(header[0]) != "Function Name" || strings.TrimSpace(header[1]) != "Weight" {
		return nil, errors.Newf("statistics: unexpected csv header %v", header)
	}

	out := New()
	for _, rec := range records[1:] {
		weight, err := strconv.ParseUint(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "statistics: parsing weight %q", rec[1])
		}
		if err := out.Update(rec[0], weight); err != nil {
			return nil, err
		}
	}
	return out, nil
}
