// Copyright 2026 Starknet Replay Contributors
// This file is part of the Starknet Sierra Replay Profiler.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package histogram renders a Libfunc Statistics distribution as a
// static SVG bar histogram.
package histogram

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"sort"

	"github.com/cockroachdb/errors"
)

const (
	pxPerBar      = 40
	marginPx      = 250
	pxPerYUnit    = 2
	pxPerLabelRun = 12 // within the spec's 10-15px/char x-label budget, just below its 12.5 midpoint
	barGapPx      = 8
	gridEveryY    = 100
)

// ErrFileExists is returned by Render when the output path already
// exists and overwrite is false.
var ErrFileExists = errors.New("histogram: output file exists")

// Config pins the geometry Render computes, exposed so callers (and
// tests) can check the formulas in spec.md §6/§8 independently of the
// file write.
type Config struct {
	Bars         int
	Width        int
	MaxYAxis     uint64
	LabelAreaPx  int
	Height       int
}

// Bar is one libfunc's bar in the histogram.
type Bar struct {
	Name  string
	Count uint64
}

// ComputeConfig derives the histogram's pixel geometry from the bar set,
// per the formulas in spec.md §6: width scales with bar count, height
// with the rounded-up max frequency plus a label area sized to the
// longest bar name.
func ComputeConfig(bars []Bar) Config {
	longest := 0
	var maxCount uint64
	for _, b := range bars {
		if len(b.Name) > longest {
			longest = len(b.Name)
		}
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	maxYAxis := roundUpToNextHundred(maxCount)
	labelArea := longest * pxPerLabelRun

	return Config{
		Bars:        len(bars),
		Width:       len(bars)*pxPerBar + marginPx,
		MaxYAxis:    maxYAxis,
		LabelAreaPx: labelArea,
		Height:      int(maxYAxis)*pxPerYUnit + labelArea,
	}
}

// roundUpToNextHundred rounds v up to the next higher multiple of 100,
// even when v is itself already a multiple (the histogram always wants
// headroom above the tallest bar), per spec.md §8 Scenario F (1600 ->
// 1700).
func roundUpToNextHundred(v uint64) uint64 {
	return (v/gridEveryY + 1) * gridEveryY
}

// Render writes bars as an SVG bar histogram to path. Bars are sorted
// descending by count before drawing. Fails with ErrFileExists if path
// already exists and overwrite is false.
func Render(path string, bars []Bar, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.Mark(errors.Newf("histogram: %s already exists", path), ErrFileExists)
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "histogram: checking %s", path)
		}
	}

	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })

	cfg := ComputeConfig(sorted)
	svg := renderSVG(cfg, sorted)

	if err := os.WriteFile(path, svg, 0o644); err != nil {
		return errors.Wrapf(err, "histogram: writing %s", path)
	}
	return nil
}

func renderSVG(cfg Config, bars []Bar) []byte {
	var buf bytes.Buffer

	plotHeight := cfg.Height - cfg.LabelAreaPx
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
	fmt.Fprintf(&buf, `<rect width="%d" height="%d" fill="white"/>`+"\n", cfg.Width, cfg.Height)

	for y := uint64(0); y <= cfg.MaxYAxis; y += gridEveryY {
		lineY := plotHeight - int(float64(y)/float64(cfg.MaxYAxis)*float64(plotHeight))
		fmt.Fprintf(&buf, `<line x1="0" y1="%d" x2="%d" y2="%d" stroke="#ccc" stroke-width="1"/>`+"\n",
			lineY, cfg.Width, lineY)
		fmt.Fprintf(&buf, `<text x="2" y="%d" font-size="10">%d</text>`+"\n", lineY-2, y)
	}

	for i, bar := range bars {
		barHeight := 0
		if cfg.MaxYAxis > 0 {
			barHeight = int(float64(bar.Count) / float64(cfg.MaxYAxis) * float64(plotHeight))
		}
		x := marginPx/2 + i*pxPerBar
		barWidth := pxPerBar - barGapPx
		barY := plotHeight - barHeight

		fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" fill="steelblue"/>`+"\n",
			x, barY, barWidth, barHeight)
		fmt.Fprintf(&buf,
			`<text x="%d" y="%d" font-size="10" transform="rotate(90 %d,%d)">%s</text>`+"\n",
			x+barWidth/2, plotHeight+12, x+barWidth/2, plotHeight+12, html.EscapeString(bar.Name))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
