// Copyright 2025 TiKV Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tiled

import (
	"strconv"
	"strings"

	"github.com/pingcap/errors"
)

var (
	ErrNoDataElement   = errors.New("tiled: tile layer has no data element")
	ErrNonCSVData      = errors.New("tiled: tile data is not csv encoded")
	ErrInvalidTileData = errors.New("tiled: invalid tile data")
)

// Flip flags Tiled stores in the high bits of a global tile id.
const (
	FlippedHorizontally uint32 = 0x80000000
	FlippedVertically   uint32 = 0x40000000
	FlippedDiagonally   uint32 = 0x20000000

	flipMask = FlippedHorizontally | FlippedVertically | FlippedDiagonally
)

// GID strips the flip flags from a raw global tile id.
func GID(raw uint32) int {
	return int(raw &^ flipMask)
}

// MaxGridCells bounds the cell count of any grid built from a document.
const MaxGridCells = 1 << 24

// CheckDimensions fails when a width by height grid is negative or holds more
// than MaxGridCells cells.
func CheckDimensions(width, height int) error {
	if width < 0 || height < 0 {
		return errors.Annotatef(ErrInvalidTileData, "negative size %dx%d", width, height)
	}
	if width > 0 && height > MaxGridCells/width {
		return errors.Annotatef(ErrInvalidTileData, "size %dx%d exceeds %d cells", width, height, MaxGridCells)
	}
	return nil
}

// Grid is a width by height row-major grid.
type Grid[T any] struct {
	width, height int
	cells         []T
}

// NewGrid creates a grid filled with zero values. Sizes rejected by
// CheckDimensions give an empty grid.
func NewGrid[T any](width, height int) Grid[T] {
	if CheckDimensions(width, height) != nil {
		width, height = 0, 0
	}
	return Grid[T]{width: width, height: height, cells: make([]T, width*height)}
}

func (g Grid[T]) Width() int  { return g.width }
func (g Grid[T]) Height() int { return g.height }

// Contains reports whether (x, y) is inside the grid.
func (g Grid[T]) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// At returns the cell at (x, y), which must be inside the grid.
func (g Grid[T]) At(x, y int) T {
	return g.cells[y*g.width+x]
}

// Set stores v at (x, y), which must be inside the grid.
func (g Grid[T]) Set(x, y int, v T) {
	g.cells[y*g.width+x] = v
}

// Each calls f for every cell in row-major order.
func (g Grid[T]) Each(f func(x, y int, v T)) {
	for i, v := range g.cells {
		f(i%g.width, i/g.width, v)
	}
}

// DecodeLayer reads the raw global ids of a CSV encoded layer. A layer
// without text is all empty tiles.
func DecodeLayer(l *Layer) (Grid[uint32], error) {
	if err := CheckDimensions(l.Width, l.Height); err != nil {
		return Grid[uint32]{}, errors.Annotatef(err, "layer %q", l.Name)
	}
	grid := NewGrid[uint32](l.Width, l.Height)
	if l.Data == nil {
		return grid, errors.Annotatef(ErrNoDataElement, "layer %q", l.Name)
	}
	if l.Data.Encoding != "csv" {
		return grid, errors.Annotatef(ErrNonCSVData, "layer %q encoding %q", l.Name, l.Data.Encoding)
	}
	text := strings.TrimSpace(l.Data.Text)
	if text == "" {
		return grid, nil
	}
	for i, field := range strings.Split(text, ",") {
		if i >= len(grid.cells) {
			return grid, errors.Annotatef(ErrInvalidTileData, "layer %q has more than %d entries", l.Name, len(grid.cells))
		}
		v, err := strconv.ParseUint(strings.TrimSpace(field), 10, 32)
		if err != nil {
			return grid, errors.Annotatef(ErrInvalidTileData, "layer %q entry %d", l.Name, i)
		}
		grid.cells[i] = uint32(v)
	}
	return grid, nil
}
