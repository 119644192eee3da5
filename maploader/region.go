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

package maploader

import (
	"github.com/tikv/tileloader/internal/tiled"
	"github.com/tikv/tileloader/tasks"
)

// TilePlacement describes one non-empty tile of a layer.
type TilePlacement struct {
	Layer      int
	X, Y       int
	TileID     int
	Tileset    string
	Kind       string
	Properties map[string]string
}

// Producable is a tile derived element that a geometry backend later turns
// into render and collision objects.
type Producable interface {
	Placement() TilePlacement
}

// ProducableFiller creates producables for tiles of one kind.
type ProducableFiller interface {
	// Produce returns the element for at, or nil to leave the tile empty.
	Produce(at TilePlacement) Producable
}

// ProducableFillerFunc adapts a function to ProducableFiller.
type ProducableFillerFunc func(at TilePlacement) Producable

// Produce implements ProducableFiller.
func (f ProducableFillerFunc) Produce(at TilePlacement) Producable {
	return f(at)
}

// MapFillers maps a tile kind to its filler.
type MapFillers map[string]ProducableFiller

// SubRegion is a rectangle of another loaded map.
type SubRegion struct {
	Source        *MapRegion
	X, Y          int
	Width, Height int
}

// SubRegionPlacement places a SubRegion on a tile of the map.
type SubRegionPlacement struct {
	Layer     int
	X, Y      int
	SubRegion SubRegion
}

// MapRegion is a fully loaded map.
type MapRegion struct {
	cells      tiled.Grid[[]Producable]
	subRegions []SubRegionPlacement
	scale      tasks.Vector
	warnings   []Warning
}

// Width returns the width in tiles.
func (r *MapRegion) Width() int { return r.cells.Width() }

// Height returns the height in tiles.
func (r *MapRegion) Height() int { return r.cells.Height() }

// Scale returns the east-west, up-down and north-south scale factors.
func (r *MapRegion) Scale() tasks.Vector { return r.scale }

// Warnings returns the problems skipped while loading.
func (r *MapRegion) Warnings() []Warning { return r.warnings }

// SubRegions returns the composite tiles of the map, in layer order.
func (r *MapRegion) SubRegions() []SubRegionPlacement { return r.subRegions }

// ProducablesAt returns the elements stacked on (x, y), bottom layer first.
func (r *MapRegion) ProducablesAt(x, y int) []Producable {
	if !r.cells.Contains(x, y) {
		return nil
	}
	return r.cells.At(x, y)
}

// ProducableCount returns the number of elements over all tiles.
func (r *MapRegion) ProducableCount() int {
	n := 0
	r.cells.Each(func(_, _ int, ps []Producable) { n += len(ps) })
	return n
}

// elementCollector gathers what tilesets produce for a map.
type elementCollector struct {
	cells      tiled.Grid[[]Producable]
	subRegions []SubRegionPlacement
}

func newElementCollector(width, height int) *elementCollector {
	return &elementCollector{cells: tiled.NewGrid[[]Producable](width, height)}
}

func (c *elementCollector) addProducable(at TilePlacement, p Producable) {
	if !c.cells.Contains(at.X, at.Y) {
		return
	}
	c.cells.Set(at.X, at.Y, append(c.cells.At(at.X, at.Y), p))
}

func (c *elementCollector) addSubRegion(at TilePlacement, sub SubRegion) {
	c.subRegions = append(c.subRegions, SubRegionPlacement{Layer: at.Layer, X: at.X, Y: at.Y, SubRegion: sub})
}

func (c *elementCollector) finish(scale tasks.Vector, warnings []Warning) *MapRegion {
	return &MapRegion{
		cells:      c.cells,
		subRegions: c.subRegions,
		scale:      scale,
		warnings:   append([]Warning(nil), warnings...),
	}
}

// MapLoadResult is empty while loading continues, and otherwise holds
// either a region or an error.
type MapLoadResult struct {
	region *MapRegion
	err    error
}

func succeeded(region *MapRegion) MapLoadResult { return MapLoadResult{region: region} }

func failed(err error) MapLoadResult { return MapLoadResult{err: err} }

// IsEmpty reports whether loading is still in progress.
func (r MapLoadResult) IsEmpty() bool { return r.region == nil && r.err == nil }

// Region returns the loaded region, nil on error or while loading.
func (r MapLoadResult) Region() *MapRegion { return r.region }

// Err returns the loading error.
func (r MapLoadResult) Err() error { return r.err }
