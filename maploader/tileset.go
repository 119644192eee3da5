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
	"path"
	"sort"

	"github.com/pingcap/errors"
	"github.com/tikv/tileloader/internal/tiled"
)

// CompositeTilesetKind is the tileset class whose tiles are pieces of
// another map file named by the tileset's "filename" property.
const CompositeTilesetKind = "composite-map-tileset"

// Tileset turns the tiles of one Tiled tileset into map elements.
type Tileset interface {
	// Load reads the tileset element. It may ask the loader to wait on
	// tasks that must finish before elements are added.
	Load(el *tiled.Tileset, loader ContentLoader) error
	// TileCount is the number of ids the tileset covers, 0 when unknown.
	TileCount() int

	addElement(c *elementCollector, at TilePlacement) error
}

// newTileset picks the tileset implementation for el. dir is the directory
// of the document el was read from.
func newTileset(el *tiled.Tileset, dir string) Tileset {
	if el.Kind() == CompositeTilesetKind {
		return &CompositeTileset{dir: dir}
	}
	return &StandardTileset{}
}

type standardTile struct {
	kind   string
	props  map[string]string
	filler ProducableFiller
}

// StandardTileset produces elements through the fillers registered for the
// kinds of its tiles. Tiles of unknown kinds produce nothing.
type StandardTileset struct {
	name  string
	count int
	tiles map[int]standardTile
}

// Load implements Tileset.
func (ts *StandardTileset) Load(el *tiled.Tileset, loader ContentLoader) error {
	ts.name = el.Name
	ts.count = el.TileCount
	ts.tiles = make(map[int]standardTile, len(el.Tiles))
	fillers := loader.MapFillers()
	for i := range el.Tiles {
		tile := &el.Tiles[i]
		filler := fillers[tile.Kind()]
		if filler == nil {
			continue
		}
		ts.tiles[tile.ID] = standardTile{kind: tile.Kind(), props: tile.Properties.ToMap(), filler: filler}
	}
	return nil
}

// TileCount implements Tileset.
func (ts *StandardTileset) TileCount() int { return ts.count }

func (ts *StandardTileset) addElement(c *elementCollector, at TilePlacement) error {
	tile, ok := ts.tiles[at.TileID]
	if !ok {
		return nil
	}
	at.Tileset, at.Kind, at.Properties = ts.name, tile.kind, tile.props
	if p := tile.filler.Produce(at); p != nil {
		c.addProducable(at, p)
	}
	return nil
}

// CompositeTileset cuts another map into a columns by rows grid of
// sub-regions, one per tile id.
type CompositeTileset struct {
	dir     string
	name    string
	columns int
	rows    int
	source  *MapLoaderTask
}

// Load implements Tileset. It starts loading the source map and makes the
// loader wait on it.
func (ts *CompositeTileset) Load(el *tiled.Tileset, loader ContentLoader) error {
	ts.name = el.Name
	filename, ok := el.Properties.Lookup("filename")
	if !ok || filename == "" {
		return errors.Annotatef(ErrMalformedDocument, "composite tileset %q has no filename property", el.Name)
	}
	ts.columns, ts.rows = el.Columns, el.Rows()
	if ts.columns <= 0 || ts.rows <= 0 {
		return errors.Annotatef(ErrMalformedDocument, "composite tileset %q has no tile grid", el.Name)
	}
	ts.source = NewMapLoaderTask(resolvePath(ts.dir, filename), loader, loader.MapFillers())
	loader.WaitOn(ts.source)
	return nil
}

// TileCount implements Tileset.
func (ts *CompositeTileset) TileCount() int { return ts.columns * ts.rows }

// Source returns the task loading the source map.
func (ts *CompositeTileset) Source() *MapLoaderTask { return ts.source }

func (ts *CompositeTileset) addElement(c *elementCollector, at TilePlacement) error {
	region, err := ts.source.Result()
	if err != nil {
		return errors.Annotatef(err, "composite tileset %q", ts.name)
	}
	w, h := region.Width()/ts.columns, region.Height()/ts.rows
	c.addSubRegion(at, SubRegion{
		Source: region,
		X:      (at.TileID % ts.columns) * w,
		Y:      (at.TileID / ts.columns) * h,
		Width:  w,
		Height: h,
	})
	return nil
}

type placedTileset struct {
	startGID int
	tileset  Tileset
}

// tilesetMapping resolves global tile ids to a tileset and a local id.
type tilesetMapping []placedTileset

func newTilesetMapping(placed []placedTileset) tilesetMapping {
	m := append(tilesetMapping(nil), placed...)
	sort.SliceStable(m, func(i, j int) bool { return m[i].startGID < m[j].startGID })
	return m
}

func (m tilesetMapping) lookup(gid int) (Tileset, int, error) {
	i := sort.Search(len(m), func(i int) bool { return m[i].startGID > gid }) - 1
	if i < 0 {
		return nil, 0, errors.Annotatef(ErrUnresolvableTileSetID, "gid %d", gid)
	}
	tid := gid - m[i].startGID
	if n := m[i].tileset.TileCount(); n > 0 && tid >= n {
		return nil, 0, errors.Annotatef(ErrUnresolvableTileSetID, "gid %d", gid)
	}
	return m[i].tileset, tid, nil
}

// resolvePath resolves name against the directory of the referring document.
func resolvePath(dir, name string) string {
	if path.IsAbs(name) {
		return path.Clean(name)
	}
	return path.Join(dir, name)
}
