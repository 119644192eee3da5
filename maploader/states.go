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

	"github.com/pingcap/errors"
	"github.com/tikv/tileloader/internal/tiled"
	"github.com/tikv/tileloader/platform"
	"github.com/tikv/tileloader/statemachine"
	"github.com/tikv/tileloader/tasks"
)

// BaseState is one step of loading a map. The set of states is closed:
// FileContentsWaitState, InitialDocumentReadState, TileSetLoadState,
// MapElementCollectorState and ExpiredState.
type BaseState interface {
	// UpdateProgress does the work of the state and stages the next one
	// through sw when it is done.
	UpdateProgress(sw statemachine.Switcher[BaseState], loader ContentLoader) MapLoadResult
	// Name is used in logs and metrics.
	Name() string

	shared() *sharedState
}

// sharedState travels from each state to the next one.
type sharedState struct {
	filename string
	warnings []Warning
}

type baseState struct {
	sh sharedState
}

func (b *baseState) shared() *sharedState { return &b.sh }

func (b *baseState) warn(loader ContentLoader, kind WarningKind, detail string) {
	b.sh.warnings = append(b.sh.warnings, Warning{Kind: kind, Detail: detail})
	loader.AddWarning(kind)
}

// dir is the directory names in the document are resolved against.
func (b *baseState) dir() string {
	return path.Dir(b.sh.filename)
}

func copySharedState(current, next BaseState) {
	sh := *current.shared()
	sh.warnings = append([]Warning(nil), sh.warnings...)
	*next.shared() = sh
}

// FileContentsWaitState waits for the map file.
type FileContentsWaitState struct {
	baseState
	contents platform.Future[string]
}

func (*FileContentsWaitState) Name() string { return "file-contents-wait" }

// UpdateProgress implements BaseState.
func (s *FileContentsWaitState) UpdateProgress(sw statemachine.Switcher[BaseState], _ ContentLoader) MapLoadResult {
	contents, ok, err := s.contents.Retrieve()
	if err != nil {
		return failed(errors.Annotatef(ErrFileContentsNotRetrieved, "%s: %v", s.sh.filename, err))
	}
	if !ok {
		return MapLoadResult{}
	}
	doc, err := tiled.ParseMap(contents)
	if err != nil {
		return failed(errors.Annotatef(ErrMalformedDocument, "%s: %v", s.sh.filename, err))
	}
	sw.SetNextState(&InitialDocumentReadState{doc: doc})
	return MapLoadResult{}
}

// pendingTileset is a tileset whose element may still be in flight.
type pendingTileset struct {
	startGID int
	dir      string
	source   string
	contents platform.Future[string]
	element  *tiled.Tileset
}

// retrieve returns the tileset element once it is available.
func (p *pendingTileset) retrieve() (*tiled.Tileset, bool, error) {
	if p.element != nil {
		return p.element, true, nil
	}
	contents, ok, err := p.contents.Retrieve()
	if err != nil {
		return nil, false, errors.Annotatef(ErrTilesetNotRetrieved, "%s: %v", p.source, err)
	}
	if !ok {
		return nil, false, nil
	}
	el, err := tiled.ParseTileset(contents)
	if err != nil {
		return nil, false, errors.Annotatef(ErrMalformedDocument, "%s: %v", p.source, err)
	}
	p.element = el
	return el, true, nil
}

// InitialDocumentReadState reads the layers and starts fetching external
// tilesets.
type InitialDocumentReadState struct {
	baseState
	doc *tiled.Map
}

func (*InitialDocumentReadState) Name() string { return "initial-document-read" }

// UpdateProgress implements BaseState.
func (s *InitialDocumentReadState) UpdateProgress(sw statemachine.Switcher[BaseState], loader ContentLoader) MapLoadResult {
	layers := make([]tiled.Grid[uint32], 0, len(s.doc.Layers))
	for i := range s.doc.Layers {
		grid, err := tiled.DecodeLayer(&s.doc.Layers[i])
		if err != nil {
			s.warn(loader, warningFor(err), err.Error())
			continue
		}
		layers = append(layers, grid)
	}

	pending := make([]*pendingTileset, 0, len(s.doc.Tilesets))
	for i := range s.doc.Tilesets {
		el := &s.doc.Tilesets[i]
		gid, ok := el.StartGID()
		if !ok {
			s.warn(loader, WarnInvalidTileData, "tileset "+el.Name+" has no firstgid")
			continue
		}
		if el.Source == "" {
			pending = append(pending, &pendingTileset{startGID: gid, dir: s.dir(), element: el})
			continue
		}
		source := resolvePath(s.dir(), el.Source)
		pending = append(pending, &pendingTileset{
			startGID: gid,
			dir:      path.Dir(source),
			source:   source,
			contents: loader.PromiseFileContents(source),
		})
	}
	sw.SetNextState(&TileSetLoadState{doc: s.doc, layers: layers, pending: pending})
	return MapLoadResult{}
}

// TileSetLoadState waits for external tilesets and loads every tileset.
type TileSetLoadState struct {
	baseState
	doc     *tiled.Map
	layers  []tiled.Grid[uint32]
	pending []*pendingTileset
	loaded  []placedTileset
}

func (*TileSetLoadState) Name() string { return "tileset-load" }

// UpdateProgress implements BaseState.
func (s *TileSetLoadState) UpdateProgress(sw statemachine.Switcher[BaseState], loader ContentLoader) MapLoadResult {
	waiting := s.pending[:0]
	for _, p := range s.pending {
		el, ok, err := p.retrieve()
		if err != nil {
			return failed(err)
		}
		if !ok {
			waiting = append(waiting, p)
			continue
		}
		ts := newTileset(el, p.dir)
		if err := ts.Load(el, loader); err != nil {
			return failed(err)
		}
		s.loaded = append(s.loaded, placedTileset{startGID: p.startGID, tileset: ts})
	}
	s.pending = waiting
	if len(s.pending) == 0 {
		sw.SetNextState(&MapElementCollectorState{doc: s.doc, layers: s.layers, tilesets: s.loaded})
	}
	return MapLoadResult{}
}

// MapElementCollectorState asks every tileset for the elements of its tiles
// and builds the region.
type MapElementCollectorState struct {
	baseState
	doc      *tiled.Map
	layers   []tiled.Grid[uint32]
	tilesets []placedTileset
}

func (*MapElementCollectorState) Name() string { return "map-element-collector" }

// UpdateProgress implements BaseState.
func (s *MapElementCollectorState) UpdateProgress(sw statemachine.Switcher[BaseState], _ ContentLoader) MapLoadResult {
	mapping := newTilesetMapping(s.tilesets)
	width, height := s.doc.Width, s.doc.Height
	for _, layer := range s.layers {
		width, height = max(width, layer.Width()), max(height, layer.Height())
	}
	c := newElementCollector(width, height)
	for li, layer := range s.layers {
		var err error
		layer.Each(func(x, y int, raw uint32) {
			gid := tiled.GID(raw)
			if err != nil || gid == 0 {
				return
			}
			ts, tid, lerr := mapping.lookup(gid)
			if lerr != nil {
				err = errors.Annotatef(lerr, "layer %d at (%d, %d)", li, x, y)
				return
			}
			err = ts.addElement(c, TilePlacement{Layer: li, X: x, Y: y, TileID: tid})
		})
		if err != nil {
			return failed(err)
		}
	}
	sw.SetNextState(&ExpiredState{})
	return succeeded(c.finish(s.scale(), s.sh.warnings))
}

func (s *MapElementCollectorState) scale() tasks.Vector {
	if v, ok := s.doc.Properties.Lookup("scale"); ok {
		if scale, ok := tiled.ParseScale(v); ok {
			return scale
		}
	}
	return tasks.Vector{1, 1, 1}
}

// ExpiredState is reached after a result has been produced. It does nothing.
type ExpiredState struct {
	baseState
}

func (*ExpiredState) Name() string { return "expired" }

// UpdateProgress implements BaseState.
func (*ExpiredState) UpdateProgress(statemachine.Switcher[BaseState], ContentLoader) MapLoadResult {
	return MapLoadResult{}
}
