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

// Package maploader turns Tiled map documents into map regions over several
// frames, driven by a state machine stepped from a background task.
package maploader

import (
	"github.com/pingcap/errors"
	"github.com/tikv/tileloader/internal/tiled"
)

// Errors carried by a MapLoadResult.
var (
	ErrFileContentsNotRetrieved = errors.New("map file contents not retrieved")
	ErrMalformedDocument        = errors.New("malformed map document")
	ErrTilesetNotRetrieved      = errors.New("tileset not retrieved")
	ErrUnresolvableTileSetID    = errors.New("tile id does not belong to any tileset")
	ErrNotFinished              = errors.New("map loading has not finished")
)

// WarningKind identifies a recoverable problem found while loading.
type WarningKind int

const (
	WarnNonCSVTileData WarningKind = iota + 1
	WarnTileLayerHasNoData
	WarnInvalidTileData
)

func (k WarningKind) String() string {
	switch k {
	case WarnNonCSVTileData:
		return "non-csv-tile-data"
	case WarnTileLayerHasNoData:
		return "tile-layer-has-no-data"
	case WarnInvalidTileData:
		return "invalid-tile-data"
	default:
		return "unknown"
	}
}

// Warning is a problem that made the loader skip part of a document.
type Warning struct {
	Kind   WarningKind
	Detail string
}

// warningFor maps a layer decoding error to its warning kind.
func warningFor(err error) WarningKind {
	switch errors.Cause(err) {
	case tiled.ErrNoDataElement:
		return WarnTileLayerHasNoData
	case tiled.ErrNonCSVData:
		return WarnNonCSVTileData
	default:
		return WarnInvalidTileData
	}
}
