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
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

const sampleMap = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="3" height="2" tilewidth="16" tileheight="16">
 <properties>
  <property name="scale" value="2, 1, 2"/>
 </properties>
 <tileset firstgid="1" source="ground.tsx"/>
 <tileset firstgid="10" name="inline" tilewidth="16" tileheight="16" tilecount="4" columns="2" class="composite-map-tileset">
  <properties>
   <property name="filename" value="sub.tmx"/>
  </properties>
  <tile id="1" type="flat"/>
 </tileset>
 <layer id="1" name="ground" width="3" height="2">
  <data encoding="csv">
1,2,0,
10,2147483650,3
</data>
 </layer>
</map>`

func TestParseMap(t *testing.T) {
	m, err := ParseMap(sampleMap)
	require.NoError(t, err)
	require.Equal(t, 3, m.Width)
	require.Equal(t, 2, m.Height)
	require.Len(t, m.Tilesets, 2)
	require.Len(t, m.Layers, 1)

	scale, ok := m.Properties.Lookup("scale")
	require.True(t, ok)
	require.Equal(t, "2, 1, 2", scale)

	external := m.Tilesets[0]
	require.Equal(t, "ground.tsx", external.Source)
	gid, ok := external.StartGID()
	require.True(t, ok)
	require.Equal(t, 1, gid)

	inline := m.Tilesets[1]
	require.Equal(t, "composite-map-tileset", inline.Kind())
	require.Equal(t, 2, inline.Rows())
	file, ok := inline.Properties.Lookup("filename")
	require.True(t, ok)
	require.Equal(t, "sub.tmx", file)
	require.Equal(t, "flat", inline.Tiles[0].Kind())
}

func TestParseMalformed(t *testing.T) {
	_, err := ParseMap("<map><layer></map>")
	require.Equal(t, ErrMalformed, errors.Cause(err))
	_, err = ParseMap(`<tileset firstgid="1"/>`)
	require.Equal(t, ErrMalformed, errors.Cause(err))
	_, err = ParseTileset(`<map/>`)
	require.Equal(t, ErrMalformed, errors.Cause(err))
}

func TestParseMapRejectsHugeSizes(t *testing.T) {
	_, err := ParseMap(`<map width="2147483648" height="2147483648"/>`)
	require.Equal(t, ErrMalformed, errors.Cause(err))
	_, err = ParseMap(`<map width="1" height="1"><layer width="-1" height="4"/></map>`)
	require.Equal(t, ErrMalformed, errors.Cause(err))
	_, err = ParseMap(`<map width="4096" height="4096"><layer width="4096" height="4096"/></map>`)
	require.NoError(t, err)
}

func TestCheckDimensions(t *testing.T) {
	require.NoError(t, CheckDimensions(0, 0))
	require.NoError(t, CheckDimensions(1, MaxGridCells))
	require.Equal(t, ErrInvalidTileData, errors.Cause(CheckDimensions(2, MaxGridCells)))
	require.Equal(t, ErrInvalidTileData, errors.Cause(CheckDimensions(1<<30, 1<<30)))
	require.Equal(t, ErrInvalidTileData, errors.Cause(CheckDimensions(3, -1)))

	_, err := DecodeLayer(&Layer{Name: "huge", Width: 1 << 30, Height: 1 << 30, Data: &Data{Encoding: "csv", Text: "1"}})
	require.Equal(t, ErrInvalidTileData, errors.Cause(err))
}

func TestTilesetKindAndStartGID(t *testing.T) {
	ts, err := ParseTileset(`<tileset name="ramps" tilecount="5" columns="2">
 <properties><property name="type" value="slopes"/></properties>
 <tile id="0" class="ramp"/>
</tileset>`)
	require.NoError(t, err)
	require.Equal(t, "slopes", ts.Kind())
	require.Equal(t, 3, ts.Rows())
	require.Equal(t, "ramp", ts.Tiles[0].Kind())
	_, ok := ts.StartGID()
	require.False(t, ok)

	ts.FirstGID = "x"
	_, ok = ts.StartGID()
	require.False(t, ok)
}

func TestDecodeLayer(t *testing.T) {
	m, err := ParseMap(sampleMap)
	require.NoError(t, err)
	grid, err := DecodeLayer(&m.Layers[0])
	require.NoError(t, err)
	require.Equal(t, 3, grid.Width())
	require.Equal(t, 2, grid.Height())
	require.Equal(t, uint32(1), grid.At(0, 0))
	require.Equal(t, uint32(0), grid.At(2, 0))
	require.Equal(t, uint32(10), grid.At(0, 1))
	require.Equal(t, 2, GID(grid.At(1, 1)))
	require.Equal(t, uint32(3), grid.At(2, 1))
}

func TestDecodeLayerWarnings(t *testing.T) {
	cases := []struct {
		layer Layer
		err   error
	}{
		{Layer{Name: "nodata", Width: 1, Height: 1}, ErrNoDataElement},
		{Layer{Width: 1, Height: 1, Data: &Data{Encoding: "base64", Text: "AAAA"}}, ErrNonCSVData},
		{Layer{Width: 2, Height: 1, Data: &Data{Encoding: "csv", Text: "1,x"}}, ErrInvalidTileData},
		{Layer{Width: 1, Height: 1, Data: &Data{Encoding: "csv", Text: "1,2"}}, ErrInvalidTileData},
		{Layer{Width: 2, Height: 2, Data: &Data{Encoding: "csv", Text: "  \n"}}, nil},
	}
	for _, c := range cases {
		grid, err := DecodeLayer(&c.layer)
		if c.err == nil {
			require.NoError(t, err)
			require.Equal(t, uint32(0), grid.At(1, 1))
			continue
		}
		require.Equal(t, c.err, errors.Cause(err), c.layer.Name)
	}
}

func TestParseScale(t *testing.T) {
	scale, ok := ParseScale("2")
	require.True(t, ok)
	require.Equal(t, [3]float64{2, 2, 2}, scale)

	scale, ok = ParseScale(" 1.5, 1 ,3")
	require.True(t, ok)
	require.Equal(t, [3]float64{1.5, 1, 3}, scale)

	for _, bad := range []string{"", "1,2", "1,2,3,4", "a"} {
		_, ok = ParseScale(bad)
		require.False(t, ok, bad)
	}
}

func TestGrid(t *testing.T) {
	g := NewGrid[string](2, 2)
	require.True(t, g.Contains(1, 1))
	require.False(t, g.Contains(2, 0))
	require.False(t, g.Contains(0, -1))
	g.Set(1, 0, "b")
	var seen []string
	g.Each(func(x, y int, v string) {
		if v != "" {
			seen = append(seen, v)
			require.Equal(t, 1, x)
			require.Equal(t, 0, y)
		}
	})
	require.Equal(t, []string{"b"}, seen)
	require.Zero(t, NewGrid[int](-1, 3).Width())
}
