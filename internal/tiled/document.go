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

// Package tiled decodes the parts of Tiled editor documents (maps and
// tilesets) that the map loader reads.
package tiled

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pingcap/errors"
)

// ErrMalformed is returned when a document is not the expected XML.
var ErrMalformed = errors.New("tiled: malformed document")

// Property is one <property> of a <properties> list.
type Property struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

// Properties is a <properties> element. A nil *Properties has no entries.
type Properties struct {
	List []Property `xml:"property"`
}

// Lookup returns the value of the last property called name.
func (p *Properties) Lookup(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	for i := len(p.List) - 1; i >= 0; i-- {
		if p.List[i].Name == name {
			return p.List[i].Value, true
		}
	}
	return "", false
}

// ToMap flattens the list, later entries winning.
func (p *Properties) ToMap() map[string]string {
	if p == nil || len(p.List) == 0 {
		return nil
	}
	m := make(map[string]string, len(p.List))
	for _, prop := range p.List {
		m[prop.Name] = prop.Value
	}
	return m
}

// Map is a <map> document.
type Map struct {
	XMLName    xml.Name    `xml:"map"`
	Width      int         `xml:"width,attr"`
	Height     int         `xml:"height,attr"`
	TileWidth  int         `xml:"tilewidth,attr"`
	TileHeight int         `xml:"tileheight,attr"`
	Properties *Properties `xml:"properties"`
	Tilesets   []Tileset   `xml:"tileset"`
	Layers     []Layer     `xml:"layer"`
}

// Tileset is a <tileset>, either inline in a map, a reference to an external
// file, or the root of a .tsx document.
type Tileset struct {
	XMLName    xml.Name    `xml:"tileset"`
	FirstGID   string      `xml:"firstgid,attr"`
	Source     string      `xml:"source,attr"`
	Name       string      `xml:"name,attr"`
	Class      string      `xml:"class,attr"`
	TileWidth  int         `xml:"tilewidth,attr"`
	TileHeight int         `xml:"tileheight,attr"`
	TileCount  int         `xml:"tilecount,attr"`
	Columns    int         `xml:"columns,attr"`
	Properties *Properties `xml:"properties"`
	Tiles      []Tile      `xml:"tile"`
}

// StartGID parses firstgid. It reports false when the attribute is missing
// or not a positive integer.
func (ts *Tileset) StartGID() (int, bool) {
	if ts.FirstGID == "" {
		return 0, false
	}
	gid, err := strconv.Atoi(strings.TrimSpace(ts.FirstGID))
	if err != nil || gid <= 0 {
		return 0, false
	}
	return gid, true
}

// Kind is the class of the tileset, falling back to its "type" property.
func (ts *Tileset) Kind() string {
	if ts.Class != "" {
		return ts.Class
	}
	kind, _ := ts.Properties.Lookup("type")
	return kind
}

// Rows is the number of tile rows, derived from tilecount and columns.
func (ts *Tileset) Rows() int {
	if ts.Columns <= 0 {
		return 0
	}
	return (ts.TileCount + ts.Columns - 1) / ts.Columns
}

// Tile is a <tile> of a tileset. Only tiles with a type, class or
// properties appear in a document.
type Tile struct {
	ID         int         `xml:"id,attr"`
	Type       string      `xml:"type,attr"`
	Class      string      `xml:"class,attr"`
	Properties *Properties `xml:"properties"`
}

// Kind returns the class of the tile. Older documents call it type.
func (t *Tile) Kind() string {
	if t.Class != "" {
		return t.Class
	}
	return t.Type
}

// Layer is a tile <layer>.
type Layer struct {
	Name   string `xml:"name,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
	Data   *Data  `xml:"data"`
}

// Data is the <data> of a layer.
type Data struct {
	Encoding string `xml:"encoding,attr"`
	Text     string `xml:",chardata"`
}

// ParseMap decodes a .tmx document. A map or layer whose size fails
// CheckDimensions is malformed.
func ParseMap(contents string) (*Map, error) {
	var m Map
	if err := xml.Unmarshal([]byte(contents), &m); err != nil {
		return nil, errors.Annotate(ErrMalformed, err.Error())
	}
	if err := CheckDimensions(m.Width, m.Height); err != nil {
		return nil, errors.Annotatef(ErrMalformed, "map: %v", err)
	}
	for i := range m.Layers {
		l := &m.Layers[i]
		if err := CheckDimensions(l.Width, l.Height); err != nil {
			return nil, errors.Annotatef(ErrMalformed, "layer %q: %v", l.Name, err)
		}
	}
	return &m, nil
}

// ParseTileset decodes a .tsx document.
func ParseTileset(contents string) (*Tileset, error) {
	var ts Tileset
	if err := xml.Unmarshal([]byte(contents), &ts); err != nil {
		return nil, errors.Annotate(ErrMalformed, err.Error())
	}
	return &ts, nil
}

// ParseScale parses a scale property: one factor for all axes or three
// comma separated factors.
func ParseScale(s string) ([3]float64, bool) {
	var scale [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 1 && len(parts) != 3 {
		return scale, false
	}
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return scale, false
		}
		scale[i] = f
	}
	if len(parts) == 1 {
		scale[1], scale[2] = scale[0], scale[0]
	}
	return scale, true
}
