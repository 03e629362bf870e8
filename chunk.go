package main

import (
	"io"

	"github.com/Tnze/go-mc/nbt"
)

// WorldVersion is the Version compound from level.dat. Saves that predate
// the compound get the synthetic descriptor {old numeric version, "old"}.
type WorldVersion struct {
	ID       int32  `nbt:"Id"`
	Name     string `nbt:"Name"`
	Snapshot bool   `nbt:"Snapshot"`
}

type levelDat struct {
	Data levelDatData `nbt:"Data"`
}

type levelDatData struct {
	Version    *WorldVersion `nbt:"Version"`
	OldVersion int32         `nbt:"version"`
}

// chunkFormat selects which of the three schema generations decodes a chunk.
type chunkFormat int

const (
	formatLegacy chunkFormat = iota // up to 1.12-era
	format117                      // 1.13 - 1.17
	format118                      // 1.18+
)

// formatFor gates on the version descriptor. The name check comes first:
// the synthetic "old" descriptor can carry a numerically large id.
func formatFor(v WorldVersion) chunkFormat {
	switch {
	case v.Name == "old" || v.ID <= 2681:
		return formatLegacy
	case v.ID <= 2730:
		return format117
	default:
		return format118
	}
}

// BlockEntity is the subset of tile/block entity data the extractor needs.
// Text1-4 are only present on signs, Items only on containers.
type BlockEntity struct {
	ID    string  `nbt:"id"`
	X     int32   `nbt:"x"`
	Y     int32   `nbt:"y"`
	Z     int32   `nbt:"z"`
	Text1 *string `nbt:"Text1"`
	Text2 *string `nbt:"Text2"`
	Text3 *string `nbt:"Text3"`
	Text4 *string `nbt:"Text4"`
	Items []Item  `nbt:"Items"`
}

// WorldEntity is a world entity; only dropped items carrying a book matter
// here, and only legacy chunks store entities at all.
type WorldEntity struct {
	ID   string    `nbt:"id"`
	Pos  []float64 `nbt:"Pos"`
	Item *Item     `nbt:"Item"`
}

type Item struct {
	ID    string `nbt:"id"`
	Slot  int8   `nbt:"Slot"`
	Count int8   `nbt:"Count"`
	Tag   *Book  `nbt:"tag"`
}

// Book is the item tag of writable_book and written_book items. A nil Pages
// marks a non-book or structurally empty tag and is filtered out.
type Book struct {
	Pages  []string `nbt:"pages"`
	Title  *string  `nbt:"title"`
	Author *string  `nbt:"author"`
}

// ChunkView is the format-independent view the extractor walks. Adapters
// fill only the fields their source schema has.
type ChunkView struct {
	BlockEntities []BlockEntity
	Entities      []WorldEntity
}

type chunkLegacy struct {
	Level struct {
		TileEntities []BlockEntity `nbt:"TileEntities"`
		Entities     []WorldEntity `nbt:"Entities"`
	} `nbt:"Level"`
}

// 1.17 dropped Entities from the chunk; they moved to a sibling entities/
// region tree that this tool does not read.
type chunk117 struct {
	Level struct {
		TileEntities []BlockEntity `nbt:"TileEntities"`
	} `nbt:"Level"`
}

// 1.18 flattened the chunk root and lowercased the names.
type chunk118 struct {
	BlockEntities []BlockEntity `nbt:"block_entities"`
}

// decodeChunk reads one chunk's NBT under the schema the world version
// calls for and normalizes it into a ChunkView.
func decodeChunk(r io.Reader, version WorldVersion) (ChunkView, error) {
	switch formatFor(version) {
	case format118:
		var c chunk118
		if _, err := nbt.NewDecoder(r).Decode(&c); err != nil {
			return ChunkView{}, err
		}
		return ChunkView{BlockEntities: c.BlockEntities}, nil
	case format117:
		var c chunk117
		if _, err := nbt.NewDecoder(r).Decode(&c); err != nil {
			return ChunkView{}, err
		}
		return ChunkView{BlockEntities: c.Level.TileEntities}, nil
	default:
		var c chunkLegacy
		if _, err := nbt.NewDecoder(r).Decode(&c); err != nil {
			return ChunkView{}, err
		}
		return ChunkView{
			BlockEntities: c.Level.TileEntities,
			Entities:      c.Level.Entities,
		}, nil
	}
}
