package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

// NBT fixture shapes. The production structs use pointers for optional
// fields, so the encoding side gets its own plain-valued mirrors.

type fxSign struct {
	ID    string `nbt:"id"`
	X     int32  `nbt:"x"`
	Y     int32  `nbt:"y"`
	Z     int32  `nbt:"z"`
	Text1 string `nbt:"Text1"`
	Text2 string `nbt:"Text2"`
	Text3 string `nbt:"Text3"`
	Text4 string `nbt:"Text4"`
}

// fxBrokenSign is a sign that lost half its text fields.
type fxBrokenSign struct {
	ID    string `nbt:"id"`
	X     int32  `nbt:"x"`
	Y     int32  `nbt:"y"`
	Z     int32  `nbt:"z"`
	Text1 string `nbt:"Text1"`
	Text2 string `nbt:"Text2"`
}

type fxBook struct {
	Pages  []string `nbt:"pages"`
	Title  string   `nbt:"title"`
	Author string   `nbt:"author"`
}

type fxItem struct {
	ID    string `nbt:"id"`
	Slot  int8   `nbt:"Slot"`
	Count int8   `nbt:"Count"`
	Tag   fxBook `nbt:"tag"`
}

// fxBareItem has no tag compound at all.
type fxBareItem struct {
	ID    string `nbt:"id"`
	Slot  int8   `nbt:"Slot"`
	Count int8   `nbt:"Count"`
}

type fxChest[T any] struct {
	ID    string `nbt:"id"`
	X     int32  `nbt:"x"`
	Y     int32  `nbt:"y"`
	Z     int32  `nbt:"z"`
	Items []T    `nbt:"Items"`
}

type fxEntity struct {
	ID   string    `nbt:"id"`
	Pos  []float64 `nbt:"Pos"`
	Item fxItem    `nbt:"Item"`
}

type fxChunk118[T any] struct {
	BlockEntities []T `nbt:"block_entities"`
}

type fxChunk117[T any] struct {
	Level struct {
		TileEntities []T `nbt:"TileEntities"`
	} `nbt:"Level"`
}

type fxChunkLegacy[B any, E any] struct {
	Level struct {
		TileEntities []B `nbt:"TileEntities"`
		Entities     []E `nbt:"Entities"`
	} `nbt:"Level"`
}

type fxVersion struct {
	ID       int32  `nbt:"Id"`
	Name     string `nbt:"Name"`
	Snapshot bool   `nbt:"Snapshot"`
}

type fxLevelDatModern struct {
	Data struct {
		Version    fxVersion `nbt:"Version"`
		OldVersion int32     `nbt:"version"`
	} `nbt:"Data"`
}

type fxLevelDatLegacy struct {
	Data struct {
		OldVersion int32 `nbt:"version"`
	} `nbt:"Data"`
}

func encodeNBT(t *testing.T, v any) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, nbt.NewEncoder(&buf).Encode(v, ""))
	return buf.Bytes()
}

func deflate(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type regionChunk struct {
	X, Z   int
	Data   []byte // compressed payload
	Scheme byte
}

// buildRegion lays out a minimal .mca image: the 4 KiB location table, the
// 4 KiB timestamp table, then one padded sector run per chunk.
func buildRegion(t *testing.T, chunks []regionChunk) []byte {
	t.Helper()
	header := make([]byte, 2*anvilSectorSize)
	var body bytes.Buffer
	sector := 2
	for _, c := range chunks {
		payload := make([]byte, 5+len(c.Data))
		binary.BigEndian.PutUint32(payload, uint32(len(c.Data)+1))
		payload[4] = c.Scheme
		copy(payload[5:], c.Data)

		sectors := (len(payload) + anvilSectorSize - 1) / anvilSectorSize
		entry := uint32(sector)<<8 | uint32(sectors)
		binary.BigEndian.PutUint32(header[4*(c.X+32*c.Z):], entry)

		padded := make([]byte, sectors*anvilSectorSize)
		copy(padded, payload)
		body.Write(padded)
		sector += sectors
	}
	return append(header, body.Bytes()...)
}

func zlibRegionChunk(t *testing.T, x, z int, chunkNBT any) regionChunk {
	t.Helper()
	return regionChunk{
		X:      x,
		Z:      z,
		Data:   deflate(t, encodeNBT(t, chunkNBT)),
		Scheme: byte(anvilCompressionZlib),
	}
}

func writeLevelDat(t *testing.T, path string, v any) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(file)
	require.NoError(t, nbt.NewEncoder(gz).Encode(v, ""))
	require.NoError(t, gz.Close())
	require.NoError(t, file.Close())
}

func strPtr(s string) *string { return &s }
