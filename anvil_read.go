package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"
)

const anvilMaxOffsets = 1024
const anvilSectorSize = 4096

var ErrNoChunk = errors.New("anvil: chunk not found")
var ErrInvalidChunkLength = errors.New("anvil: invalid chunk length")

type anvilCompressionScheme byte

const (
	anvilCompressionGzip anvilCompressionScheme = 1
	anvilCompressionZlib anvilCompressionScheme = 2
	anvilCompressionNone anvilCompressionScheme = 3
)

// UnsupportedCompressionError reports a chunk stored with a compression
// scheme other than zlib. Vanilla saves use zlib for every region chunk, so
// anything else is skipped rather than decoded.
type UnsupportedCompressionError struct {
	Scheme byte
}

func (e UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("anvil: unsupported compression type: %d", e.Scheme)
}

// Struct AnvilReader allows you to read an Anvil region file and extract its chunks. The reader is not safe for
// concurrent access; usage should be protected by a mutex if concurrent access is desired.
type AnvilReader struct {
	source      io.ReadSeeker
	sectorTable []int32
	Name        string
}

// Creates an AnvilReader. The ownership of the source is transferred to this reader.
func NewAnvilReader(source io.ReadSeeker) (reader *AnvilReader, err error) {
	reader = &AnvilReader{
		source:      source,
		sectorTable: make([]int32, anvilMaxOffsets),
	}

	if file, ok := source.(*os.File); ok {
		reader.Name = file.Name()
	}
	err = reader.readSectorTable()
	return
}

func (world *AnvilReader) readSectorTable() (err error) {
	_, err = world.source.Seek(0, io.SeekStart)
	if err != nil {
		return err
	}

	rawSectorData := make([]byte, anvilSectorSize)
	_, err = io.ReadFull(world.source, rawSectorData)
	if err != nil {
		return err
	}

	rawSectorIn := bytes.NewReader(rawSectorData)
	err = binary.Read(rawSectorIn, binary.BigEndian, world.sectorTable)
	return
}

// ReadChunk reads an Anvil chunk at the specified X and Z coordinates. Note that these coordinates are relative to the
// region file and are not chunk coordinates. If successful, the provided reader may be provided to an NBT deserialization
// routine.
func (world *AnvilReader) ReadChunk(x, z int) (chunk io.Reader, err error) {
	offset := world.sectorTable[x+z*32]

	sectorNumber := offset >> 8
	occupiedSectors := offset & 0xff
	if sectorNumber == 0 || occupiedSectors == 0 {
		err = ErrNoChunk
		return
	}

	if _, err = world.source.Seek(int64(sectorNumber*anvilSectorSize), io.SeekStart); err != nil {
		return
	}

	sectorData := make([]byte, occupiedSectors*anvilSectorSize)
	if _, err = io.ReadFull(world.source, sectorData); err != nil {
		return
	}

	sectorReader := bytes.NewReader(sectorData)
	var sectorHeader struct {
		Length      int32
		Compression anvilCompressionScheme
	}
	if err = binary.Read(sectorReader, binary.BigEndian, &sectorHeader); err != nil {
		return
	}

	// Length counts the compression byte but not itself, so a run of n
	// sectors can hold a Length of at most n*4096-4.
	if sectorHeader.Length <= 0 || sectorHeader.Length > int32(len(sectorData)-4) {
		return nil, ErrInvalidChunkLength
	}

	// Length counts the compression byte, so the payload is Length-1 bytes.
	chunkStream := io.LimitReader(sectorReader, int64(sectorHeader.Length-1))
	switch sectorHeader.Compression {
	case anvilCompressionZlib:
		return zlib.NewReader(chunkStream)
	default:
		return nil, UnsupportedCompressionError{Scheme: byte(sectorHeader.Compression)}
	}
}

// ChunkExists reports whether the location table has a usable entry: both a
// sector offset and a sector count. A zero count means the chunk is absent
// even when a stale offset remains in the table.
func (world *AnvilReader) ChunkExists(x, z int) bool {
	entry := world.sectorTable[x+z*32]
	return entry>>8 != 0 && entry&0xff != 0
}

func (world *AnvilReader) Close() error {
	if closer, ok := world.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
