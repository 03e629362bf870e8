package main

import (
	"math"
	"strings"

	"github.com/sirupsen/logrus"
)

// Sign is one recovered sign with its raw line payloads. Line rendering is
// version-dependent and happens in the reporter.
type Sign struct {
	X, Y, Z int32
	Lines   [4]string
}

// BookWithPos is a writable or written book pinned to the block (or the
// floored entity position) it was found at.
type BookWithPos struct {
	Book    Book
	X, Y, Z int32
}

// isBookItem matches writable_book and written_book while rejecting
// enchanted books and the raw base item.
func isBookItem(id string) bool {
	id = strings.ToLower(id)
	return strings.HasSuffix(id, "book") &&
		!strings.HasSuffix(id, "enchanted_book") &&
		!strings.HasSuffix(id, ":book")
}

// bookTag returns the item's book payload when the item is a book with
// recoverable pages.
func (it *Item) bookTag() (Book, bool) {
	if !isBookItem(it.ID) || it.Tag == nil || it.Tag.Pages == nil {
		return Book{}, false
	}
	return *it.Tag, true
}

func (be *BlockEntity) signLines() ([4]string, bool) {
	var lines [4]string
	for i, text := range []*string{be.Text1, be.Text2, be.Text3, be.Text4} {
		if text == nil {
			return lines, false
		}
		lines[i] = *text
	}
	return lines, true
}

// extractChunk classifies a chunk view into signs and books. Somewhere
// between 1.9.4 and 1.12.2 the sign id changed from "Sign" to
// "minecraft:sign", so all id matching is case-insensitive.
func extractChunk(view ChunkView) ([]Sign, []BookWithPos) {
	var signs []Sign
	var books []BookWithPos

	for i := range view.BlockEntities {
		entity := &view.BlockEntities[i]
		if strings.HasSuffix(strings.ToLower(entity.ID), "sign") {
			lines, ok := entity.signLines()
			if !ok {
				logrus.Warnf("sign at %d,%d,%d is missing text lines, skipping", entity.X, entity.Y, entity.Z)
				continue
			}
			signs = append(signs, Sign{X: entity.X, Y: entity.Y, Z: entity.Z, Lines: lines})
			continue
		}
		for j := range entity.Items {
			if book, ok := entity.Items[j].bookTag(); ok {
				books = append(books, BookWithPos{Book: book, X: entity.X, Y: entity.Y, Z: entity.Z})
			}
		}
	}

	for i := range view.Entities {
		entity := &view.Entities[i]
		if entity.Item == nil || len(entity.Pos) < 3 {
			continue
		}
		if book, ok := entity.Item.bookTag(); ok {
			books = append(books, BookWithPos{
				Book: book,
				X:    int32(math.Floor(entity.Pos[0])),
				Y:    int32(math.Floor(entity.Pos[1])),
				Z:    int32(math.Floor(entity.Pos[2])),
			})
		}
	}
	return signs, books
}
