package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WriteReports writes the signs and books reports into dir, named after the
// save directory.
func (world *AnvilWorld) WriteReports(dir string) error {
	signsPath := filepath.Join(dir, fmt.Sprintf("signs-%s.txt", world.Name))
	err := writeFileWith(signsPath, func(w io.Writer) error {
		return writeSignReport(w, world.Version, world.Signs)
	})
	if err != nil {
		return errors.Wrap(err, "writing signs report")
	}

	booksPath := filepath.Join(dir, fmt.Sprintf("books-%s.txt", world.Name))
	err = writeFileWith(booksPath, func(w io.Writer) error {
		return writeBookReport(w, world.Books)
	})
	return errors.Wrap(err, "writing books report")
}

func writeFileWith(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func writeSignReport(w io.Writer, version WorldVersion, signs []Sign) error {
	buffered := bufio.NewWriter(w)
	for _, sign := range signs {
		fmt.Fprintf(buffered, "========== sign location: %d,%d,%d ==========\n", sign.X, sign.Y, sign.Z)
		for _, line := range sign.Lines {
			fmt.Fprintf(buffered, "text: %s\n", renderSignLine(version, line))
		}
		fmt.Fprintln(buffered)
	}
	return buffered.Flush()
}

func writeBookReport(w io.Writer, books []BookWithPos) error {
	buffered := bufio.NewWriter(w)
	for _, entry := range books {
		fmt.Fprintf(buffered, "=========== book location: %d,%d,%d ==========\n", entry.X, entry.Y, entry.Z)
		fmt.Fprintf(buffered, "title: %s\n", orUnknown(entry.Book.Title))
		fmt.Fprintf(buffered, "author: %s\n", orUnknown(entry.Book.Author))
		fmt.Fprintf(buffered, "pages: %d\n", len(entry.Book.Pages))
		for i, page := range entry.Book.Pages {
			fmt.Fprintf(buffered, "---------- page %d ----------\n", i+1)
			fmt.Fprintln(buffered, stripFormatting(page))
		}
		fmt.Fprintln(buffered)
	}
	return buffered.Flush()
}

// Writable books carry no title or author.
func orUnknown(s *string) string {
	if s == nil {
		return "unknown"
	}
	return *s
}
