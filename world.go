package main

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var regionNamePattern = regexp.MustCompile(`r\.(-?\d+)\.(-?\d+)\.mca`)

// regionResult is one work unit's owned output.
type regionResult struct {
	signs []Sign
	books []BookWithPos
}

// AnvilWorld holds everything recovered from one save directory, sorted and
// ready for the reporter.
type AnvilWorld struct {
	Name    string
	Version WorldVersion
	Signs   []Sign
	Books   []BookWithPos
}

// OpenAnvilWorld reads the save's version, fans one work unit per region
// file out over the CPUs, and joins the results into stable (x, z, y) order.
func OpenAnvilWorld(root string) (*AnvilWorld, error) {
	version, err := readWorldVersion(filepath.Join(root, "level.dat"))
	if err != nil {
		return nil, err
	}
	logrus.Infof("world_version: %s id: %d", version.Name, version.ID)

	regionDir := filepath.Join(root, "region")
	entries, err := os.ReadDir(regionDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "reading region folder")
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(regionDir, entry.Name()))
	}

	// Indexed results keep the merge in directory order, so ties in the
	// final sort cannot reorder between runs.
	results := make([]regionResult, len(paths))
	group := new(errgroup.Group)
	group.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			results[i].signs, results[i].books = extractRegion(path, version)
			return nil
		})
	}
	// Work units never fail; whatever they cannot read they skip.
	_ = group.Wait()

	var signs []Sign
	var books []BookWithPos
	for _, result := range results {
		signs = append(signs, result.signs...)
		books = append(books, result.books...)
	}

	sort.SliceStable(signs, func(i, j int) bool {
		return positionLess(signs[i].X, signs[i].Y, signs[i].Z, signs[j].X, signs[j].Y, signs[j].Z)
	})
	sort.SliceStable(books, func(i, j int) bool {
		return positionLess(books[i].X, books[i].Y, books[i].Z, books[j].X, books[j].Y, books[j].Z)
	})

	return &AnvilWorld{
		Name:    filepath.Base(filepath.Clean(root)),
		Version: version,
		Signs:   signs,
		Books:   books,
	}, nil
}

// positionLess orders records by x, then z, then y.
func positionLess(ax, ay, az, bx, by, bz int32) bool {
	if ax != bx {
		return ax < bx
	}
	if az != bz {
		return az < bz
	}
	return ay < by
}

func readWorldVersion(path string) (WorldVersion, error) {
	file, err := os.Open(path)
	if err != nil {
		return WorldVersion{}, errors.Wrap(err, "opening level.dat")
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return WorldVersion{}, errors.Wrap(err, "level.dat is not gzip-compressed")
	}
	var dat levelDat
	if _, err := nbt.NewDecoder(gz).Decode(&dat); err != nil {
		return WorldVersion{}, errors.Wrap(err, "decoding level.dat")
	}
	if dat.Data.Version != nil {
		return *dat.Data.Version, nil
	}
	// Pre-1.9 saves only carry the numeric version field; zero means even
	// that is absent and the world format cannot be determined.
	if dat.Data.OldVersion == 0 {
		return WorldVersion{}, errors.New("level.dat carries no world version")
	}
	return WorldVersion{ID: dat.Data.OldVersion, Name: "old"}, nil
}

// extractRegion is one work unit: decode a single region file and classify
// everything in it. It never fails outright; whatever cannot be read is
// skipped with a diagnostic so a partially corrupted world still yields the
// rest. Files whose names do not carry region coordinates are ignored.
func extractRegion(path string, version WorldVersion) ([]Sign, []BookWithPos) {
	match := regionNamePattern.FindStringSubmatch(filepath.Base(path))
	if match == nil {
		return nil, nil
	}
	rx, _ := strconv.Atoi(match[1])
	rz, _ := strconv.Atoi(match[2])
	logrus.Infof("reading region: %d, %d", rx, rz)

	info, err := os.Stat(path)
	if err != nil {
		logrus.Warnf("could not stat region %d, %d: %v", rx, rz, err)
		return nil, nil
	}
	if info.Size() == 0 {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		logrus.Warnf("could not open region %d, %d: %v", rx, rz, err)
		return nil, nil
	}
	reader, err := NewAnvilReader(file)
	if err != nil {
		_ = file.Close()
		logrus.Warnf("could not read region header %d, %d: %v", rx, rz, err)
		return nil, nil
	}
	defer reader.Close()

	var signs []Sign
	var books []BookWithPos
	for x := 0; x < 32; x++ {
		for z := 0; z < 32; z++ {
			if !reader.ChunkExists(x, z) {
				continue
			}
			chunkReader, err := reader.ReadChunk(x, z)
			if err != nil {
				var unsupported UnsupportedCompressionError
				if errors.As(err, &unsupported) {
					logrus.Warnf("unsupported compression type: %d", unsupported.Scheme)
				} else {
					logrus.Warnf("could not read chunk %d,%d in region %d, %d: %v", x, z, rx, rz, err)
				}
				continue
			}
			view, err := decodeChunk(chunkReader, version)
			if err != nil {
				logrus.Warnf("failed to read nbt in chunk: %d, %d with error %v", rx, rz, err)
				continue
			}
			chunkSigns, chunkBooks := extractChunk(view)
			signs = append(signs, chunkSigns...)
			books = append(books, chunkBooks...)
		}
	}
	return signs, books
}
