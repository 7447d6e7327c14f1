package osmparser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

var ErrUnsupportedFormat = errors.New("unsupported openstreetmap file format")

type ScanPass int

const (
	WAY_PASS ScanPass = iota
	NODE_PASS
)

// Source. something that can be scanned from the start once per pass.
type Source interface {
	Open(ctx context.Context, pass ScanPass) (osm.Scanner, error)
	Name() string
}

type fileFormat int

const (
	FORMAT_PBF fileFormat = iota
	FORMAT_XML
	FORMAT_XML_BZ2
)

func detectFormat(mapFile string) (fileFormat, error) {
	name := strings.ToLower(mapFile)
	switch {
	case strings.HasSuffix(name, ".pbf"):
		return FORMAT_PBF, nil
	case strings.HasSuffix(name, ".osm.bz2"):
		return FORMAT_XML_BZ2, nil
	case strings.HasSuffix(name, ".osm"), strings.HasSuffix(name, ".xml"):
		return FORMAT_XML, nil
	}
	return 0, fmt.Errorf("%w: %q (expected .osm.pbf, .osm or .osm.bz2)", ErrUnsupportedFormat, filepath.Ext(mapFile))
}

type FileSource struct {
	mapFile string
	format  fileFormat
}

// NewFileSource. fails right away when the file is missing or the suffix is unknown.
func NewFileSource(mapFile string) (*FileSource, error) {
	format, err := detectFormat(mapFile)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(mapFile)
	if err != nil {
		return nil, fmt.Errorf("open map file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open map file: %s is a directory", mapFile)
	}
	return &FileSource{mapFile: mapFile, format: format}, nil
}

func (s *FileSource) Name() string {
	return s.mapFile
}

func (s *FileSource) Open(ctx context.Context, pass ScanPass) (osm.Scanner, error) {
	f, err := os.Open(s.mapFile)
	if err != nil {
		return nil, err
	}

	switch s.format {
	case FORMAT_PBF:
		scanner := osmpbf.New(ctx, f, 0)
		scanner.SkipRelations = true
		scanner.SkipNodes = pass == WAY_PASS
		scanner.SkipWays = pass == NODE_PASS
		return &closingScanner{Scanner: scanner, closers: []io.Closer{f}}, nil
	case FORMAT_XML_BZ2:
		bz, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
		if err != nil {
			f.Close()
			return nil, err
		}
		return &closingScanner{Scanner: osmxml.New(ctx, bz), closers: []io.Closer{bz, f}}, nil
	default:
		return &closingScanner{Scanner: osmxml.New(ctx, f), closers: []io.Closer{f}}, nil
	}
}

// closingScanner. closes the underlying readers together with the scanner.
type closingScanner struct {
	osm.Scanner
	closers []io.Closer
}

func (s *closingScanner) Close() error {
	err := s.Scanner.Close()
	for _, c := range s.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
