// Package annotation loads bounding-box tables and assigns their rows to frames.
package annotation

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/user/bagannotate/pkg/ports"
)

// IDColumn is the header of the box id column. It and the four columns
// following it hold (id, x, y, width, height).
const IDColumn = "Rect_id"

// columnsPerBox is the number of logical columns read from each row.
const columnsPerBox = 5

// SentinelID marks the first box of a new frame group.
const SentinelID = 0

// Rect is a box in frame pixel coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

// BoxRecord is one row of the annotation table.
type BoxRecord struct {
	BoxID int
	Rect
}

// IsSentinel reports whether the row starts a new frame group.
func (r BoxRecord) IsSentinel() bool {
	return r.BoxID == SentinelID
}

// Extensions accepted by Loader.
var supportedExtensions = map[string]bool{
	".csv": true,
	".tsv": true,
	".txt": true,
}

// Loader reads annotation tables through a FileSystem.
type Loader struct {
	fs     ports.FileSystem
	logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(fs ports.FileSystem, logger ports.Logger) *Loader {
	return &Loader{
		fs:     fs,
		logger: logger.WithComponent("annotation"),
	}
}

// Load reads the table at path.
// An empty path returns ErrNoTable; every other failure wraps ErrFileFormat.
func (l *Loader) Load(path string) ([]BoxRecord, error) {
	if path == "" {
		return nil, ErrNoTable
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrFileFormat, ext)
	}

	exists, err := l.fs.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileFormat, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %w: %s", ErrFileFormat, ErrFileNotFound, path)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrFileFormat, path, err)
	}

	records, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	l.logger.Debug("Loaded %d boxes in %d groups from %s", len(records), SentinelCount(records), path)
	return records, nil
}

// Parse reads a tab-delimited table. Row order is preserved.
func Parse(r io.Reader) ([]BoxRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty table", ErrFileFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrFileFormat, err)
	}

	idx := columnIndex(header, IDColumn)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %w", ErrFileFormat, ErrMissingColumn)
	}

	// A header-only table is a loaded table without boxes, not an absent one.
	records := []BoxRecord{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFileFormat, err)
		}

		line, _ := reader.FieldPos(0)
		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFileFormat, line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == name {
			return i
		}
	}
	return -1
}

func parseRow(row []string, idx int) (BoxRecord, error) {
	if len(row) < idx+columnsPerBox {
		return BoxRecord{}, fmt.Errorf("expected %d columns from %s, got %d", columnsPerBox, IDColumn, len(row)-idx)
	}

	var v [columnsPerBox]int
	for i := range v {
		cell := strings.TrimSpace(row[idx+i])
		n, err := strconv.Atoi(cell)
		if err != nil {
			return BoxRecord{}, fmt.Errorf("column %d: %q is not an integer", idx+i+1, cell)
		}
		v[i] = n
	}

	return BoxRecord{
		BoxID: v[0],
		Rect:  Rect{X: v[1], Y: v[2], Width: v[3], Height: v[4]},
	}, nil
}
