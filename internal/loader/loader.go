// Package loader turns uploaded spreadsheet bytes into typed tables.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

// Format is one of the supported upload formats.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for extensions outside {csv, xls, xlsx}.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// ParseError wraps a failure to read bytes in their claimed format.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// recordReader extracts raw rows, header first, from a file body.
type recordReader func(data []byte) ([][]string, error)

var readers = map[Format]recordReader{
	FormatCSV:  readCSV,
	FormatXLS:  readXLS,
	FormatXLSX: readXLSX,
}

// Formats lists the accepted formats in display order.
func Formats() []Format { return []Format{FormatCSV, FormatXLS, FormatXLSX} }

// FormatFromFilename picks a format from the extension after the last dot.
func FormatFromFilename(name string) (Format, error) {
	base := filepath.Base(name)
	idx := strings.LastIndex(base, ".")
	ext := ""
	if idx >= 0 {
		ext = strings.ToLower(base[idx+1:])
	}
	f := Format(ext)
	if _, ok := readers[f]; !ok {
		if ext == "" {
			return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, base)
		}
		return "", fmt.Errorf("%w: .%s", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// Load parses data according to the extension of name.
func Load(name string, data []byte) (*table.Table, error) {
	f, err := FormatFromFilename(name)
	if err != nil {
		return nil, err
	}
	return LoadFormat(f, data)
}

// LoadReader reads r fully and parses it like Load.
func LoadReader(name string, r io.Reader) (*table.Table, error) {
	f, err := FormatFromFilename(name)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Format: f, Err: fmt.Errorf("read upload: %w", err)}
	}
	return LoadFormat(f, data)
}

// LoadFile reads a file from disk and parses it like Load.
func LoadFile(path string) (*table.Table, error) {
	f, err := FormatFromFilename(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return LoadFormat(f, data)
}

// LoadFormat parses data as format f. Any failure, including a panic in a
// third-party reader, comes back as *ParseError.
func LoadFormat(f Format, data []byte) (tbl *table.Table, err error) {
	read, ok := readers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
	defer func() {
		if r := recover(); r != nil {
			tbl = nil
			err = &ParseError{Format: f, Err: fmt.Errorf("reader panic: %v", r)}
		}
	}()

	records, err := read(data)
	if err != nil {
		return nil, &ParseError{Format: f, Err: err}
	}
	header, rows, err := shape(records, f != FormatCSV)
	if err != nil {
		return nil, &ParseError{Format: f, Err: err}
	}
	tbl, err = infer(header, rows)
	if err != nil {
		return nil, &ParseError{Format: f, Err: err}
	}
	promoteNullableInts(tbl)
	boolsToText(tbl)
	return tbl, nil
}
