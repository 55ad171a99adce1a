// Package tabular moves tables between files and their in-memory form. The
// core pipeline never touches storage formats; everything format-shaped
// lives here.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"text2phenotype.com/refnorm/types"
)

// Options control decoding. A zero Comma picks the delimiter from the file
// extension, defaulting to comma. Normalize runs every header and cell
// through NormalizeCell; leave it off when spacing-sensitive fields must
// arrive byte-for-byte.
type Options struct {
	Comma     rune
	Normalize bool
}

func DecodeFile(path string, opts Options) (*types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table file: %w", err)
	}
	defer f.Close()

	if opts.Comma == 0 && strings.ToLower(filepath.Ext(path)) == ".tsv" {
		opts.Comma = '\t'
	}
	return Decode(f, opts)
}

// Decode reads a delimited table. The first row is the schema; empty cells
// and cells missing from short rows decode to null.
func Decode(r io.Reader, opts Options) (*types.Table, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("table has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	table := types.NewTable()
	for _, name := range header {
		if opts.Normalize {
			name = NormalizeCell(name)
		}
		table.Fields = append(table.Fields, name)
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Rows)+2, err)
		}

		record := make(types.Record, len(table.Fields))
		for i, field := range table.Fields {
			if i >= len(row) || row[i] == "" {
				record[field] = nil
				continue
			}
			cell := row[i]
			if opts.Normalize {
				cell = NormalizeCell(cell)
			}
			record[field] = cell
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

func EncodeFile(path string, table *types.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table file: %w", err)
	}
	if err := Encode(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func Encode(w io.Writer, table *types.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Fields); err != nil {
		return err
	}

	row := make([]string, len(table.Fields))
	for _, record := range table.Rows {
		for i, field := range table.Fields {
			row[i] = CellString(record[field])
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CellString renders a record value for delimited output. Null renders as an
// empty cell, masks and codes as decimal.
func CellString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case types.Flags:
		return strconv.FormatUint(uint64(v), 10)
	case types.ContrastCode:
		return strconv.FormatUint(uint64(v), 10)
	default:
		return fmt.Sprint(v)
	}
}

// NormalizeCell applies NFKC normalization, trims surrounding whitespace and
// drops control characters other than newline and tab.
func NormalizeCell(cell string) string {
	normed := norm.NFKC.String(cell)
	normed = strings.TrimSpace(normed)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
}
