package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

var (
	// zipSignature opens every xlsx container, whatever the file extension says
	zipSignature = []byte("PK\x03\x04")
	utf8BOM      = []byte("\xEF\xBB\xBF")
)

// rawTable is a header row plus data rows as read from a file
type rawTable struct {
	headers []string
	rows    [][]string
}

// cell returns the i-th cell of a row, or "" for ragged rows
func (t *rawTable) cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// IsSpreadsheet reports whether data starts with the xlsx container signature
func IsSpreadsheet(data []byte) bool {
	return bytes.HasPrefix(data, zipSignature)
}

// readFile reads a source file from disk
func readFile(path string) (*rawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseTable(data, path)
}

// readAll reads an uploaded source
func readAll(r io.Reader, origin string) (*rawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", origin, err)
	}
	return parseTable(data, origin)
}

// parseTable sniffs the format from the leading bytes and parses accordingly
func parseTable(data []byte, origin string) (*rawTable, error) {
	if IsSpreadsheet(data) {
		return parseSpreadsheet(data, origin)
	}
	return parseCSV(data, origin)
}

func parseCSV(data []byte, origin string) (*rawTable, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &rawTable{}, nil
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", origin, err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", origin, err)
	}

	return &rawTable{headers: headers, rows: rows}, nil
}

func parseSpreadsheet(data []byte, origin string) (*rawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", origin, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &rawTable{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], origin, err)
	}
	if len(rows) == 0 {
		return &rawTable{}, nil
	}

	return &rawTable{headers: rows[0], rows: rows[1:]}, nil
}
