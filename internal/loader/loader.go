// Package loader reads record batches for the CLI boundary: CSV files and
// Excel workbooks become row-oriented batches the hub ingests. The loader
// performs no validation beyond header/row shaping; malformed values reach
// the hub as strings and surface downstream as nulls or parsed numbers.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadCSV reads one CSV file into row-oriented records. The first line is
// the header; a UTF-8 BOM is tolerated. Numeric-looking cells become
// float64, empty cells become nil.
func LoadCSV(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file %s has no header", path)
	}

	header := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(header))
		for i, name := range header {
			name = strings.TrimSpace(name)
			if name == "" || i >= len(record) {
				continue
			}
			row[name] = cellValue(record[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadXLSX reads the first sheet of an Excel workbook into row-oriented
// records, first row as header.
func LoadXLSX(path string) ([]map[string]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %s has no header", sheets[0])
	}

	header := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(header))
		for i, name := range header {
			name = strings.TrimSpace(name)
			if name == "" || i >= len(record) {
				continue
			}
			row[name] = cellValue(record[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cellValue(cell string) any {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64); err == nil {
		return v
	}
	return cell
}
