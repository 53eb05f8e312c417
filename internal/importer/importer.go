// Package importer reads image manifests: CSV or Excel lists of image paths
// with optional sprite names. It supports automatic delimiter detection,
// flexible column mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/atlaspack/internal/intake"
	"github.com/piwi3910/atlaspack/internal/model"
)

// Entry is one manifest row.
type Entry struct {
	Path string // Absolute, or relative to the working directory when no base is known
	Name string // Sprite identity; empty means the file's base name
}

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Entries  []Entry
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Path int
	Name int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"path": {"path", "file", "filename", "file name", "image", "source", "src"},
	"name": {"name", "label", "id", "key", "sprite", "frame"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (path, name) and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Path: -1, Name: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "path":
					if mapping.Path == -1 {
						mapping.Path = i
					}
				case "name":
					if mapping.Name == -1 {
						mapping.Name = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Path: 0, Name: 1}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRow extracts an Entry from a row. Returns the entry, any error
// message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel, baseDir string) (Entry, string, string) {
	path := getCell(row, mapping.Path)
	if path == "" {
		return Entry{}, fmt.Sprintf("%s: Missing path value", rowLabel), ""
	}

	var warning string
	if !intake.IsImagePath(path) {
		warning = fmt.Sprintf("%s: '%s' does not have a known image extension", rowLabel, path)
	}

	if baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	return Entry{Path: path, Name: getCell(row, mapping.Name)}, "", warning
}

// ImportCSV imports entries from a CSV file. Relative paths resolve against
// the manifest's directory.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", filepath.Dir(path), warnings)
}

// ImportCSVFromReader imports entries from a CSV reader with a known
// delimiter. Relative paths resolve against baseDir when it is not empty.
func ImportCSVFromReader(reader io.Reader, delimiter rune, baseDir string) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", baseDir, nil)
}

// ImportExcel imports entries from the first sheet of an Excel file.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", filepath.Dir(path), nil)
}

// Import picks the reader from the file extension.
func Import(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return ImportExcel(path)
	default:
		return ImportCSV(path)
	}
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix, baseDir string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		if mapping.Path == -1 {
			result.Errors = append(result.Errors, "Required columns not found in header: Path")
			return result
		}
	} else if first := getCell(rows[0], 0); first != "" && !intake.IsImagePath(first) && !strings.ContainsAny(first, `/\`) {
		// An unrecognised header: skip it but keep the positional mapping.
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		entry, errMsg, warning := parseRow(row, mapping, rowLabel, baseDir)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Entries = append(result.Entries, entry)
	}

	if len(result.Entries) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}

	return result
}

// Load decodes every entry. A non-empty Name replaces the file's base name.
func Load(entries []Entry) ([]model.SourceImage, error) {
	images := make([]model.SourceImage, 0, len(entries))
	for _, e := range entries {
		img, err := intake.LoadFile(e.Path)
		if err != nil {
			return nil, err
		}
		if e.Name != "" {
			img.Name = e.Name
		}
		images = append(images, img)
	}
	return images, nil
}
