// Package export unpacks a Qualtrics export archive and parses the CSV it
// contains into typed survey rows using the configured column mapping.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/civiclab/qualsync/internal/config"
	"github.com/civiclab/qualsync/internal/fault"
	"github.com/civiclab/qualsync/pkg/models"
)

// ExtractRows reads the first CSV entry from the export zip and converts
// every data row into a SurveyRow. Rows are never dropped here: filtering
// happens in the reconciler so processed counts stay accurate.
func ExtractRows(archive []byte, cols config.Columns) ([]models.SurveyRow, error) {
	text, err := csvFromZip(archive)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1 // short rows are tolerated

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(h)] = i
	}
	if err := checkColumns(index, cols); err != nil {
		return nil, err
	}

	cell := func(record []string, column string) string {
		if column == "" {
			return ""
		}
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []models.SurveyRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		rows = append(rows, models.SurveyRow{
			Title:        cell(record, cols.Title),
			Body:         NormalizeBody(cell(record, cols.Body)),
			ResponseID:   cell(record, cols.ResponseID),
			RecordedDate: cell(record, cols.RecordedDate),
			Eligible:     eligible(cell(record, cols.Published), cols),
		})
	}
	return rows, nil
}

// csvFromZip returns the decoded text of the first CSV entry in the
// archive, tolerating a UTF-8 byte-order mark.
func csvFromZip(archive []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return "", &fault.FormatError{Msg: fmt.Sprintf("export is not a valid zip archive: %v", err)}
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s in export zip: %w", f.Name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return "", fmt.Errorf("reading %s from export zip: %w", f.Name, err)
		}
		return strings.TrimPrefix(string(data), "\ufeff"), nil
	}
	return "", &fault.FormatError{Msg: "no CSV file found in Qualtrics export zip"}
}

// checkColumns verifies every required configured column is present in the
// header, reporting all missing names together rather than the first.
func checkColumns(index map[string]int, cols config.Columns) error {
	required := []string{cols.Title, cols.Body, cols.ResponseID}
	if cols.Published != "" {
		required = append(required, cols.Published)
	}
	if cols.RecordedDate != "" {
		required = append(required, cols.RecordedDate)
	}

	seen := make(map[string]bool)
	var missing []string
	for _, name := range required {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &fault.ConfigError{
			Msg: "missing required column(s) in Qualtrics CSV export: " + strings.Join(missing, ", "),
		}
	}
	return nil
}

// eligible reports whether the published cell matches the configured
// expected value. With no published column configured, every row is
// eligible.
func eligible(publishedCell string, cols config.Columns) bool {
	if cols.Published == "" {
		return true
	}
	return publishedMatches(publishedCell, cols.PublishedValue)
}

// publishedMatches compares a cell against the expected published value,
// falling back to boolean-token equivalence so "1", "true", and "yes"
// all satisfy an expected "1".
func publishedMatches(value, expected string) bool {
	value = strings.TrimSpace(value)
	expected = strings.TrimSpace(expected)
	if value == expected {
		return true
	}

	vb, vok := parseBoolToken(value)
	eb, eok := parseBoolToken(expected)
	return vok && eok && vb == eb
}

func parseBoolToken(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "t", "yes", "y":
		return true, true
	case "0", "false", "f", "no", "n":
		return false, true
	}
	return false, false
}

// NormalizeBody converts CRLF and bare CR line endings to LF and trims
// leading and trailing whitespace. Rendering depends on this so identical
// submissions produce byte-identical documents.
func NormalizeBody(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	return strings.TrimSpace(value)
}
