// Package report renders scan results for export: JSON for machines,
// CSV for spreadsheets, Markdown for humans.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"depscan/internal/scanner"
)

// WriteJSON writes the full result as indented JSON.
func WriteJSON(w io.Writer, result *scanner.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

var csvHeader = []string{"Package", "Version", "Ecosystem", "Vulnerability ID", "CVE", "Severity", "CVSS Score", "Summary"}

// WriteCSV writes one row per vulnerability. A clean scan produces a
// header-only file.
func WriteCSV(w io.Writer, result *scanner.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, v := range result.Vulnerabilities {
		score := ""
		if v.CVSSScore != nil {
			score = strconv.FormatFloat(*v.CVSSScore, 'f', 1, 64)
		}
		row := []string{v.Package, v.Version, v.Ecosystem, v.ID, v.CVE, string(v.Severity), score, v.Summary}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
