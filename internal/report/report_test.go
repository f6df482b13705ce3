package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscan/internal/manifest"
	"depscan/internal/osv"
	"depscan/internal/scanner"
)

func sampleResult() *scanner.Result {
	score := 9.1
	return &scanner.Result{
		Dependencies: []manifest.Dependency{
			{Name: "lodash", Version: "4.17.15", Type: "dependencies", Ecosystem: "npm"},
			{Name: "flask", Version: "2.0.0", Type: "dependencies", Ecosystem: "PyPI"},
		},
		Vulnerabilities: []osv.Vulnerability{{
			ID:        "GHSA-jf85-cpcp-j695",
			CVE:       "CVE-2019-10744",
			Summary:   "Prototype pollution | via defaultsDeep",
			Severity:  osv.SeverityCritical,
			CVSSScore: &score,
			Package:   "lodash",
			Version:   "4.17.15",
			Ecosystem: "npm",
		}},
		Summary: scanner.Summary{
			TotalDependencies:      2,
			VulnerableDependencies: 1,
			TotalVulnerabilities:   1,
			Critical:               1,
		},
		Ecosystems:   map[string]int{"npm": 1, "PyPI": 1},
		FilesScanned: []string{"package.json", "requirements.txt"},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	var decoded scanner.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Summary.TotalDependencies)
	assert.Len(t, decoded.Vulnerabilities, 1)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "lodash", rows[1][0])
	assert.Equal(t, "CVE-2019-10744", rows[1][4])
	assert.Equal(t, "CRITICAL", rows[1][5])
	assert.Equal(t, "9.1", rows[1][6])
}

func TestWriteCSV_CleanScan(t *testing.T) {
	var buf bytes.Buffer
	r := sampleResult()
	r.Vulnerabilities = nil

	require.NoError(t, WriteCSV(&buf, r))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only for a clean scan")
}

func TestMarkdown(t *testing.T) {
	md := Markdown("acme/widget", sampleResult())

	assert.Contains(t, md, "# Dependency Scan: acme/widget")
	assert.Contains(t, md, "| PyPI | 1 |")
	assert.Contains(t, md, "GHSA-jf85-cpcp-j695")
	// Pipes in summaries must not break the table.
	assert.Contains(t, md, `Prototype pollution \| via defaultsDeep`)
}

func TestMarkdown_CleanScan(t *testing.T) {
	r := sampleResult()
	r.Vulnerabilities = nil
	r.Summary.TotalVulnerabilities = 0

	md := Markdown("acme/widget", r)
	assert.Contains(t, md, "No known vulnerabilities found.")
	assert.False(t, strings.Contains(md, "| Severity |"))
}
