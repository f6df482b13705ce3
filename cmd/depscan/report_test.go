package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscan/internal/manifest"
	"depscan/internal/osv"
	"depscan/internal/scanner"
)

func writeResultsFile(t *testing.T, wrapInEvent bool) string {
	t.Helper()
	result := &scanner.Result{
		Dependencies: []manifest.Dependency{
			{Name: "lodash", Version: "4.17.15", Ecosystem: "npm"},
		},
		Vulnerabilities: []osv.Vulnerability{{
			ID: "GHSA-x", CVE: "CVE-2019-10744", Severity: osv.SeverityCritical,
			Package: "lodash", Version: "4.17.15", Ecosystem: "npm",
		}},
		Summary:      scanner.Summary{TotalDependencies: 1, VulnerableDependencies: 1, TotalVulnerabilities: 1, Critical: 1},
		Ecosystems:   map[string]int{"npm": 1},
		FilesScanned: []string{"package.json"},
	}

	var payload any = result
	if wrapInEvent {
		payload = scanner.Event{Type: scanner.EventComplete, Result: result}
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func runReport(t *testing.T, args []string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := reportCmd
	cmd.SetOut(&out)
	require.NoError(t, cmd.Flags().Parse(args[1:]))
	require.NoError(t, runReportCmd(cmd, args[:1]))
	return out.String()
}

func TestReportCmd_Markdown(t *testing.T) {
	path := writeResultsFile(t, false)
	out := runReport(t, []string{path, "--format", "markdown", "--repo", "acme/widget"})

	assert.Contains(t, out, "# Dependency Scan: acme/widget")
	assert.Contains(t, out, "CVE-2019-10744")
}

func TestReportCmd_WrappedEventPayload(t *testing.T) {
	path := writeResultsFile(t, true)
	out := runReport(t, []string{path, "--format", "markdown"})
	assert.Contains(t, out, "GHSA-x")
}

func TestReportCmd_CSV(t *testing.T) {
	path := writeResultsFile(t, false)
	out := runReport(t, []string{path, "--format", "csv"})
	assert.Contains(t, out, "Package,Version,Ecosystem")
	assert.Contains(t, out, "lodash")
}

func TestReportCmd_MissingFile(t *testing.T) {
	cmd := reportCmd
	err := runReportCmd(cmd, []string{filepath.Join(t.TempDir(), "nope.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read results file")
}

func TestReportCmd_BadFormat(t *testing.T) {
	path := writeResultsFile(t, false)
	reportFormat = "pdf"
	defer func() { reportFormat = "term" }()

	err := runReportCmd(reportCmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown report format")
}
