package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscan/internal/osv"
	"depscan/internal/scanner"
)

type fakeFiles struct {
	files    []string
	contents map[string]string
}

func (f *fakeFiles) ListFiles(ctx context.Context, owner, repo string) ([]string, error) {
	if f.files == nil {
		return nil, errors.New("tree unavailable")
	}
	return f.files, nil
}

func (f *fakeFiles) ReadFile(ctx context.Context, owner, repo, path string) (string, error) {
	return f.contents[path], nil
}

type fakeVulns struct {
	vulns map[string][]osv.Vulnerability
}

func (f *fakeVulns) Resolve(ctx context.Context, name, version, ecosystem string) []osv.Vulnerability {
	return f.vulns[ecosystem+":"+name+":"+version]
}

func testScanner() *scanner.Scanner {
	files := &fakeFiles{
		files: []string{"package.json"},
		contents: map[string]string{
			"package.json": `{"dependencies": {"lodash": "^4.17.15"}}`,
		},
	}
	vulns := &fakeVulns{vulns: map[string][]osv.Vulnerability{
		"npm:lodash:4.17.15": {{
			ID: "GHSA-x", Severity: osv.SeverityCritical,
			Package: "lodash", Version: "4.17.15", Ecosystem: "npm",
		}},
	}}
	return scanner.New(files, vulns)
}

func TestRunScan_Plain(t *testing.T) {
	var stderr bytes.Buffer
	cmd := scanCmd
	cmd.SetErr(&stderr)

	result, err := runScan(context.Background(), cmd, testScanner(), "acme", "widget", true)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.Summary.TotalVulnerabilities)
	assert.Contains(t, stderr.String(), "Scan complete")
	assert.Contains(t, stderr.String(), "[100%]")
}

func TestRunScan_PlainFatalError(t *testing.T) {
	sc := scanner.New(&fakeFiles{}, &fakeVulns{})
	var stderr bytes.Buffer
	cmd := scanCmd
	cmd.SetErr(&stderr)

	_, err := runScan(context.Background(), cmd, sc, "acme", "gone", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tree unavailable")
}

func TestWriteScanOutput_JSONToFile(t *testing.T) {
	dir := t.TempDir()
	scanJSON = true
	scanOutput = filepath.Join(dir, "out.json")
	defer func() { scanJSON = false; scanOutput = "" }()

	result, err := runScan(context.Background(), scanCmd, testScanner(), "acme", "widget", true)
	require.NoError(t, err)
	require.NoError(t, writeScanOutput(scanCmd, "acme/widget", result))

	data, err := os.ReadFile(scanOutput)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"GHSA-x"`)
	assert.Contains(t, string(data), `"total_vulnerabilities": 1`)
}

func TestWriteScanOutput_CSV(t *testing.T) {
	var out bytes.Buffer
	cmd := scanCmd
	cmd.SetOut(&out)
	scanCSV = true
	defer func() { scanCSV = false }()

	result, err := runScan(context.Background(), cmd, testScanner(), "acme", "widget", true)
	require.NoError(t, err)
	require.NoError(t, writeScanOutput(cmd, "acme/widget", result))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "lodash")
}

func TestCheckFailOn(t *testing.T) {
	result := &scanner.Result{Vulnerabilities: []osv.Vulnerability{
		{ID: "a", Severity: osv.SeverityHigh},
		{ID: "b", Severity: osv.SeverityLow},
	}}

	assert.NoError(t, checkFailOn("", result))
	assert.NoError(t, checkFailOn("CRITICAL", result))
	assert.Error(t, checkFailOn("HIGH", result))
	assert.Error(t, checkFailOn("low", result), "threshold is case insensitive")

	err := checkFailOn("SEVERE", result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --fail-on")
}

func TestScanCommandRegistered(t *testing.T) {
	for _, name := range []string{"scan", "serve", "report"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
