package scanner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscan/internal/osv"
)

type fakeFiles struct {
	files    []string
	listErr  error
	contents map[string]string
}

func (f *fakeFiles) ListFiles(ctx context.Context, owner, repo string) ([]string, error) {
	return f.files, f.listErr
}

func (f *fakeFiles) ReadFile(ctx context.Context, owner, repo, path string) (string, error) {
	content, ok := f.contents[path]
	if !ok {
		return "", errors.New("file not found")
	}
	return content, nil
}

type fakeVulns struct {
	vulns map[string][]osv.Vulnerability // keyed ecosystem:name:version
	calls int
}

func (f *fakeVulns) Resolve(ctx context.Context, name, version, ecosystem string) []osv.Vulnerability {
	f.calls++
	return f.vulns[ecosystem+":"+name+":"+version]
}

func drain(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var all []Event
	for ev := range events {
		all = append(all, ev)
	}
	return all
}

func critical(pkg, version, ecosystem string) osv.Vulnerability {
	score := 9.8
	return osv.Vulnerability{
		ID:        "GHSA-test",
		Severity:  osv.SeverityCritical,
		CVSSScore: &score,
		Package:   pkg,
		Version:   version,
		Ecosystem: ecosystem,
	}
}

func TestScan_EndToEnd(t *testing.T) {
	files := &fakeFiles{
		files: []string{"package.json", "test/package.json", "README.md"},
		contents: map[string]string{
			"package.json": `{"dependencies": {"lodash": "^4.17.15"}}`,
		},
	}
	vulns := &fakeVulns{vulns: map[string][]osv.Vulnerability{
		"npm:lodash:4.17.15": {critical("lodash", "4.17.15", "npm")},
	}}

	events := drain(t, New(files, vulns).Scan(context.Background(), "acme", "widget"))
	require.NotEmpty(t, events)

	final := events[len(events)-1]
	require.Equal(t, EventComplete, final.Type)
	require.NotNil(t, final.Result)

	result := final.Result
	require.Len(t, result.Dependencies, 1)
	assert.Equal(t, "lodash", result.Dependencies[0].Name)
	assert.Equal(t, "4.17.15", result.Dependencies[0].Version)

	// test/package.json sits in a skipped directory.
	assert.Equal(t, []string{"package.json"}, result.FilesScanned)

	require.Len(t, result.Vulnerabilities, 1)
	assert.Equal(t, osv.SeverityCritical, result.Vulnerabilities[0].Severity)

	assert.Equal(t, 1, result.Summary.TotalDependencies)
	assert.Equal(t, 1, result.Summary.VulnerableDependencies)
	assert.Equal(t, 1, result.Summary.TotalVulnerabilities)
	assert.Equal(t, 1, result.Summary.Critical)
	assert.Equal(t, map[string]int{"npm": 1}, result.Ecosystems)

	// Every reported vulnerability references a scanned dependency.
	deps := map[string]bool{}
	for _, d := range result.Dependencies {
		deps[d.Ecosystem+":"+d.Name] = true
	}
	for _, v := range result.Vulnerabilities {
		assert.True(t, deps[v.Ecosystem+":"+v.Package], "orphan vulnerability %s", v.ID)
	}
}

func TestScan_EventInvariants(t *testing.T) {
	files := &fakeFiles{
		files: []string{"package.json", "go.mod"},
		contents: map[string]string{
			"package.json": `{"dependencies": {"a": "1.0.0", "b": "2.0.0"}}`,
			"go.mod":       "module m\n\nrequire example.com/x v1.0.0\n",
		},
	}
	events := drain(t, New(files, &fakeVulns{}).Scan(context.Background(), "o", "r"))

	terminal := 0
	lastPercent := 0
	for i, ev := range events {
		switch ev.Type {
		case EventStatus:
			assert.GreaterOrEqual(t, ev.Progress, lastPercent, "percent decreased at event %d", i)
			lastPercent = ev.Progress
		case EventComplete, EventError:
			terminal++
			assert.Equal(t, len(events)-1, i, "terminal event must be last")
		}
	}
	assert.Equal(t, 1, terminal)
	assert.Equal(t, 100, lastPercent)
}

func TestScan_NoManifests(t *testing.T) {
	files := &fakeFiles{files: []string{"README.md", "src/main.go"}}
	vulns := &fakeVulns{}

	events := drain(t, New(files, vulns).Scan(context.Background(), "o", "r"))
	require.NotEmpty(t, events)

	final := events[len(events)-1]
	require.Equal(t, EventComplete, final.Type)
	assert.Equal(t, 0, final.Result.Summary.TotalDependencies)
	assert.Equal(t, 0, vulns.calls, "no vulnerability checks on empty input")

	// One 100% status right before completion, none of the
	// vulnerability-check phase messages.
	prev := events[len(events)-2]
	assert.Equal(t, EventStatus, prev.Type)
	assert.Equal(t, 100, prev.Progress)
	for _, ev := range events {
		assert.NotContains(t, ev.Message, "Checking")
	}
}

func TestScan_TreeFetchFailure(t *testing.T) {
	files := &fakeFiles{listErr: errors.New("api rate limit exceeded")}

	events := drain(t, New(files, &fakeVulns{}).Scan(context.Background(), "o", "r"))
	require.NotEmpty(t, events)

	final := events[len(events)-1]
	assert.Equal(t, EventError, final.Type)
	assert.Contains(t, final.Message, "rate limit")
	for _, ev := range events {
		assert.NotEqual(t, EventComplete, ev.Type, "no complete after fatal error")
	}
}

func TestScan_ManifestReadFailureIsSkipped(t *testing.T) {
	files := &fakeFiles{
		files: []string{"package.json", "backend/requirements.txt"},
		contents: map[string]string{
			// requirements.txt is missing and must be skipped silently.
			"package.json": `{"dependencies": {"lodash": "4.17.21"}}`,
		},
	}

	events := drain(t, New(files, &fakeVulns{}).Scan(context.Background(), "o", "r"))
	final := events[len(events)-1]
	require.Equal(t, EventComplete, final.Type)
	assert.Equal(t, []string{"package.json"}, final.Result.FilesScanned)
	assert.Equal(t, 1, final.Result.Summary.TotalDependencies)
}

func TestScan_ManifestsButNoDependencies(t *testing.T) {
	files := &fakeFiles{
		files:    []string{"package.json"},
		contents: map[string]string{"package.json": `{"name": "empty"}`},
	}
	vulns := &fakeVulns{}

	events := drain(t, New(files, vulns).Scan(context.Background(), "o", "r"))
	final := events[len(events)-1]
	require.Equal(t, EventComplete, final.Type)
	assert.Equal(t, 0, final.Result.Summary.TotalDependencies)
	assert.Equal(t, 0, vulns.calls)
}

func TestScan_DeduplicatesAcrossManifests(t *testing.T) {
	files := &fakeFiles{
		files: []string{"package.json", "app/package.json"},
		contents: map[string]string{
			"package.json":     `{"dependencies": {"lodash": "^4.17.15"}}`,
			"app/package.json": `{"dependencies": {"lodash": "4.17.15"}}`,
		},
	}
	vulns := &fakeVulns{}

	events := drain(t, New(files, vulns).Scan(context.Background(), "o", "r"))
	final := events[len(events)-1]
	require.Equal(t, EventComplete, final.Type)
	assert.Len(t, final.Result.Dependencies, 1)
	assert.Equal(t, 1, vulns.calls)
}

func TestScan_StatusEveryFifthPackage(t *testing.T) {
	deps := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		deps[name] = "1.0.0"
	}
	content := `{"dependencies": {`
	first := true
	for name, v := range deps {
		if !first {
			content += ","
		}
		content += `"` + name + `": "` + v + `"`
		first = false
	}
	content += `}}`

	files := &fakeFiles{
		files:    []string{"package.json"},
		contents: map[string]string{"package.json": content},
	}

	events := drain(t, New(files, &fakeVulns{}).Scan(context.Background(), "o", "r"))

	checking := 0
	for _, ev := range events {
		if strings.HasPrefix(ev.Message, "Checking: ") {
			checking++
		}
	}
	// 7 packages: statuses at index 0, 5 and the last (6).
	assert.Equal(t, 3, checking)
}

// blockingVulns parks inside Resolve until the scan is cancelled.
type blockingVulns struct {
	started chan struct{}
}

func (b *blockingVulns) Resolve(ctx context.Context, name, version, ecosystem string) []osv.Vulnerability {
	close(b.started)
	<-ctx.Done()
	return nil
}

func TestScan_Cancellation(t *testing.T) {
	files := &fakeFiles{
		files:    []string{"package.json"},
		contents: map[string]string{"package.json": `{"dependencies": {"x": "1.0.0"}}`},
	}
	vulns := &blockingVulns{started: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	events := New(files, vulns).Scan(ctx, "o", "r")

	done := make(chan []Event)
	go func() {
		var all []Event
		for ev := range events {
			all = append(all, ev)
		}
		done <- all
	}()

	<-vulns.started
	cancel()

	for _, ev := range <-done {
		if ev.Type == EventComplete || ev.Type == EventError {
			t.Fatalf("cancelled scan emitted terminal event %s", ev.Type)
		}
	}
}
