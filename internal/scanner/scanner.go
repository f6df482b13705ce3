package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"depscan/internal/manifest"
	"depscan/internal/osv"
)

// FileSource lists and reads repository files.
type FileSource interface {
	ListFiles(ctx context.Context, owner, repo string) ([]string, error)
	ReadFile(ctx context.Context, owner, repo, path string) (string, error)
}

// VulnSource resolves vulnerabilities for one dependency. Failures are
// the source's problem: it returns an empty list, never an error.
type VulnSource interface {
	Resolve(ctx context.Context, name, version, ecosystem string) []osv.Vulnerability
}

// Scanner runs the scan pipeline: locate manifests, parse, deduplicate,
// resolve vulnerabilities, aggregate.
type Scanner struct {
	files FileSource
	vulns VulnSource
}

// New creates a Scanner over the given collaborators.
func New(files FileSource, vulns VulnSource) *Scanner {
	return &Scanner{files: files, vulns: vulns}
}

// Progress percent boundaries per phase. The exact numbers are an
// approximation; the contract is only that emitted percents never
// decrease and the stream ends at 100.
const (
	pctTreeFetched    = 15
	pctDiscovering    = 20
	pctManifestsFound = 25
	pctManifestsDone  = 45
	pctDeduplicating  = 50
	pctDeduplicated   = 52
	pctChecking       = 55
	pctDone           = 100
)

// Scan runs the full pipeline against one repository and returns its
// ordered event stream. The channel is closed after the terminal event.
// Cancelling the context stops the scan between phases and items; a
// cancelled scan closes the stream without a terminal event, since its
// consumer is gone.
func (s *Scanner) Scan(ctx context.Context, owner, repo string) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		s.run(ctx, owner, repo, events)
	}()
	return events
}

func (s *Scanner) run(ctx context.Context, owner, repo string, out chan<- Event) {
	// Percent values are clamped monotonic: the per-item arithmetic
	// below can otherwise step backwards when many manifests share one
	// phase's narrow range.
	last := 0
	emit := func(ev Event) bool {
		if ctx.Err() != nil {
			return false
		}
		if ev.Type == EventStatus {
			if ev.Progress < last {
				ev.Progress = last
			}
			last = ev.Progress
		}
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	status := func(progress int, format string, args ...any) Event {
		return Event{Type: EventStatus, Progress: progress, Message: fmt.Sprintf(format, args...)}
	}

	slog.Info("starting scan", "owner", owner, "repo", repo)
	if !emit(status(5, "Connecting to repository host...")) {
		return
	}

	// Phase 1: repository tree. The one failure that aborts the scan.
	if !emit(status(10, "Fetching repository structure...")) {
		return
	}
	files, err := s.files.ListFiles(ctx, owner, repo)
	if err != nil {
		slog.Error("tree fetch failed", "owner", owner, "repo", repo, "error", err)
		emit(Event{Type: EventError, Message: fmt.Sprintf("Could not fetch repository: %v", err)})
		return
	}
	if !emit(status(pctTreeFetched, "Found %d files in repository", len(files))) {
		return
	}

	// Phase 2: manifest discovery.
	if !emit(status(pctDiscovering, "Searching for dependency manifests...")) {
		return
	}
	manifests := manifest.Locate(files)
	result := newResult()
	if len(manifests) == 0 {
		result.Summary = summarize(result)
		if emit(status(pctDone, "No dependency manifests found")) {
			emit(Event{Type: EventComplete, Result: result})
		}
		return
	}
	ev := status(pctManifestsFound, "Found %d dependency manifests", len(manifests))
	ev.Files = manifests
	if !emit(ev) {
		return
	}

	// Phase 3: download and parse each manifest. Failures skip the
	// file; the scan continues without it.
	var all []manifest.Dependency
	step := float64(pctManifestsDone-pctManifestsFound) / float64(len(manifests))
	for i, path := range manifests {
		if ctx.Err() != nil {
			return
		}
		progress := pctManifestsFound + int(float64(i)*step)

		ev := status(progress, "Downloading: %s", path)
		ev.CurrentFile = path
		if !emit(ev) {
			return
		}

		content, err := s.files.ReadFile(ctx, owner, repo, path)
		if err != nil || content == "" {
			slog.Warn("skipping manifest", "path", path, "error", err)
			continue
		}
		result.FilesScanned = append(result.FilesScanned, path)

		filename := path
		if i := strings.LastIndexByte(path, '/'); i >= 0 {
			filename = path[i+1:]
		}
		parse := manifest.ParserFor(filename)
		if parse == nil {
			continue
		}
		deps := parse(content)
		all = append(all, deps...)

		ev = status(progress, "Found %d dependencies in %s", len(deps), filename)
		ev.DepsCount = len(deps)
		if !emit(ev) {
			return
		}
	}

	// Phase 4: deduplicate.
	if !emit(status(pctDeduplicating, "Removing duplicate dependencies...")) {
		return
	}
	unique, counts := manifest.Dedupe(all)
	result.Dependencies = unique
	result.Ecosystems = counts
	if !emit(status(pctDeduplicated, "Total unique dependencies: %d", len(unique))) {
		return
	}
	if len(unique) == 0 {
		result.Summary = summarize(result)
		if emit(status(pctDone, "No dependencies to scan")) {
			emit(Event{Type: EventComplete, Result: result})
		}
		return
	}

	// Phase 5: vulnerability checks. Status every 5th package and on
	// the last one, to bound event volume on large dependency sets.
	if !emit(status(pctChecking, "Checking %d packages for vulnerabilities...", len(unique))) {
		return
	}
	vulnStep := float64(pctDone-pctChecking) / float64(len(unique))
	for i, dep := range unique {
		if ctx.Err() != nil {
			return
		}
		if i%5 == 0 || i == len(unique)-1 {
			progress := pctChecking + int(float64(i)*vulnStep)
			ev := status(progress, "Checking: %s@%s (%d/%d)", dep.Name, dep.Version, i+1, len(unique))
			ev.CurrentPackage = dep.Name
			ev.PackagesChecked = i + 1
			ev.TotalPackages = len(unique)
			if !emit(ev) {
				return
			}
		}

		vulns := s.vulns.Resolve(ctx, dep.Name, dep.Version, dep.Ecosystem)
		if len(vulns) > 0 {
			slog.Info("vulnerabilities found",
				"package", dep.Name, "version", dep.Version, "count", len(vulns))
			result.Vulnerabilities = append(result.Vulnerabilities, vulns...)
		}
	}

	// Phase 6: finalize.
	result.Summary = summarize(result)
	slog.Info("scan complete",
		"owner", owner, "repo", repo,
		"dependencies", result.Summary.TotalDependencies,
		"vulnerabilities", result.Summary.TotalVulnerabilities)
	if emit(status(pctDone, "Scan complete")) {
		emit(Event{Type: EventComplete, Result: result})
	}
}
