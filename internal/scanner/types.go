package scanner

import (
	"depscan/internal/manifest"
	"depscan/internal/osv"
)

// Summary aggregates the final dependency and vulnerability sets of one
// scan. It is derived once at scan end and never mutated independently.
type Summary struct {
	TotalDependencies      int `json:"total_dependencies"`
	VulnerableDependencies int `json:"vulnerable_dependencies"`
	TotalVulnerabilities   int `json:"total_vulnerabilities"`
	Critical               int `json:"critical"`
	High                   int `json:"high"`
	Medium                 int `json:"medium"`
	Low                    int `json:"low"`
	Unknown                int `json:"unknown"`
}

// Result is the complete outcome of one scan invocation. Each scan owns
// its Result exclusively; nothing is shared across concurrent scans.
type Result struct {
	Dependencies    []manifest.Dependency `json:"dependencies"`
	Vulnerabilities []osv.Vulnerability   `json:"vulnerabilities"`
	Summary         Summary               `json:"summary"`
	Ecosystems      map[string]int        `json:"ecosystems"`
	FilesScanned    []string              `json:"files_scanned"`
}

func newResult() *Result {
	return &Result{
		Dependencies:    []manifest.Dependency{},
		Vulnerabilities: []osv.Vulnerability{},
		Ecosystems:      map[string]int{},
		FilesScanned:    []string{},
	}
}

// EventType tags one progress event.
type EventType string

const (
	EventStatus   EventType = "status"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one unit of the scan's ordered output stream. The stream is
// finite and ends with exactly one complete or error event.
type Event struct {
	Type     EventType `json:"type"`
	Message  string    `json:"message,omitempty"`
	Progress int       `json:"progress,omitempty"`

	// Optional context, populated per phase.
	Files           []string `json:"files,omitempty"`
	CurrentFile     string   `json:"current_file,omitempty"`
	DepsCount       int      `json:"deps_count,omitempty"`
	CurrentPackage  string   `json:"current_package,omitempty"`
	PackagesChecked int      `json:"packages_checked,omitempty"`
	TotalPackages   int      `json:"total_packages,omitempty"`

	// Result is set on complete events only.
	Result *Result `json:"results,omitempty"`
}
