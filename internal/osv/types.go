package osv

import "encoding/json"

// Severity buckets, ordered worst first.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
	SeverityUnknown  = "UNKNOWN"
)

// Vulnerability is one normalized advisory. Package, Version and
// Ecosystem attribute the advisory to the scanned dependency.
type Vulnerability struct {
	ID         string   `json:"id"`
	CVE        string   `json:"cve,omitempty"`
	Summary    string   `json:"summary"`
	Severity   string   `json:"severity"`
	CVSSScore  *float64 `json:"cvss_score,omitempty"`
	Published  string   `json:"published"`
	References []string `json:"references"`

	Package   string `json:"package"`
	Version   string `json:"version"`
	Ecosystem string `json:"ecosystem"`
}

// rawVulnerability mirrors the relevant parts of one OSV API record.
type rawVulnerability struct {
	ID        string   `json:"id"`
	Summary   string   `json:"summary"`
	Details   string   `json:"details"`
	Aliases   []string `json:"aliases"`
	Published string   `json:"published"`

	References []struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	} `json:"references"`

	// Score is either a numeric string or a CVSS vector, depending on
	// the advisory source.
	Severity []struct {
		Type  string `json:"type"`
		Score string `json:"score"`
	} `json:"severity"`

	DatabaseSpecific struct {
		Severity string `json:"severity"`
		// Shape varies across advisory databases (object, string or
		// absent), so it is decoded leniently during normalization.
		CVSS json.RawMessage `json:"cvss"`
	} `json:"database_specific"`
}
