package osv

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxSummaryLen = 200
	maxReferences = 3
)

// normalize derives one Vulnerability from a raw OSV record.
//
// Severity derivation order: a database-specific severity label is the
// starting point; a CVSS v3 entry's score overrides any score seen so
// far; a database-specific cvss score is the final override. Only a
// score that parses as a number settles the bucket; a textual label
// (or UNKNOWN) stands when every candidate score is a vector string.
func normalize(raw rawVulnerability) Vulnerability {
	var scoreCandidate string
	for _, sev := range raw.Severity {
		if sev.Score != "" && scoreCandidate == "" {
			scoreCandidate = sev.Score
		}
		if sev.Type == "CVSS_V3" && sev.Score != "" {
			scoreCandidate = sev.Score
		}
	}

	severity := SeverityUnknown
	if raw.DatabaseSpecific.Severity != "" {
		severity = strings.ToUpper(raw.DatabaseSpecific.Severity)
	}
	if s := dbSpecificScore(raw.DatabaseSpecific.CVSS); s != "" {
		scoreCandidate = s
	}

	var cvssScore *float64
	if scoreCandidate != "" {
		if score, err := strconv.ParseFloat(scoreCandidate, 64); err == nil {
			cvssScore = &score
			severity = severityFromScore(score)
		}
	}

	summary := raw.Summary
	if summary == "" {
		summary = raw.Details
	}
	if summary == "" {
		summary = "No description available"
	}
	summary = truncate(summary, maxSummaryLen)

	var cve string
	for _, alias := range raw.Aliases {
		if strings.HasPrefix(alias, "CVE-") {
			cve = alias
			break
		}
	}

	var refs []string
	for _, ref := range raw.References {
		if len(refs) == maxReferences {
			break
		}
		refs = append(refs, ref.URL)
	}

	published := raw.Published
	if published == "" {
		published = "Unknown"
	}

	return Vulnerability{
		ID:         raw.ID,
		CVE:        cve,
		Summary:    summary,
		Severity:   severity,
		CVSSScore:  cvssScore,
		Published:  published,
		References: refs,
	}
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// severityFromScore maps a CVSS score onto a bucket using the standard
// v3 rating thresholds.
func severityFromScore(score float64) string {
	switch {
	case score >= 9.0:
		return SeverityCritical
	case score >= 7.0:
		return SeverityHigh
	case score >= 4.0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// dbSpecificScore digs a score out of database_specific.cvss, which may
// be an object with a numeric or string score, a bare string, or absent.
func dbSpecificScore(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		Score any `json:"score"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	switch v := obj.Score.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
