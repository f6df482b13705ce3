package notify

import (
	"context"
	"fmt"

	"depscan/internal/scanner"
)

// Notifier delivers a scan outcome to an external channel. Delivery
// failures are the caller's to log; they never fail a scan.
type Notifier interface {
	NotifyScan(ctx context.Context, repo string, result *scanner.Result) error
}

// summaryText renders the one-line scan summary shared by all channels.
func summaryText(repo string, result *scanner.Result) string {
	s := result.Summary
	if s.TotalVulnerabilities == 0 {
		return fmt.Sprintf("Scan of %s: %d dependencies, no known vulnerabilities", repo, s.TotalDependencies)
	}
	return fmt.Sprintf(
		"Scan of %s: %d vulnerabilities across %d of %d dependencies (%d critical, %d high, %d medium, %d low)",
		repo, s.TotalVulnerabilities, s.VulnerableDependencies, s.TotalDependencies,
		s.Critical, s.High, s.Medium, s.Low)
}

// severityColor picks the attachment color for the worst severity found.
func severityColor(result *scanner.Result) string {
	s := result.Summary
	switch {
	case s.Critical > 0:
		return "#d00000"
	case s.High > 0:
		return "#e85d04"
	case s.Medium > 0:
		return "#ffba08"
	case s.Low > 0:
		return "#90be6d"
	default:
		return "#2d6a4f"
	}
}
