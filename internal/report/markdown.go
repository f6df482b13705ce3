package report

import (
	"fmt"
	"sort"
	"strings"

	"depscan/internal/scanner"
)

// Markdown renders the result as a report document, suitable for
// terminal rendering or dropping into an issue.
func Markdown(repo string, result *scanner.Result) string {
	var b strings.Builder
	s := result.Summary

	fmt.Fprintf(&b, "# Dependency Scan: %s\n\n", repo)
	fmt.Fprintf(&b, "**%d** dependencies scanned across **%d** manifests.\n\n",
		s.TotalDependencies, len(result.FilesScanned))

	if len(result.Ecosystems) > 0 {
		b.WriteString("## Ecosystems\n\n")
		b.WriteString("| Ecosystem | Dependencies |\n|---|---|\n")
		for _, eco := range sortedEcosystems(result.Ecosystems) {
			fmt.Fprintf(&b, "| %s | %d |\n", eco, result.Ecosystems[eco])
		}
		b.WriteString("\n")
	}

	if s.TotalVulnerabilities == 0 {
		b.WriteString("## Vulnerabilities\n\nNo known vulnerabilities found.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "## Vulnerabilities (%d)\n\n", s.TotalVulnerabilities)
	fmt.Fprintf(&b, "Critical: %d, High: %d, Medium: %d, Low: %d, Unknown: %d\n\n",
		s.Critical, s.High, s.Medium, s.Low, s.Unknown)
	b.WriteString("| Severity | Package | Version | ID | CVE | Summary |\n|---|---|---|---|---|---|\n")
	for _, v := range result.Vulnerabilities {
		cve := v.CVE
		if cve == "" {
			cve = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			v.Severity, v.Package, v.Version, v.ID, cve, escapePipes(v.Summary))
	}
	return b.String()
}

func sortedEcosystems(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapePipes(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
