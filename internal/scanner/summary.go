package scanner

import "depscan/internal/osv"

// summarize computes the aggregate counters over a scan's final
// dependency and vulnerability sets. A dependency counts as vulnerable
// once per distinct (ecosystem, name) pair, whatever the number of
// affected versions or advisories.
func summarize(r *Result) Summary {
	s := Summary{
		TotalDependencies:    len(r.Dependencies),
		TotalVulnerabilities: len(r.Vulnerabilities),
	}

	vulnerable := make(map[string]struct{})
	for _, v := range r.Vulnerabilities {
		vulnerable[v.Ecosystem+":"+v.Package] = struct{}{}
		switch v.Severity {
		case osv.SeverityCritical:
			s.Critical++
		case osv.SeverityHigh:
			s.High++
		case osv.SeverityMedium:
			s.Medium++
		case osv.SeverityLow:
			s.Low++
		default:
			s.Unknown++
		}
	}
	s.VulnerableDependencies = len(vulnerable)
	return s
}
