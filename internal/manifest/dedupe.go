package manifest

// Dedupe collapses repeated (ecosystem, name, version) triples into a
// unique list preserving first-seen order, and counts the unique
// dependencies per ecosystem. Comparison is exact string equality; any
// normalization already happened in the parsers.
func Dedupe(deps []Dependency) ([]Dependency, map[string]int) {
	seen := make(map[string]struct{}, len(deps))
	unique := make([]Dependency, 0, len(deps))
	counts := make(map[string]int)

	for _, d := range deps {
		key := d.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, d)
		counts[d.Ecosystem]++
	}
	return unique, counts
}
