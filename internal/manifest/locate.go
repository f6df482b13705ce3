package manifest

import (
	"sort"
	"strings"
)

// manifestFiles are the basenames recognized as dependency manifests.
var manifestFiles = map[string]bool{
	"package.json":     true, // npm
	"requirements.txt": true, // pip
	"Pipfile":          true, // pipenv
	"pyproject.toml":   true, // Poetry / PEP 621
	"Gemfile.lock":     true, // Bundler
	"go.mod":           true, // Go modules
	"composer.json":    true, // Composer
}

// skipDirs mark vendored, generated, test and doc trees. Matched as a
// plain substring anywhere in the path.
var skipDirs = []string{
	"node_modules/",
	"vendor/",
	"__pycache__/",
	".venv/",
	"venv/",
	"test/",
	"tests/",
	"example/",
	"examples/",
	"docs/",
	"testdata/",
	"_examples/",
	"benchmarks/",
	".github/",
}

// Locate filters a repository file listing down to recognized manifest
// paths, ordered shallowest first. Paths at the same depth keep their
// input order, so root-level manifests always come before nested ones.
func Locate(paths []string) []string {
	var found []string
	for _, path := range paths {
		if skipPath(path) {
			continue
		}
		base := path
		if i := strings.LastIndexByte(path, '/'); i >= 0 {
			base = path[i+1:]
		}
		if manifestFiles[base] {
			found = append(found, path)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return strings.Count(found[i], "/") < strings.Count(found[j], "/")
	})
	return found
}

func skipPath(path string) bool {
	for _, dir := range skipDirs {
		if strings.Contains(path, dir) {
			return true
		}
	}
	return false
}
