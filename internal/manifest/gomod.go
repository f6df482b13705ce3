package manifest

import (
	"log/slog"
	"strings"

	"golang.org/x/mod/modfile"
)

// ParseGoMod extracts Go module dependencies from go.mod content. The
// modfile parser handles both the parenthesized require block and
// single-line requires, and drops comment lines for us. The leading "v"
// is stripped because OSV expects bare versions for the Go ecosystem.
func ParseGoMod(content string) []Dependency {
	f, err := modfile.Parse("go.mod", []byte(content), nil)
	if err != nil {
		slog.Warn("failed to parse go.mod", "error", err)
		return nil
	}

	var deps []Dependency
	for _, req := range f.Require {
		if req.Mod.Path == "" {
			continue
		}
		deps = append(deps, Dependency{
			Name:      req.Mod.Path,
			Version:   strings.TrimPrefix(req.Mod.Version, "v"),
			Type:      "dependencies",
			Ecosystem: EcosystemGo,
		})
	}
	return deps
}
