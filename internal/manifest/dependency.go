package manifest

// Ecosystem names, spelled the way the OSV API expects them.
const (
	EcosystemNPM       = "npm"
	EcosystemPyPI      = "PyPI"
	EcosystemRubyGems  = "RubyGems"
	EcosystemGo        = "Go"
	EcosystemPackagist = "Packagist"
)

// Dependency is one declared package extracted from a manifest file.
type Dependency struct {
	Name      string `json:"name"`
	Version   string `json:"version"` // "latest" when the manifest pins nothing
	Type      string `json:"type"`    // declaration section, e.g. "devDependencies"
	Ecosystem string `json:"ecosystem"`
}

// Key identifies a dependency for deduplication. Type is informational
// and does not take part in identity.
func (d Dependency) Key() string {
	return d.Ecosystem + ":" + d.Name + ":" + d.Version
}
