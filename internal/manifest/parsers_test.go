package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePackageJSON(t *testing.T) {
	content := `{
		"dependencies": {"lodash": "^4.17.15", "express": "~4.17.1"},
		"devDependencies": {"jest": "29.0.0"},
		"peerDependencies": {"react": ">=17.0.0"},
		"optionalDependencies": {"fsevents": "2.3.2"}
	}`

	deps := ParsePackageJSON(content)
	require.Len(t, deps, 5)

	byName := indexByName(deps)
	assert.Equal(t, "4.17.15", byName["lodash"].Version)
	assert.Equal(t, "dependencies", byName["lodash"].Type)
	assert.Equal(t, "4.17.1", byName["express"].Version)
	assert.Equal(t, "29.0.0", byName["jest"].Version)
	assert.Equal(t, "devDependencies", byName["jest"].Type)
	assert.Equal(t, "17.0.0", byName["react"].Version)
	assert.Equal(t, "peerDependencies", byName["react"].Type)
	assert.Equal(t, "optionalDependencies", byName["fsevents"].Type)

	for _, d := range deps {
		assert.Equal(t, EcosystemNPM, d.Ecosystem)
	}
}

func TestParsePackageJSON_Malformed(t *testing.T) {
	assert.Empty(t, ParsePackageJSON("{not json"))
	assert.Empty(t, ParsePackageJSON(`{"name": "no-deps"}`))
}

func TestParseRequirements(t *testing.T) {
	content := `# comment
flask==2.0.0
requests>=2.25.0,<3.0
uvicorn

-r other-requirements.txt
-e .
`
	deps := ParseRequirements(content)
	require.Len(t, deps, 3)

	assert.Equal(t, Dependency{Name: "flask", Version: "2.0.0", Type: "dependencies", Ecosystem: EcosystemPyPI}, deps[0])
	assert.Equal(t, "2.25.0", deps[1].Version)
	assert.Equal(t, "latest", deps[2].Version)
}

func TestParsePipfile(t *testing.T) {
	content := `[packages]
flask = "==2.0.0"
requests = {version = ">=2.25.0", extras = ["security"]}
django = "*"

[dev-packages]
pytest = "~=7.0"
`
	deps := ParsePipfile(content)
	require.Len(t, deps, 4)

	byName := indexByName(deps)
	assert.Equal(t, "2.0.0", byName["flask"].Version)
	assert.Equal(t, "2.25.0", byName["requests"].Version)
	assert.Equal(t, "latest", byName["django"].Version)
	assert.Equal(t, "7.0", byName["pytest"].Version)
	assert.Equal(t, "dev-packages", byName["pytest"].Type)

	for _, d := range deps {
		assert.Equal(t, EcosystemPyPI, d.Ecosystem)
	}
}

func TestParsePipfile_Malformed(t *testing.T) {
	assert.Empty(t, ParsePipfile("[packages\nbroken"))
}

func TestParsePyProject(t *testing.T) {
	content := `[build-system]
requires = ["setuptools>=61.0", "wheel"]

[project]
name = "demo"
dependencies = ["flask>=2.0", "requests"]

[project.optional-dependencies]
dev = ["pytest>=7.0"]

[tool.poetry.dependencies]
python = "^3.9"
flask = "^2.0.0"
`
	deps := ParsePyProject(content)
	require.Len(t, deps, 6)

	keys := make([]string, 0, len(deps))
	for _, d := range deps {
		assert.Equal(t, EcosystemPyPI, d.Ecosystem)
		keys = append(keys, d.Name+"/"+d.Type+"/"+d.Version)
	}

	assert.Contains(t, keys, "setuptools/build-requires/61.0")
	assert.Contains(t, keys, "wheel/build-requires/latest")
	assert.Contains(t, keys, "flask/dependencies/2.0.0") // poetry table
	assert.Contains(t, keys, "flask/dependencies/2.0")   // PEP 621
	assert.Contains(t, keys, "requests/dependencies/latest")
	assert.Contains(t, keys, "pytest/optional-dev/7.0")

	// The python entry is a runtime pin, never a dependency.
	for _, d := range deps {
		assert.NotEqual(t, "python", d.Name)
	}
}

func TestParseGemfileLock(t *testing.T) {
	content := `GEM
  remote: https://rubygems.org/
  specs:
    rack (2.2.3)
      ruby2_keywords (>= 0.0.1)
    rails (6.1.4)

PLATFORMS
  ruby

DEPENDENCIES
  rails
`
	deps := ParseGemfileLock(content)
	require.Len(t, deps, 2)
	assert.Equal(t, Dependency{Name: "rack", Version: "2.2.3", Type: "dependencies", Ecosystem: EcosystemRubyGems}, deps[0])
	assert.Equal(t, "rails", deps[1].Name)
	assert.Equal(t, "6.1.4", deps[1].Version)
}

func TestParseGoMod(t *testing.T) {
	content := `module example.com/demo

go 1.21

require (
	github.com/pkg/errors v0.9.1
	golang.org/x/text v0.3.7 // indirect
)

require github.com/stretchr/testify v1.8.0
`
	deps := ParseGoMod(content)
	require.Len(t, deps, 3)

	byName := indexByName(deps)
	assert.Equal(t, "0.9.1", byName["github.com/pkg/errors"].Version)
	assert.Equal(t, "0.3.7", byName["golang.org/x/text"].Version)
	assert.Equal(t, "1.8.0", byName["github.com/stretchr/testify"].Version)
	for _, d := range deps {
		assert.Equal(t, EcosystemGo, d.Ecosystem)
	}
}

func TestParseGoMod_Malformed(t *testing.T) {
	assert.Empty(t, ParseGoMod("require (((("))
}

func TestParseComposerJSON(t *testing.T) {
	content := `{
		"require": {"php": ">=8.0", "php-64bit": ">=8.0", "ext-json": "*", "monolog/monolog": "^2.3"},
		"require-dev": {"phpunit/phpunit": "~9.5"}
	}`

	deps := ParseComposerJSON(content)
	require.Len(t, deps, 2)
	assert.Equal(t, Dependency{Name: "monolog/monolog", Version: "2.3", Type: "require", Ecosystem: EcosystemPackagist}, deps[0])
	assert.Equal(t, Dependency{Name: "phpunit/phpunit", Version: "9.5", Type: "require-dev", Ecosystem: EcosystemPackagist}, deps[1])
}

func TestParserFor(t *testing.T) {
	assert.NotNil(t, ParserFor("package.json"))
	assert.NotNil(t, ParserFor("go.mod"))
	assert.Nil(t, ParserFor("Makefile"))
	assert.Nil(t, ParserFor(""))
}

func TestCleanVersion(t *testing.T) {
	cases := map[string]string{
		"^4.17.15":    "4.17.15",
		"~1.2.3":      "1.2.3",
		">=2.0,<3.0":  "2.0",
		"==1.0.0":     "1.0.0",
		"1.0.0 alpha": "1.0.0",
		"*":           "latest",
		"":            "latest",
		"4.17.21":     "4.17.21",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanVersion(in), "cleanVersion(%q)", in)
	}
}

func indexByName(deps []Dependency) map[string]Dependency {
	m := make(map[string]Dependency, len(deps))
	for _, d := range deps {
		m[d.Name] = d
	}
	return m
}
