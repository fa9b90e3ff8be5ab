// Package manifest reads project manifests (package.json, pyproject.toml,
// requirements.txt, go.mod) and reports the database libraries they declare.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/imyousuf/schemascan/internal/loader"
)

// Ecosystems.
const (
	EcosystemNode   = "nodejs"
	EcosystemPython = "python"
	EcosystemGo     = "go"
)

// Dependency is one declared dependency of a manifest.
type Dependency struct {
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
	Ecosystem string `json:"ecosystem"`
	Manifest  string `json:"manifest"`
	Line      int    `json:"line,omitempty"`
}

var manifestNames = map[string]bool{
	"package.json":     true,
	"pyproject.toml":   true,
	"requirements.txt": true,
	"go.mod":           true,
}

// IsManifest reports whether path names a supported manifest file.
func IsManifest(path string) bool {
	return manifestNames[filepath.Base(path)]
}

// Parse returns every dependency declared by the manifest at path.
func Parse(path string, content []byte) ([]Dependency, error) {
	switch filepath.Base(path) {
	case "package.json":
		return parsePackageJSON(path, content)
	case "pyproject.toml":
		return parsePyproject(path, content)
	case "requirements.txt":
		return parseRequirements(path, content), nil
	case "go.mod":
		return parseGoMod(path, content), nil
	default:
		return nil, nil
	}
}

// Detect parses the manifests among files and returns the database libraries
// they declare, sorted by name. Manifests that fail to parse are reported in
// the returned error; the others still contribute.
func Detect(files []loader.File) ([]Dependency, error) {
	var (
		libs []Dependency
		errs []error
	)
	for _, f := range files {
		if !IsManifest(f.Path) || len(f.Content) == 0 {
			continue
		}
		deps, err := Parse(f.Path, f.Content)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, d := range deps {
			if IsDatabaseLibrary(d.Ecosystem, d.Name) {
				libs = append(libs, d)
			}
		}
	}
	sort.SliceStable(libs, func(i, j int) bool { return libs[i].Name < libs[j].Name })
	return libs, errors.Join(errs...)
}

// Names returns the unique library names of deps in order.
func Names(deps []Dependency) []string {
	seen := make(map[string]bool, len(deps))
	out := []string{}
	for _, d := range deps {
		if !seen[d.Name] {
			seen[d.Name] = true
			out = append(out, d.Name)
		}
	}
	return out
}

// --- package.json ---

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func parsePackageJSON(path string, content []byte) ([]Dependency, error) {
	var pj packageJSON
	if err := json.Unmarshal(content, &pj); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lines := strings.Split(string(content), "\n")
	var deps []Dependency
	for _, group := range []map[string]string{pj.Dependencies, pj.DevDependencies} {
		names := make([]string, 0, len(group))
		for name := range group {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			deps = append(deps, Dependency{
				Name:      name,
				Version:   group[name],
				Ecosystem: EcosystemNode,
				Manifest:  path,
				Line:      findLine(lines, `"`+name+`"`),
			})
		}
	}
	return deps, nil
}

// --- pyproject.toml ---

type pyproject struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func parsePyproject(path string, content []byte) ([]Dependency, error) {
	var pp pyproject
	if err := toml.Unmarshal(content, &pp); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lines := strings.Split(string(content), "\n")
	var deps []Dependency
	for _, spec := range pp.Project.Dependencies {
		name, version := splitPythonRequirement(spec)
		deps = append(deps, Dependency{
			Name: name, Version: version, Ecosystem: EcosystemPython, Manifest: path, Line: findLine(lines, name),
		})
	}

	poetry := make([]string, 0, len(pp.Tool.Poetry.Dependencies))
	for name := range pp.Tool.Poetry.Dependencies {
		if name != "python" {
			poetry = append(poetry, name)
		}
	}
	sort.Strings(poetry)
	for _, name := range poetry {
		version, _ := pp.Tool.Poetry.Dependencies[name].(string)
		deps = append(deps, Dependency{
			Name: name, Version: version, Ecosystem: EcosystemPython, Manifest: path, Line: findLine(lines, name),
		})
	}
	return deps, nil
}

// --- requirements.txt ---

func parseRequirements(path string, content []byte) []Dependency {
	var deps []Dependency
	for i, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if idx := strings.Index(trimmed, "#"); idx >= 0 {
			trimmed = strings.TrimSpace(trimmed[:idx])
		}
		// Skip blanks and pip flags (-r, -e, --index-url).
		if trimmed == "" || strings.HasPrefix(trimmed, "-") {
			continue
		}
		name, version := splitPythonRequirement(trimmed)
		deps = append(deps, Dependency{
			Name: name, Version: version, Ecosystem: EcosystemPython, Manifest: path, Line: i + 1,
		})
	}
	return deps
}

var pythonRequirementRe = regexp.MustCompile(`^([A-Za-z0-9_.-]+)(?:\[[A-Za-z0-9_,.-]+\])?(.*)$`)

// splitPythonRequirement splits a PEP 508 requirement such as
// "psycopg2-binary>=2.9" into name and version constraint. Extras are dropped.
func splitPythonRequirement(req string) (name, version string) {
	req = strings.TrimSpace(req)
	m := pythonRequirementRe.FindStringSubmatch(req)
	if m == nil {
		return req, ""
	}
	version = strings.TrimSpace(m[2])
	if idx := strings.Index(version, ";"); idx >= 0 {
		version = strings.TrimSpace(version[:idx])
	}
	return strings.ToLower(m[1]), version
}

// --- go.mod ---

func parseGoMod(path string, content []byte) []Dependency {
	var deps []Dependency
	inBlock := false
	for i, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if idx := strings.Index(trimmed, "//"); idx >= 0 {
			trimmed = strings.TrimSpace(trimmed[:idx])
		}
		switch {
		case trimmed == "require (":
			inBlock = true
			continue
		case trimmed == ")":
			inBlock = false
			continue
		case strings.HasPrefix(trimmed, "require "):
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "require "))
		case !inBlock:
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}
		deps = append(deps, Dependency{
			Name: fields[0], Version: fields[1], Ecosystem: EcosystemGo, Manifest: path, Line: i + 1,
		})
	}
	return deps
}

// findLine returns the 1-based number of the first line containing substr, or 0.
func findLine(lines []string, substr string) int {
	for i, line := range lines {
		if strings.Contains(line, substr) {
			return i + 1
		}
	}
	return 0
}
