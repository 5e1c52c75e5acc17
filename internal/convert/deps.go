package convert

import (
	"fmt"
	"sort"
	"strings"
)

// knownVersions pins the packages converted sources commonly pull in.
// Anything else resolves to "latest" and is called out in the result so
// the caller can pin it later.
var knownVersions = map[string]string{
	"remotion":           "4.0.221",
	"@remotion/player":   "4.0.221",
	"@remotion/shapes":   "4.0.221",
	"@remotion/noise":    "4.0.221",
	"react":              "18.3.1",
	"react-dom":          "18.3.1",
	"three":              "0.167.1",
	"@react-three/fiber": "8.17.10",
	"@react-three/drei":  "9.114.3",
	"lucide-react":       "0.441.0",
	"react-icons":        "5.3.0",
	"framer-motion":      "11.5.4",
	"styled-components":  "6.1.13",
	"clsx":               "2.1.1",
	"classnames":         "2.5.1",
	"date-fns":           "3.6.0",
	"lodash":             "4.17.21",
	"recharts":           "2.12.7",
	"d3":                 "7.9.0",
	"zustand":            "4.5.5",
	"tailwind-merge":     "2.5.2",
}

const unknownVersion = "latest"

// memoryManifest backs conversions that run without a project manifest.
// Seeded with what every hosting project already has.
type memoryManifest struct {
	deps map[string]string
}

func newMemoryManifest() *memoryManifest {
	m := &memoryManifest{deps: make(map[string]string)}
	for _, name := range []string{"react", "react-dom", "remotion"} {
		m.deps[name] = knownVersions[name]
	}
	return m
}

func (m *memoryManifest) HasDependency(name string) bool {
	_, ok := m.deps[name]
	return ok
}

func (m *memoryManifest) AddDependency(name, version string) {
	m.deps[name] = version
}

// packageName collapses an import path to its npm package: deep imports
// lose their subpath, scoped packages keep scope plus name, and
// relative or absolute paths resolve to nothing.
func packageName(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || strings.HasPrefix(path, ".") || strings.HasPrefix(path, "/") ||
		strings.HasPrefix(path, "data:") || strings.HasPrefix(path, "http:") || strings.HasPrefix(path, "https:") {
		return ""
	}
	parts := strings.Split(path, "/")
	if strings.HasPrefix(path, "@") {
		if len(parts) < 2 {
			return ""
		}
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// resolveDependencies walks the imports that survived conversion,
// records them on the result, and appends any package the manifest is
// missing. The baseline packages never need appending because every
// manifest starts with them.
func resolveDependencies(m *sourceModule, manifest Manifest, res *Result) {
	if manifest == nil {
		manifest = newMemoryManifest()
	}
	seen := make(map[string]bool)
	for _, imp := range m.imports {
		res.RetainedImports = append(res.RetainedImports, imp.path)
		pkg := packageName(imp.path)
		if pkg == "" || seen[pkg] {
			continue
		}
		seen[pkg] = true
		if manifest.HasDependency(pkg) {
			continue
		}
		version, pinned := knownVersions[pkg]
		if !pinned {
			version = unknownVersion
		}
		manifest.AddDependency(pkg, version)
		if res.AddedDependencies == nil {
			res.AddedDependencies = make(map[string]string)
		}
		res.AddedDependencies[pkg] = version
		res.note(NoteDependencyAdded, fmt.Sprintf("added dependency %s@%s", pkg, version))
	}
	sort.Strings(res.RetainedImports)
}
