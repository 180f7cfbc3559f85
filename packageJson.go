package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// Manifest is the dependency-declaration view of a package.json.
type Manifest struct {
	Dir                 string
	RuntimeDependencies map[string]bool
	DevDependencies     map[string]bool
	// Imports holds the raw `imports` field (subpath imports, `#` prefixed keys).
	Imports map[string]interface{}
}

type rawPackageJson struct {
	Dependencies         map[string]string      `json:"dependencies"`
	DevDependencies      map[string]string      `json:"devDependencies"`
	PeerDependencies     map[string]string      `json:"peerDependencies"`
	OptionalDependencies map[string]string      `json:"optionalDependencies"`
	Imports              map[string]interface{} `json:"imports"`
}

// EmptyManifest is used when a project has no package.json.
func EmptyManifest(dir string) *Manifest {
	return &Manifest{
		Dir:                 dir,
		RuntimeDependencies: map[string]bool{},
		DevDependencies:     map[string]bool{},
		Imports:             map[string]interface{}{},
	}
}

// ReadManifest reads package.json (JSON or JSONC) at packageJsonPath.
func ReadManifest(packageJsonPath string) (*Manifest, error) {
	content, err := os.ReadFile(packageJsonPath)
	if err != nil {
		return nil, err
	}
	manifest, err := ParseManifest(content, filepath.Dir(packageJsonPath))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", packageJsonPath, err)
	}
	return manifest, nil
}

func ParseManifest(content []byte, dir string) (*Manifest, error) {
	var raw rawPackageJson
	if err := json.Unmarshal(jsonc.ToJSON(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}

	manifest := EmptyManifest(NormalizePathForInternal(dir))
	for _, deps := range []map[string]string{raw.Dependencies, raw.PeerDependencies, raw.OptionalDependencies} {
		for dep := range deps {
			manifest.RuntimeDependencies[dep] = true
		}
	}
	for dep := range raw.DevDependencies {
		manifest.DevDependencies[dep] = true
	}
	if raw.Imports != nil {
		manifest.Imports = raw.Imports
	}
	return manifest, nil
}

// IsRuntimeDependency answers whether the package that request belongs to is a declared runtime dependency.
func (m *Manifest) IsRuntimeDependency(request string) bool {
	return m != nil && m.RuntimeDependencies[GetNodeModuleName(request)]
}

// IsDevDependency answers whether the package that request belongs to is a declared development dependency.
func (m *Manifest) IsDevDependency(request string) bool {
	return m != nil && m.DevDependencies[GetNodeModuleName(request)]
}

// GetNodeModuleName returns the package part of a bare specifier,
// eg `@org/name/src/file` -> `@org/name`, `name/src/file` -> `name`.
func GetNodeModuleName(request string) string {
	request = strings.TrimPrefix(request, "node:")
	splitCount := 2
	if strings.HasPrefix(request, "@") {
		splitCount = 3
	}
	parts := strings.SplitN(request, "/", splitCount)
	if len(parts) < splitCount-1 {
		return request
	}
	return strings.Join(parts[:splitCount-1], "/")
}
