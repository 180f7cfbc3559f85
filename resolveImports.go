package main

import (
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

type DependencyKind uint8

const (
	BuiltinModuleDependency DependencyKind = iota
	RuntimePackageDependency
	DevPackageDependency
	FilePathDependency
	InvalidDependency
)

func (k DependencyKind) String() string {
	switch k {
	case BuiltinModuleDependency:
		return "builtin-module"
	case RuntimePackageDependency:
		return "runtime-package"
	case DevPackageDependency:
		return "dev-package"
	case FilePathDependency:
		return "file-path"
	case InvalidDependency:
		return "invalid"
	}
	return "unknown"
}

// ResolvedVia tells how a specifier was discovered. Dynamic imports count as Import.
type ResolvedVia uint8

const (
	ViaImport ResolvedVia = iota
	ViaRequire
)

func (v ResolvedVia) String() string {
	if v == ViaRequire {
		return "require"
	}
	return "import"
}

// Dependency is one resolved import/require occurrence of a file.
//
// Name is the specifier as written, or the root relative path for file
// dependencies. FullName is the absolute internal path for file dependencies
// and the package (or builtin) name otherwise.
type Dependency struct {
	Name        string
	FullName    string
	Kind        DependencyKind
	ResolvedVia ResolvedVia
	// Request is the raw specifier, kept for reports.
	Request string
}

var DefaultExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

var scriptExtensions = []string{".js", ".jsx", ".mjs", ".cjs"}

const probeCacheSize = 8192

type ResolverConfig struct {
	RootDir string
	// Extensions are probed in this order.
	Extensions []string
	Manifest   *Manifest
	Aliases    *AliasTable
}

// ModuleResolver classifies specifiers and resolves path-like ones to files
// on disk. It lives for a single check, so filesystem probes are memoized
// without invalidation.
type ModuleResolver struct {
	rootDir    string
	extensions []string
	manifest   *Manifest
	aliases    *AliasTable
	probes     *lru.Cache[string, bool]
}

func NewModuleResolver(config ResolverConfig) *ModuleResolver {
	extensions := normalizeExtensions(config.Extensions)
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	// lru.New only fails for a non-positive size
	probes, _ := lru.New[string, bool](probeCacheSize)

	manifest := config.Manifest
	if manifest == nil {
		manifest = EmptyManifest(NormalizePathForInternal(config.RootDir))
	}

	return &ModuleResolver{
		rootDir:    NormalizePathForInternal(config.RootDir),
		extensions: extensions,
		manifest:   manifest,
		aliases:    config.Aliases,
		probes:     probes,
	}
}

func normalizeExtensions(extensions []string) []string {
	result := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		result = append(result, ext)
	}
	return result
}

func (r *ModuleResolver) Extensions() []string {
	return r.extensions
}

// Resolve classifies specifier imported from a file located in importingFileDir.
// Order: builtin module, runtime package, dev package, path (aliased or
// relative). A matched alias never falls back to relative resolution.
func (r *ModuleResolver) Resolve(specifier string, importingFileDir string, via ResolvedVia) Dependency {
	dep := Dependency{
		Name:        specifier,
		FullName:    specifier,
		ResolvedVia: via,
		Request:     specifier,
	}

	pathLike := isRelativeOrAbsoluteSpecifier(specifier)

	if !pathLike {
		if IsBuiltInModule(specifier) {
			dep.Kind = BuiltinModuleDependency
			dep.FullName = GetNodeModuleName(specifier)
			return dep
		}
		if r.manifest.IsRuntimeDependency(specifier) {
			dep.Kind = RuntimePackageDependency
			dep.FullName = GetNodeModuleName(specifier)
			return dep
		}
		if r.manifest.IsDevDependency(specifier) {
			dep.Kind = DevPackageDependency
			dep.FullName = GetNodeModuleName(specifier)
			return dep
		}
	}

	var candidate string
	if aliased, entry, matched := r.aliases.Rewrite(specifier); matched {
		logDebug("'%s' rewritten by %s alias '%s' to '%s'", specifier, entry.Source, entry.Key, aliased)
		candidate = aliased
	} else if strings.HasPrefix(specifier, "/") {
		candidate = specifier
	} else {
		candidate = filepath.Join(DenormalizePathForOS(importingFileDir), specifier)
	}

	resolved, ok := r.probe(NormalizePathForInternal(candidate), strings.HasSuffix(specifier, "/"))
	if !ok {
		dep.Kind = InvalidDependency
		return dep
	}

	dep.Kind = FilePathDependency
	dep.FullName = resolved
	dep.Name = RelativeToRoot(resolved, r.rootDir)
	return dep
}

// probe tries, in order: the literal path, the path with each candidate
// extension, the path's index file with each extension and finally the path
// with its script extension swapped, eg. `./file.js` written for `file.ts`.
func (r *ModuleResolver) probe(modulePath string, directoryOnly bool) (string, bool) {
	if !directoryOnly {
		if r.isRegularFile(modulePath) {
			return modulePath, true
		}
		for _, ext := range r.extensions {
			if r.isRegularFile(modulePath + ext) {
				return modulePath + ext, true
			}
		}
	}

	for _, ext := range r.extensions {
		indexPath := modulePath + "/index" + ext
		if r.isRegularFile(indexPath) {
			return indexPath, true
		}
	}

	if directoryOnly {
		return "", false
	}

	currentExt := filepath.Ext(modulePath)
	for _, scriptExt := range scriptExtensions {
		if currentExt != scriptExt {
			continue
		}
		base := strings.TrimSuffix(modulePath, scriptExt)
		for _, ext := range r.extensions {
			if ext == scriptExt {
				continue
			}
			if r.isRegularFile(base + ext) {
				return base + ext, true
			}
		}
	}

	return "", false
}

func (r *ModuleResolver) isRegularFile(path string) bool {
	if cached, ok := r.probes.Get(path); ok {
		return cached
	}
	info, err := os.Stat(DenormalizePathForOS(path))
	isFile := err == nil && info.Mode().IsRegular()
	r.probes.Add(path, isFile)
	return isFile
}
