package main

import (
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func newTestResolver(t *testing.T, root string) *ModuleResolver {
	t.Helper()
	manifest, err := ReadManifest(filepath.Join(root, "package.json"))
	if err != nil {
		manifest = EmptyManifest(root)
	}
	var tsConfig *TsConfig
	if parsed, err := ParseTsConfig(filepath.Join(root, "tsconfig.json")); err == nil {
		tsConfig = parsed
	}
	return NewModuleResolver(ResolverConfig{
		RootDir:  root,
		Manifest: manifest,
		Aliases:  NewAliasTable(tsConfig, manifest, nil),
	})
}

func TestResolveClassifiesBareSpecifiers(t *testing.T) {
	root := writeProject(t, map[string]string{
		"package.json": `{"dependencies": {"uuid": "9"}, "devDependencies": {"vitest": "1"}}`,
	})
	resolver := newTestResolver(t, root)
	dir := root + "/src"

	fs := resolver.Resolve("node:fs", dir, ViaImport)
	assert.Equal(t, fs.Kind, BuiltinModuleDependency)
	assert.Equal(t, fs.FullName, "fs")

	path := resolver.Resolve("path", dir, ViaRequire)
	assert.Equal(t, path.Kind, BuiltinModuleDependency)
	assert.Equal(t, path.ResolvedVia, ViaRequire)

	uuid := resolver.Resolve("uuid/v4", dir, ViaImport)
	assert.Equal(t, uuid.Kind, RuntimePackageDependency)
	assert.Equal(t, uuid.FullName, "uuid")
	assert.Equal(t, uuid.Name, "uuid/v4")

	vitest := resolver.Resolve("vitest", dir, ViaImport)
	assert.Equal(t, vitest.Kind, DevPackageDependency)

	undeclared := resolver.Resolve("lodash", dir, ViaImport)
	assert.Equal(t, undeclared.Kind, InvalidDependency)
	assert.Equal(t, undeclared.Request, "lodash")
}

func TestResolveRelativeFiles(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/a.ts":           "",
		"src/a.js":           "",
		"src/lib/index.tsx":  "",
		"src/legacy.ts":      "",
		"src/styles.css":     "",
		"src/same/index.ts":  "",
		"src/same.ts":        "",
		"src/nested/deep.ts": "",
	})
	resolver := newTestResolver(t, root)
	dir := root + "/src"

	cases := []struct {
		specifier string
		expected  string
	}{
		// extension order is deterministic, .ts before .js
		{"./a", "src/a.ts"},
		{"./a.js", "src/a.js"},
		{"./lib", "src/lib/index.tsx"},
		{"./lib/", "src/lib/index.tsx"},
		// .js written for a TypeScript source
		{"./legacy.js", "src/legacy.ts"},
		{"./styles.css", "src/styles.css"},
		// a file wins over a directory with the same name
		{"./same", "src/same.ts"},
		{"./same/", "src/same/index.ts"},
		{"../src/nested/deep", "src/nested/deep.ts"},
		{root + "/src/nested/deep", "src/nested/deep.ts"},
	}

	for _, tc := range cases {
		t.Run(tc.specifier, func(t *testing.T) {
			dep := resolver.Resolve(tc.specifier, dir, ViaImport)
			assert.Equal(t, dep.Kind, FilePathDependency)
			assert.Equal(t, dep.Name, tc.expected)
			assert.Equal(t, dep.FullName, root+"/"+tc.expected)
			assert.Equal(t, dep.Request, tc.specifier)
		})
	}
}

func TestResolveFollowsConfiguredExtensionOrder(t *testing.T) {
	root := writeProject(t, map[string]string{"src/a.ts": "", "src/a.js": ""})

	cases := []struct {
		extensions []string
		expected   string
	}{
		{[]string{".ts", ".js"}, "src/a.ts"},
		{[]string{".js", ".ts"}, "src/a.js"},
	}
	for _, tc := range cases {
		t.Run(tc.expected, func(t *testing.T) {
			resolver := NewModuleResolver(ResolverConfig{
				RootDir:    root,
				Extensions: tc.extensions,
				Manifest:   EmptyManifest(root),
			})
			dep := resolver.Resolve("./a", root+"/src", ViaImport)
			assert.Equal(t, dep.Kind, FilePathDependency)
			assert.Equal(t, dep.Name, tc.expected)
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	root := writeProject(t, map[string]string{"src/a.ts": "", "src/b.ts": ""})
	resolver := newTestResolver(t, root)

	first := resolver.Resolve("./a", root+"/src", ViaImport)
	second := resolver.Resolve("./a", root+"/src", ViaImport)
	assert.Equal(t, second, first)

	missing := resolver.Resolve("./missing", root+"/src", ViaImport)
	assert.Equal(t, missing.Kind, InvalidDependency)
	assert.Equal(t, resolver.Resolve("./missing", root+"/src", ViaImport), missing)
}

func TestResolveAliases(t *testing.T) {
	root := writeProject(t, map[string]string{
		"tsconfig.json":       `{"compilerOptions": {"baseUrl": ".", "paths": {"@domain/*": ["src/domain/*"]}}}`,
		"package.json":        `{"imports": {"#utils/*": "./src/utils/*.ts"}}`,
		"src/domain/user.ts":  "",
		"src/utils/date.ts":   "",
		"src/shared/index.ts": "",
		"@domain/missing.ts":  "",
	})
	resolver := newTestResolver(t, root)
	dir := root + "/src/app"

	user := resolver.Resolve("@domain/user", dir, ViaImport)
	assert.Equal(t, user.Kind, FilePathDependency)
	assert.Equal(t, user.Name, "src/domain/user.ts")

	date := resolver.Resolve("#utils/date", dir, ViaImport)
	assert.Equal(t, date.Kind, FilePathDependency)
	assert.Equal(t, date.Name, "src/utils/date.ts")

	shared := resolver.Resolve("src/shared", dir, ViaImport)
	assert.Equal(t, shared.Kind, FilePathDependency)
	assert.Equal(t, shared.Name, "src/shared/index.ts")

	// a matched alias never falls back to another location
	missing := resolver.Resolve("@domain/missing", dir, ViaImport)
	assert.Equal(t, missing.Kind, InvalidDependency)
}

func TestResolverExtensions(t *testing.T) {
	resolver := NewModuleResolver(ResolverConfig{RootDir: "/p", Extensions: []string{"ts", " .vue ", ""}})
	assert.DeepEqual(t, resolver.Extensions(), []string{".ts", ".vue"})

	defaults := NewModuleResolver(ResolverConfig{RootDir: "/p"})
	assert.DeepEqual(t, defaults.Extensions(), DefaultExtensions)
}

func TestDependencyKindNames(t *testing.T) {
	assert.Equal(t, BuiltinModuleDependency.String(), "builtin-module")
	assert.Equal(t, RuntimePackageDependency.String(), "runtime-package")
	assert.Equal(t, DevPackageDependency.String(), "dev-package")
	assert.Equal(t, FilePathDependency.String(), "file-path")
	assert.Equal(t, InvalidDependency.String(), "invalid")
	assert.Equal(t, ViaRequire.String(), "require")
	assert.Equal(t, ViaImport.String(), "import")
}
