package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// TsConfig is the part of a tsconfig.json relevant to module resolution.
// BaseURL and every Paths target are absolute, already resolved through the
// whole `extends` chain.
type TsConfig struct {
	Dir     string
	BaseURL string
	Paths   map[string][]string
}

type rawTsConfig struct {
	Extends         interface{} `json:"extends"`
	CompilerOptions struct {
		BaseUrl *string             `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// ParseTsConfig reads tsconfig from disk (JSON or JSONC) at tsconfigPath and
// resolves configs it extends. Merging rules:
// - child overrides base for baseUrl
// - paths are merged with child keys overriding base keys
// - relative paths are resolved against the config that declared them
func ParseTsConfig(tsconfigPath string) (*TsConfig, error) {
	abs, err := filepath.Abs(tsconfigPath)
	if err != nil {
		return nil, err
	}
	return resolveTsConfig(abs, map[string]bool{})
}

func resolveTsConfig(tsconfigPath string, seen map[string]bool) (*TsConfig, error) {
	content, err := os.ReadFile(tsconfigPath)
	if err != nil {
		return nil, err
	}

	var raw rawTsConfig
	if err := json.Unmarshal(jsonc.ToJSON(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tsconfig %s: %w", tsconfigPath, err)
	}
	seen[tsconfigPath] = true

	dir := filepath.Dir(tsconfigPath)
	result := &TsConfig{
		Dir:   NormalizePathForInternal(dir),
		Paths: map[string][]string{},
	}

	for _, ext := range extendsList(raw.Extends) {
		basePath := findExtendedTsConfig(ext, dir)
		if basePath == "" {
			logWarning("tsconfig %s extends '%s' which could not be found", tsconfigPath, ext)
			continue
		}
		if seen[basePath] {
			continue
		}
		base, err := resolveTsConfig(basePath, seen)
		if err != nil {
			return nil, err
		}
		if base.BaseURL != "" {
			result.BaseURL = base.BaseURL
		}
		for key, targets := range base.Paths {
			result.Paths[key] = targets
		}
	}

	if raw.CompilerOptions.BaseUrl != nil {
		result.BaseURL = NormalizePathForInternal(filepath.Join(dir, *raw.CompilerOptions.BaseUrl))
	}

	pathsBase := result.BaseURL
	if pathsBase == "" {
		pathsBase = result.Dir
	}
	for key, targets := range raw.CompilerOptions.Paths {
		resolved := make([]string, 0, len(targets))
		for _, target := range targets {
			if filepath.IsAbs(target) {
				resolved = append(resolved, NormalizePathForInternal(target))
				continue
			}
			resolved = append(resolved, NormalizePathForInternal(filepath.Join(DenormalizePathForOS(pathsBase), target)))
		}
		result.Paths[key] = resolved
	}

	return result, nil
}

// extendsList accepts both the string and the array form of `extends`.
func extendsList(ext interface{}) []string {
	switch v := ext.(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return []string{v}
		}
	case []interface{}:
		list := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				list = append(list, s)
			}
		}
		return list
	}
	return nil
}

func findExtendedTsConfig(extStr string, baseDir string) string {
	candidates := []string{}

	if filepath.IsAbs(extStr) || strings.HasPrefix(extStr, ".") {
		p := extStr
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		candidates = append(candidates, p, p+".json")
	} else {
		// package-style resolution for tsconfigs published as packages
		candidates = append(candidates,
			filepath.Join(baseDir, "node_modules", extStr),
			filepath.Join(baseDir, "node_modules", extStr, "tsconfig.json"),
			filepath.Join(baseDir, "node_modules", extStr+".json"),
		)
	}

	for _, cand := range candidates {
		fi, err := os.Stat(cand)
		if err == nil && !fi.IsDir() {
			return cand
		}
	}
	return ""
}
