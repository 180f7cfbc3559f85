package main

import (
	"path/filepath"
	"slices"
	"strings"
)

// AliasEntry is one prefix->directory rewrite. Key may contain a single `*`
// which captures the rest of the specifier and is substituted into Target.
type AliasEntry struct {
	Key    string
	Target string
	Source string

	prefix   string
	suffix   string
	wildcard bool
}

// AliasTable rewrites aliased specifiers into absolute paths. Entries are
// tried longest matching prefix first.
type AliasTable struct {
	entries []AliasEntry
}

var defaultConditionNames = []string{"import", "require", "node", "default"}

func newAliasEntry(key string, target string, source string) AliasEntry {
	entry := AliasEntry{Key: key, Target: target, Source: source}
	if idx := strings.Index(key, "*"); idx >= 0 {
		entry.wildcard = true
		entry.prefix = key[:idx]
		entry.suffix = key[idx+1:]
	} else {
		entry.prefix = key
	}
	return entry
}

// NewAliasTable builds the rewrite table from tsconfig `paths`/`baseUrl` and
// package.json `imports`. Both arguments may be nil.
func NewAliasTable(tsConfig *TsConfig, manifest *Manifest, conditionNames []string) *AliasTable {
	if len(conditionNames) == 0 {
		conditionNames = defaultConditionNames
	}
	table := &AliasTable{entries: []AliasEntry{}}

	if tsConfig != nil {
		for key, targets := range tsConfig.Paths {
			if len(targets) == 0 {
				continue
			}
			// only the first target of each entry is followed
			table.entries = append(table.entries, newAliasEntry(key, targets[0], "tsconfig paths"))
		}
	}

	if manifest != nil {
		for key, rawTarget := range manifest.Imports {
			target := resolveCondition(rawTarget, conditionNames)
			if !strings.HasPrefix(target, "./") {
				// targets pointing at packages are left to the manifest lookup
				continue
			}
			absTarget := NormalizePathForInternal(filepath.Join(DenormalizePathForOS(manifest.Dir), target))
			if strings.HasSuffix(target, "/") && !strings.Contains(target, "*") {
				absTarget += "/"
			}
			table.entries = append(table.entries, newAliasEntry(key, absTarget, "package.json imports"))
		}
	}

	slices.SortStableFunc(table.entries, func(a, b AliasEntry) int {
		if len(a.prefix) != len(b.prefix) {
			return len(b.prefix) - len(a.prefix)
		}
		if a.wildcard != b.wildcard {
			if a.wildcard {
				return 1
			}
			return -1
		}
		return strings.Compare(a.Key, b.Key)
	})

	// baseUrl acts as a catch-all alias with the lowest precedence
	if tsConfig != nil && tsConfig.BaseURL != "" {
		table.entries = append(table.entries, newAliasEntry("*", tsConfig.BaseURL+"/*", "tsconfig baseUrl"))
	}

	return table
}

// Rewrite returns the aliased path for specifier. matched is true whenever an
// alias key matched, even if the rewritten path does not exist on disk.
func (t *AliasTable) Rewrite(specifier string) (path string, entry AliasEntry, matched bool) {
	if t == nil || isRelativeOrAbsoluteSpecifier(specifier) {
		return "", AliasEntry{}, false
	}
	for _, entry := range t.entries {
		if !entry.wildcard {
			if specifier == entry.Key {
				return entry.Target, entry, true
			}
			continue
		}
		if len(specifier) < len(entry.prefix)+len(entry.suffix) {
			continue
		}
		if !strings.HasPrefix(specifier, entry.prefix) || !strings.HasSuffix(specifier, entry.suffix) {
			continue
		}
		captured := specifier[len(entry.prefix) : len(specifier)-len(entry.suffix)]
		if captured == "" {
			continue
		}
		return strings.Replace(entry.Target, "*", captured, 1), entry, true
	}
	return "", AliasEntry{}, false
}

func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func isRelativeOrAbsoluteSpecifier(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") ||
		strings.HasPrefix(specifier, "/")
}

func resolveCondition(target interface{}, conditionNames []string) string {
	if targetStr, ok := target.(string); ok {
		return targetStr
	}
	if targetMap, ok := target.(map[string]interface{}); ok {
		for _, condition := range conditionNames {
			if val, ok := targetMap[condition]; ok {
				if resolved := resolveCondition(val, conditionNames); resolved != "" {
					return resolved
				}
			}
		}
		if val, ok := targetMap["default"]; ok {
			return resolveCondition(val, conditionNames)
		}
	}
	return ""
}
