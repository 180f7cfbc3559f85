package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// GraphValidation carries what the structural checks need besides the graph.
type GraphValidation struct {
	Construction string
	MimeTypes    []GlobMatcher
	Include      []string
	// ExtensionsOnly skips dependency checks, used by name rules.
	ExtensionsOnly bool
}

// ValidateGraph runs the structural checks in order over the whole graph and
// stops at the first one that fails. A failing stage reports every offending
// file at once.
func ValidateGraph(graph *DependencyGraph, validation GraphValidation) error {
	notification := validateExtensions(graph, validation.MimeTypes)
	if err := notification.Err(StructuralError, validation.Construction); err != nil {
		return err
	}
	if validation.ExtensionsOnly {
		return nil
	}

	notification = validateResolvability(graph)
	if err := notification.Err(StructuralError, validation.Construction); err != nil {
		return err
	}

	notification = validateCompleteness(graph, validation.Include)
	return notification.Err(StructuralError, validation.Construction)
}

func validateExtensions(graph *DependencyGraph, mimeTypes []GlobMatcher) *Notification {
	notification := &Notification{}
	if len(mimeTypes) == 0 {
		return notification
	}
	patterns := strings.Join(GlobMatcherPatterns(mimeTypes), ", ")
	for _, node := range graph.SortedNodes() {
		if !MatchesAnyGlobMatcher(node.Path, mimeTypes) {
			notification.Add("%s does not match the configured file types [%s]", RelativeToRoot(node.Path, graph.Root), patterns)
		}
	}
	return notification
}

func validateResolvability(graph *DependencyGraph) *Notification {
	notification := &Notification{}
	var candidates []string

	for _, node := range graph.SortedNodes() {
		for _, dep := range node.Dependencies {
			if dep.Kind != InvalidDependency {
				continue
			}
			if candidates == nil {
				candidates = suggestionCandidates(graph)
			}
			message := fmt.Sprintf("'%s' imported from %s could not be resolved, verify it is declared as a dependency or that the path is correct",
				dep.Request, RelativeToRoot(node.Path, graph.Root))
			if suggestion := suggestSpecifier(dep.Request, candidates); suggestion != "" {
				message += fmt.Sprintf(" (did you mean '%s'?)", suggestion)
			}
			notification.Add("%s", message)
		}
	}
	return notification
}

func validateCompleteness(graph *DependencyGraph, include []string) *Notification {
	notification := &Notification{}
	for _, node := range graph.SortedNodes() {
		for _, dep := range node.Dependencies {
			if dep.Kind != FilePathDependency || graph.Has(dep.FullName) {
				continue
			}
			notification.Add("%s depends on %s which is not part of the dependency graph, check that the include patterns [%s] select it",
				RelativeToRoot(node.Path, graph.Root), dep.Name, strings.Join(include, ", "))
		}
	}
	return notification
}

func suggestionCandidates(graph *DependencyGraph) []string {
	seen := map[string]bool{}
	for _, node := range graph.SortedNodes() {
		seen[RelativeToRoot(node.Path, graph.Root)] = true
		for _, dep := range node.Dependencies {
			switch dep.Kind {
			case RuntimePackageDependency, DevPackageDependency:
				seen[dep.FullName] = true
			}
		}
	}
	candidates := make([]string, 0, len(seen))
	for candidate := range seen {
		candidates = append(candidates, candidate)
	}
	sort.Strings(candidates)
	return candidates
}

// suggestSpecifier returns the best fuzzy match for the meaningful part of a
// specifier, eg. `utils/strng` out of `../utils/strng`.
func suggestSpecifier(request string, candidates []string) string {
	pattern := request
	for strings.HasPrefix(pattern, "./") || strings.HasPrefix(pattern, "../") {
		pattern = strings.TrimPrefix(strings.TrimPrefix(pattern, "./"), "../")
	}
	if pattern == "" || len(candidates) == 0 {
		return ""
	}
	matches := fuzzy.Find(pattern, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}
