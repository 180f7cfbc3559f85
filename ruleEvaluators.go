package main

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// shouldHaveCyclesMessage is the answer to every positive cycle assertion.
const shouldHaveCyclesMessage = "asserting that files should have cycles makes no sense, nobody wants cycles. Use shouldNot().haveCycles() instead"

type locComparator struct {
	symbol  string
	compare func(lines int, threshold int) bool
}

var locComparators = map[RuleKind]locComparator{
	LocLessThanRule:           {"<", func(lines, threshold int) bool { return lines < threshold }},
	LocLessOrEqualThanRule:    {"<=", func(lines, threshold int) bool { return lines <= threshold }},
	LocGreaterThanRule:        {">", func(lines, threshold int) bool { return lines > threshold }},
	LocGreaterOrEqualThanRule: {">=", func(lines, threshold int) bool { return lines >= threshold }},
}

// evaluateLoc lists every file breaking the comparator; the negated form
// expects the opposite comparator to hold for every file.
func evaluateLoc(nodes []*FileNode, root string, kind RuleKind, threshold int, negated bool) *Notification {
	notification := &Notification{}
	comparator := locComparators[kind]
	for _, node := range nodes {
		holds := comparator.compare(node.LogicalLineCount, threshold)
		if holds == !negated {
			continue
		}
		expectation := fmt.Sprintf("%s %d", comparator.symbol, threshold)
		if negated {
			expectation = "not " + expectation
		}
		notification.Add("%s has %d logical lines, expected %s", RelativeToRoot(node.Path, root), node.LogicalLineCount, expectation)
	}
	return notification
}

// dependencyPattern matches dependencies by their full name (relative to the
// project root for files) or by their name as written.
type dependencyPattern struct {
	pattern  string
	matchers []GlobMatcher
	root     string
}

func compileDependencyPatterns(patterns []string, root string) ([]dependencyPattern, error) {
	compiled := make([]dependencyPattern, 0, len(patterns))
	for _, pattern := range patterns {
		matchers, err := CreateGlobMatchers([]string{pattern}, root)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, dependencyPattern{pattern: pattern, matchers: matchers, root: root})
	}
	return compiled, nil
}

func (p dependencyPattern) matches(dep Dependency) bool {
	fullName := dep.FullName
	if dep.Kind == FilePathDependency {
		fullName = RelativeToRoot(dep.FullName, p.root)
	}
	return MatchesAnyGlobMatcher(fullName, p.matchers) || MatchesAnyGlobMatcher(dep.Name, p.matchers)
}

func matchesAnyDependencyPattern(dep Dependency, patterns []dependencyPattern) bool {
	for _, pattern := range patterns {
		if pattern.matches(dep) {
			return true
		}
	}
	return false
}

// evaluateDependsOn: positive needs every pattern matched by some dependency
// of every file, negated fails a file as soon as one dependency matches and
// lists all of its matching dependencies on one line.
func evaluateDependsOn(nodes []*FileNode, root string, patterns []dependencyPattern, negated bool) *Notification {
	notification := &Notification{}
	for _, node := range nodes {
		file := RelativeToRoot(node.Path, root)
		if negated {
			forbidden := []string{}
			for _, dep := range node.Dependencies {
				if matchesAnyDependencyPattern(dep, patterns) {
					forbidden = append(forbidden, dep.Name)
				}
			}
			if len(forbidden) > 0 {
				notification.Add("%s depends on %s", file, strings.Join(forbidden, ", "))
			}
			continue
		}

		if len(node.Dependencies) == 0 {
			notification.Add("%s has no dependencies", file)
			continue
		}
		for _, pattern := range patterns {
			found := false
			for _, dep := range node.Dependencies {
				if pattern.matches(dep) {
					found = true
					break
				}
			}
			if !found {
				notification.Add("%s does not depend on %s", file, pattern.pattern)
			}
		}
	}
	return notification
}

// evaluateOnlyDependsOn: positive fails files with a dependency outside the
// patterns. Negated fails files whose dependencies all match; files without
// dependencies pass both forms.
func evaluateOnlyDependsOn(nodes []*FileNode, root string, patterns []dependencyPattern, negated bool) *Notification {
	notification := &Notification{}
	for _, node := range nodes {
		if len(node.Dependencies) == 0 {
			continue
		}
		file := RelativeToRoot(node.Path, root)

		outside := []string{}
		for _, dep := range node.Dependencies {
			if !matchesAnyDependencyPattern(dep, patterns) {
				outside = append(outside, dep.Name)
			}
		}

		if negated {
			if len(outside) == 0 {
				notification.Add("%s only depends on %s", file, strings.Join(patternNames(patterns), ", "))
			}
			continue
		}
		for _, name := range outside {
			notification.Add("%s depends on %s which is not allowed", file, name)
		}
	}
	return notification
}

func patternNames(patterns []dependencyPattern) []string {
	names := make([]string, len(patterns))
	for i, pattern := range patterns {
		names[i] = pattern.pattern
	}
	return names
}

func compileNamePatterns(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid name pattern '%s': %w", pattern, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func nameMatches(name string, patterns []glob.Glob) bool {
	for _, pattern := range patterns {
		if pattern.Match(name) {
			return true
		}
	}
	return false
}

// evaluateHaveName reports every file whose base name breaks the expectation,
// even when that is every file in scope.
func evaluateHaveName(nodes []*FileNode, root string, patterns []glob.Glob, rawPatterns []string, negated bool) *Notification {
	notification := &Notification{}
	for _, node := range nodes {
		matches := nameMatches(node.Name, patterns)
		if matches == !negated {
			continue
		}
		if negated {
			notification.Add("%s is named like %s", RelativeToRoot(node.Path, root), strings.Join(rawPatterns, ", "))
			continue
		}
		notification.Add("%s does not match %s", RelativeToRoot(node.Path, root), strings.Join(rawPatterns, ", "))
	}
	return notification
}

// evaluateOnlyHaveName is a joint assertion over the scope: positive passes
// when every name matches, negated passes when at least one does not.
func evaluateOnlyHaveName(nodes []*FileNode, patterns []glob.Glob, negated bool) bool {
	allMatch := true
	for _, node := range nodes {
		if !nameMatches(node.Name, patterns) {
			allMatch = false
			break
		}
	}
	if negated {
		return !allMatch
	}
	return allMatch
}
