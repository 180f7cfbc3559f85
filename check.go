package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

func (r *Rule) configurationError(format string, args ...any) error {
	return &CheckError{
		Kind:         ConfigurationError,
		Construction: r.Construction(),
		Messages:     []string{fmt.Sprintf(format, args...)},
	}
}

func validatePatternList(patterns []string, what string) string {
	if len(patterns) == 0 {
		return fmt.Sprintf("at least one %s pattern is required", what)
	}
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Sprintf("%s patterns must not be empty, got %q", what, patterns)
		}
	}
	return ""
}

// validateConfiguration rejects rules that cannot be evaluated, before any
// file is read.
func (r *Rule) validateConfiguration() error {
	if r.Project == nil {
		return r.configurationError("rule has no project")
	}
	if r.Kind.isThresholdRule() && r.Threshold <= 0 {
		return r.configurationError("threshold must be greater than 0, got %d", r.Threshold)
	}
	if r.Kind.isPatternRule() {
		if problem := validatePatternList(r.Patterns, "check"); problem != "" {
			return r.configurationError("%s", problem)
		}
		if problem := validatePatternList(r.Scope, "file scope"); problem != "" {
			return r.configurationError("%s", problem)
		}
	}
	if r.Kind == DependsOnRule || r.Kind == OnlyDependsOnRule {
		// a negated matcher never matches a dependency, use shouldNot instead
		for _, pattern := range r.Patterns {
			if strings.HasPrefix(strings.TrimSpace(pattern), "!") {
				return r.configurationError("check patterns must not be negated, got %q", pattern)
			}
		}
	}
	return nil
}

// Check evaluates the rule against a freshly built dependency graph.
//
// It returns (true, nil) when the rule holds. Per-file rules fail with a
// *CheckError listing every offending file, onlyHaveName fails with a plain
// false and configuration, structural and empty scope problems are reported
// as *CheckError of the matching kind. Parse and I/O errors abort the check.
func (r *Rule) Check(ctx context.Context) (bool, error) {
	if err := r.validateConfiguration(); err != nil {
		return false, err
	}

	scope, err := CreateGlobMatchers(r.Scope, r.Project.Root)
	if err != nil {
		return false, r.configurationError("%v", err)
	}
	exclude, err := CreateGlobMatchers(r.Exclude, r.Project.Root)
	if err != nil {
		return false, r.configurationError("%v", err)
	}
	mimeTypes, err := CreateGlobMatchers(r.Project.MimeTypes, r.Project.Root)
	if err != nil {
		return false, r.configurationError("%v", err)
	}

	var dependencies []dependencyPattern
	if r.Kind == DependsOnRule || r.Kind == OnlyDependsOnRule {
		dependencies, err = compileDependencyPatterns(r.Patterns, r.Project.Root)
		if err != nil {
			return false, r.configurationError("%v", err)
		}
	}
	var names []glob.Glob
	if r.Kind.isNameRule() {
		names, err = compileNamePatterns(r.Patterns)
		if err != nil {
			return false, r.configurationError("%v", err)
		}
	}

	graph, err := r.Project.BuildGraph(ctx)
	if err != nil {
		return false, err
	}

	err = ValidateGraph(graph, GraphValidation{
		Construction:   r.Construction(),
		MimeTypes:      mimeTypes,
		Include:        r.Project.selectionPatterns(),
		ExtensionsOnly: r.Kind.isNameRule(),
	})
	if err != nil {
		return false, err
	}

	nodes := graph.Scope(scope, exclude)
	if len(nodes) == 0 {
		return false, &CheckError{
			Kind:         ScopeEmptyError,
			Construction: r.Construction(),
			Messages:     []string{fmt.Sprintf("no files found for patterns [%s] excluding [%s]", strings.Join(r.Scope, ", "), strings.Join(r.Exclude, ", "))},
		}
	}

	var notification *Notification
	switch {
	case r.Kind.isThresholdRule():
		notification = evaluateLoc(nodes, graph.Root, r.Kind, r.Threshold, r.Negated)
	case r.Kind == DependsOnRule:
		notification = evaluateDependsOn(nodes, graph.Root, dependencies, r.Negated)
	case r.Kind == OnlyDependsOnRule:
		notification = evaluateOnlyDependsOn(nodes, graph.Root, dependencies, r.Negated)
	case r.Kind == HaveNameRule:
		notification = evaluateHaveName(nodes, graph.Root, names, r.Patterns, r.Negated)
	case r.Kind == OnlyHaveNameRule:
		return evaluateOnlyHaveName(nodes, names, r.Negated), nil
	case r.Kind == HaveCyclesRule:
		if !r.Negated {
			return false, &CheckError{Kind: CycleError, Construction: r.Construction(), Messages: []string{shouldHaveCyclesMessage}}
		}
		if HasCycle(nodes) {
			return false, &CheckError{Kind: CycleError, Construction: r.Construction()}
		}
		return true, nil
	default:
		return false, r.configurationError("unsupported rule %s", r.Kind)
	}

	if err := notification.Err(ViolationError, r.Construction()); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Project) selectionPatterns() []string {
	if len(p.Include) > 0 {
		return p.Include
	}
	return p.MimeTypes
}

// Resolver loads the manifest and the alias configuration of the project.
// Files the user named explicitly must load, implicit ones only warn.
func (p *Project) Resolver() (*ModuleResolver, error) {
	manifest, err := p.loadManifest()
	if err != nil {
		return nil, err
	}
	tsConfig, err := p.loadTsConfig()
	if err != nil {
		return nil, err
	}
	return NewModuleResolver(ResolverConfig{
		RootDir:    p.Root,
		Extensions: p.Extensions,
		Manifest:   manifest,
		Aliases:    NewAliasTable(tsConfig, manifest, nil),
	}), nil
}

// BuildGraph builds the dependency graph of the project from scratch.
func (p *Project) BuildGraph(ctx context.Context) (*DependencyGraph, error) {
	resolver, err := p.Resolver()
	if err != nil {
		return nil, err
	}
	return BuildDependencyGraph(ctx, GraphOptions{
		Root:             p.Root,
		Include:          p.Include,
		Exclude:          p.Exclude,
		MimeTypes:        p.MimeTypes,
		RespectGitignore: p.RespectGitignore,
		Resolver:         resolver,
	})
}

func (p *Project) loadManifest() (*Manifest, error) {
	if p.PackageJsonPath != "" {
		manifest, err := ReadManifest(JoinWithCwd(p.Root, p.PackageJsonPath))
		if err != nil {
			return nil, fmt.Errorf("cannot read package.json: %w", err)
		}
		return manifest, nil
	}
	manifest, err := ReadManifest(filepath.Join(p.Root, "package.json"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logWarning("ignoring package.json in %s: %v", p.Root, err)
		}
		return EmptyManifest(p.Root), nil
	}
	return manifest, nil
}

func (p *Project) loadTsConfig() (*TsConfig, error) {
	if p.TsConfigPath != "" {
		tsConfig, err := ParseTsConfig(JoinWithCwd(p.Root, p.TsConfigPath))
		if err != nil {
			return nil, fmt.Errorf("cannot read tsconfig: %w", err)
		}
		return tsConfig, nil
	}
	path := filepath.Join(p.Root, "tsconfig.json")
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	tsConfig, err := ParseTsConfig(path)
	if err != nil {
		logWarning("ignoring %s: %v", path, err)
		return nil, nil
	}
	return tsConfig, nil
}
