package main

import (
	"fmt"
	"strings"
)

type RuleKind uint8

const (
	DependsOnRule RuleKind = iota
	OnlyDependsOnRule
	HaveCyclesRule
	LocLessThanRule
	LocLessOrEqualThanRule
	LocGreaterThanRule
	LocGreaterOrEqualThanRule
	HaveNameRule
	OnlyHaveNameRule
)

var ruleKindNames = map[RuleKind]string{
	DependsOnRule:             "dependsOn",
	OnlyDependsOnRule:         "onlyDependsOn",
	HaveCyclesRule:            "haveCycles",
	LocLessThanRule:           "haveLocLessThan",
	LocLessOrEqualThanRule:    "haveLocLessOrEqualThan",
	LocGreaterThanRule:        "haveLocGreaterThan",
	LocGreaterOrEqualThanRule: "haveLocGreaterOrEqualThan",
	HaveNameRule:              "haveName",
	OnlyHaveNameRule:          "onlyHaveName",
}

func (k RuleKind) String() string {
	if name, ok := ruleKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseRuleKind maps a config `check` value back to its kind.
func ParseRuleKind(name string) (RuleKind, bool) {
	for kind, kindName := range ruleKindNames {
		if strings.EqualFold(kindName, name) {
			return kind, true
		}
	}
	return 0, false
}

func (k RuleKind) isThresholdRule() bool {
	switch k {
	case LocLessThanRule, LocLessOrEqualThanRule, LocGreaterThanRule, LocGreaterOrEqualThanRule:
		return true
	}
	return false
}

func (k RuleKind) isPatternRule() bool {
	switch k {
	case DependsOnRule, OnlyDependsOnRule, HaveNameRule, OnlyHaveNameRule:
		return true
	}
	return false
}

func (k RuleKind) isNameRule() bool {
	return k == HaveNameRule || k == OnlyHaveNameRule
}

var DefaultMimeTypes = []string{"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs"}

// Project is the file system side of a rule: where files live, how
// specifiers resolve and which files take part in the graph.
type Project struct {
	Root             string
	PackageJsonPath  string
	TsConfigPath     string
	Extensions       []string
	Include          []string
	Exclude          []string
	MimeTypes        []string
	RespectGitignore bool
}

type ProjectOption func(*Project)

func WithPackageJson(path string) ProjectOption {
	return func(p *Project) { p.PackageJsonPath = path }
}

func WithTsConfig(path string) ProjectOption {
	return func(p *Project) { p.TsConfigPath = path }
}

func WithExtensions(extensions ...string) ProjectOption {
	return func(p *Project) { p.Extensions = extensions }
}

func WithInclude(patterns ...string) ProjectOption {
	return func(p *Project) { p.Include = patterns }
}

func WithExclude(patterns ...string) ProjectOption {
	return func(p *Project) { p.Exclude = patterns }
}

func WithMimeTypes(patterns ...string) ProjectOption {
	return func(p *Project) { p.MimeTypes = patterns }
}

func WithGitignore(respect bool) ProjectOption {
	return func(p *Project) { p.RespectGitignore = respect }
}

func NewProject(root string, opts ...ProjectOption) *Project {
	p := &Project{
		Root:             NormalizePathForInternal(ResolveAbsoluteCwd(root)),
		Extensions:       DefaultExtensions,
		MimeTypes:        DefaultMimeTypes,
		RespectGitignore: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Files starts a rule scoped to files matching scope, relative to the project root.
func (p *Project) Files(scope ...string) *FileSelection {
	return &FileSelection{
		project:      p,
		scope:        scope,
		construction: []string{token("files", quoteAll(scope)...)},
	}
}

type FileSelection struct {
	project      *Project
	scope        []string
	exclude      []string
	construction []string
}

// Excluding returns a new selection; the receiver stays usable for other rules.
func (s *FileSelection) Excluding(patterns ...string) *FileSelection {
	exclude := make([]string, 0, len(s.exclude)+len(patterns))
	exclude = append(append(exclude, s.exclude...), patterns...)
	construction := make([]string, 0, len(s.construction)+1)
	construction = append(append(construction, s.construction...), token("excluding", quoteAll(patterns)...))
	return &FileSelection{
		project:      s.project,
		scope:        s.scope,
		exclude:      exclude,
		construction: construction,
	}
}

func (s *FileSelection) Should() *Assertion {
	return s.assertion(false, "should")
}

func (s *FileSelection) ShouldNot() *Assertion {
	return s.assertion(true, "shouldNot")
}

func (s *FileSelection) assertion(negated bool, word string) *Assertion {
	construction := make([]string, len(s.construction), len(s.construction)+2)
	copy(construction, s.construction)
	return &Assertion{
		selection:    s,
		negated:      negated,
		construction: append(construction, word),
	}
}

type Assertion struct {
	selection    *FileSelection
	negated      bool
	construction []string
}

func (a *Assertion) rule(kind RuleKind, patterns []string, threshold int, args ...string) *Rule {
	construction := make([]string, len(a.construction), len(a.construction)+1)
	copy(construction, a.construction)
	return &Rule{
		Project:      a.selection.project,
		Kind:         kind,
		Negated:      a.negated,
		Scope:        a.selection.scope,
		Exclude:      a.selection.exclude,
		Patterns:     patterns,
		Threshold:    threshold,
		construction: append(construction, token(kind.String(), args...)),
	}
}

func (a *Assertion) DependsOn(patterns ...string) *Rule {
	return a.rule(DependsOnRule, patterns, 0, quoteAll(patterns)...)
}

func (a *Assertion) OnlyDependsOn(patterns ...string) *Rule {
	return a.rule(OnlyDependsOnRule, patterns, 0, quoteAll(patterns)...)
}

func (a *Assertion) HaveCycles() *Rule {
	return a.rule(HaveCyclesRule, nil, 0)
}

func (a *Assertion) HaveLocLessThan(threshold int) *Rule {
	return a.rule(LocLessThanRule, nil, threshold, fmt.Sprint(threshold))
}

func (a *Assertion) HaveLocLessOrEqualThan(threshold int) *Rule {
	return a.rule(LocLessOrEqualThanRule, nil, threshold, fmt.Sprint(threshold))
}

func (a *Assertion) HaveLocGreaterThan(threshold int) *Rule {
	return a.rule(LocGreaterThanRule, nil, threshold, fmt.Sprint(threshold))
}

func (a *Assertion) HaveLocGreaterOrEqualThan(threshold int) *Rule {
	return a.rule(LocGreaterOrEqualThanRule, nil, threshold, fmt.Sprint(threshold))
}

func (a *Assertion) HaveName(patterns ...string) *Rule {
	return a.rule(HaveNameRule, patterns, 0, quoteAll(patterns)...)
}

func (a *Assertion) OnlyHaveName(patterns ...string) *Rule {
	return a.rule(OnlyHaveNameRule, patterns, 0, quoteAll(patterns)...)
}

// Kind finishes the assertion with a rule kind picked at runtime, eg. from a config file.
func (a *Assertion) Kind(kind RuleKind, patterns []string, threshold int) *Rule {
	switch kind {
	case DependsOnRule:
		return a.DependsOn(patterns...)
	case OnlyDependsOnRule:
		return a.OnlyDependsOn(patterns...)
	case HaveCyclesRule:
		return a.HaveCycles()
	case LocLessThanRule:
		return a.HaveLocLessThan(threshold)
	case LocLessOrEqualThanRule:
		return a.HaveLocLessOrEqualThan(threshold)
	case LocGreaterThanRule:
		return a.HaveLocGreaterThan(threshold)
	case LocGreaterOrEqualThanRule:
		return a.HaveLocGreaterOrEqualThan(threshold)
	case HaveNameRule:
		return a.HaveName(patterns...)
	}
	return a.OnlyHaveName(patterns...)
}

// Rule is a fully built assertion, ready to Check.
type Rule struct {
	// Name labels the rule in reports, empty for rules built in code.
	Name      string
	Project   *Project
	Kind      RuleKind
	Negated   bool
	Scope     []string
	Exclude   []string
	Patterns  []string
	Threshold int

	construction []string
}

// Construction describes the rule the way it was built, eg.
// `files("src/domain/**") shouldNot dependsOn("src/infra/**")`.
func (r *Rule) Construction() string {
	return strings.Join(r.construction, " ")
}

func token(name string, args ...string) string {
	return name + "(" + strings.Join(args, ", ") + ")"
}

func quoteAll(values []string) []string {
	quoted := make([]string, len(values))
	for i, value := range values {
		quoted[i] = fmt.Sprintf("%q", value)
	}
	return quoted
}
