package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

type ProjectConfig struct {
	Root             string   `json:"root,omitempty" yaml:"root,omitempty"`
	PackageJson      string   `json:"packageJson,omitempty" yaml:"packageJson,omitempty"`
	TsConfig         string   `json:"tsconfig,omitempty" yaml:"tsconfig,omitempty"`
	Extensions       []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Include          []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude          []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	MimeTypes        []string `json:"mimeTypes,omitempty" yaml:"mimeTypes,omitempty"`
	RespectGitignore *bool    `json:"respectGitignore,omitempty" yaml:"respectGitignore,omitempty"`
}

type RuleConfig struct {
	Name      string   `json:"name" yaml:"name"`
	Files     []string `json:"files" yaml:"files"`
	Exclude   []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Assert    string   `json:"assert" yaml:"assert"` // should | should-not
	Check     string   `json:"check" yaml:"check"`   // rule kind, eg. dependsOn
	Patterns  []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	Threshold int      `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

type ArchUnitConfig struct {
	ConfigVersion string        `json:"configVersion" yaml:"configVersion"`
	Project       ProjectConfig `json:"project" yaml:"project"`
	Rules         []RuleConfig  `json:"rules" yaml:"rules"`
}

var configFileNames = []string{
	"arch-unit.config.json",
	"arch-unit.config.jsonc",
	"arch-unit.config.yaml",
	"arch-unit.config.yml",
}

const (
	CurrentConfigVersion    = "1.0"
	supportedConfigVersions = ">= 1.0, < 2.0"
)

// FindConfigFile returns the first known config file name present in dir.
func FindConfigFile(dir string) (string, error) {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no config file found in %s, expected one of %s", dir, strings.Join(configFileNames, ", "))
}

// LoadConfig loads the configuration from configPath, which can be a config
// file or a directory containing one. It returns the path that was read.
func LoadConfig(configPath string) (*ArchUnitConfig, string, error) {
	fileInfo, err := os.Stat(configPath)
	if err != nil {
		return nil, "", err
	}

	actualPath := configPath
	if fileInfo.IsDir() {
		actualPath, err = FindConfigFile(configPath)
		if err != nil {
			return nil, "", err
		}
	}

	content, err := os.ReadFile(actualPath)
	if err != nil {
		return nil, "", err
	}

	config, err := ParseConfig(content, actualPath)
	if err != nil {
		return nil, actualPath, err
	}
	return config, actualPath, nil
}

func isYamlConfig(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	return ext == ".yaml" || ext == ".yml"
}

// ParseConfig decodes and validates a config. fileName only selects the
// format: YAML for .yaml/.yml, JSON with comments otherwise.
func ParseConfig(content []byte, fileName string) (*ArchUnitConfig, error) {
	var config ArchUnitConfig
	if isYamlConfig(fileName) {
		if err := yaml.Unmarshal(content, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else {
		if err := json.Unmarshal(jsonc.ToJSON(content), &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := validateConfigVersion(config.ConfigVersion); err != nil {
		return nil, err
	}
	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func validateConfigVersion(version string) error {
	if strings.TrimSpace(version) == "" {
		return errors.New("missing configVersion, expected " + supportedConfigVersions)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid configVersion '%s': %w", version, err)
	}
	constraint, err := semver.NewConstraint(supportedConfigVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("unsupported configVersion '%s', supported: %s", version, supportedConfigVersions)
	}
	return nil
}

func validateConfig(config *ArchUnitConfig) error {
	for i, p := range config.Project.Include {
		if err := validatePattern(p); err != nil {
			return fmt.Errorf("project.include[%d]: %w", i, err)
		}
	}
	for i, p := range config.Project.Exclude {
		if err := validatePattern(p); err != nil {
			return fmt.Errorf("project.exclude[%d]: %w", i, err)
		}
	}

	for i, rule := range config.Rules {
		if _, ok := ParseRuleKind(rule.Check); !ok {
			return fmt.Errorf("rules[%d].check: unknown rule '%s'", i, rule.Check)
		}
		if _, err := parseAssert(rule.Assert); err != nil {
			return fmt.Errorf("rules[%d].assert: %w", i, err)
		}
		for j, p := range rule.Files {
			if err := validatePattern(p); err != nil {
				return fmt.Errorf("rules[%d].files[%d]: %w", i, j, err)
			}
		}
		for j, p := range rule.Exclude {
			if err := validatePattern(p); err != nil {
				return fmt.Errorf("rules[%d].exclude[%d]: %w", i, j, err)
			}
		}
		for j, p := range rule.Patterns {
			if err := validatePattern(p); err != nil {
				return fmt.Errorf("rules[%d].patterns[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

func validatePattern(pattern string) error {
	if len(pattern) >= 2 && pattern[0] == '.' && (pattern[1] == '/' || pattern[1] == '\\') {
		return fmt.Errorf("pattern '%s' starts with './' or '.\\', which is not allowed. Use paths that starts with file or directory name", pattern)
	}
	if len(pattern) >= 3 && pattern[0] == '.' && pattern[1] == '.' && (pattern[2] == '/' || pattern[2] == '\\') {
		return fmt.Errorf("pattern '%s' starts with '../' or '..\\', which is not allowed. Use paths that starts with file or directory name", pattern)
	}
	return nil
}

// parseAssert returns whether the assertion is negated.
func parseAssert(assert string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(assert)) {
	case "", "should":
		return false, nil
	case "should-not", "shouldnot", "should not":
		return true, nil
	}
	return false, fmt.Errorf("unknown assertion '%s', expected 'should' or 'should-not'", assert)
}

// NewProjectFromConfig resolves the project section against cwd. Paths given
// in flags take precedence over the config.
func NewProjectFromConfig(config *ArchUnitConfig, cwd string, packageJsonPath string, tsconfigPath string) *Project {
	root := cwd
	if config.Project.Root != "" {
		root = JoinWithCwd(cwd, config.Project.Root)
	}

	opts := []ProjectOption{}
	if packageJsonPath == "" {
		packageJsonPath = config.Project.PackageJson
	}
	if packageJsonPath != "" {
		opts = append(opts, WithPackageJson(JoinWithCwd(cwd, packageJsonPath)))
	}
	if tsconfigPath == "" {
		tsconfigPath = config.Project.TsConfig
	}
	if tsconfigPath != "" {
		opts = append(opts, WithTsConfig(JoinWithCwd(cwd, tsconfigPath)))
	}
	if len(config.Project.Extensions) > 0 {
		opts = append(opts, WithExtensions(config.Project.Extensions...))
	}
	if len(config.Project.Include) > 0 {
		opts = append(opts, WithInclude(config.Project.Include...))
	}
	if len(config.Project.Exclude) > 0 {
		opts = append(opts, WithExclude(config.Project.Exclude...))
	}
	if len(config.Project.MimeTypes) > 0 {
		opts = append(opts, WithMimeTypes(config.Project.MimeTypes...))
	}
	if config.Project.RespectGitignore != nil {
		opts = append(opts, WithGitignore(*config.Project.RespectGitignore))
	}

	return NewProject(root, opts...)
}

// BuildRules turns every rule entry into a Rule of project.
func (config *ArchUnitConfig) BuildRules(project *Project) ([]*Rule, error) {
	rules := make([]*Rule, 0, len(config.Rules))
	for i, ruleConfig := range config.Rules {
		kind, ok := ParseRuleKind(ruleConfig.Check)
		if !ok {
			return nil, fmt.Errorf("rules[%d].check: unknown rule '%s'", i, ruleConfig.Check)
		}
		negated, err := parseAssert(ruleConfig.Assert)
		if err != nil {
			return nil, fmt.Errorf("rules[%d].assert: %w", i, err)
		}

		selection := project.Files(ruleConfig.Files...)
		if len(ruleConfig.Exclude) > 0 {
			selection = selection.Excluding(ruleConfig.Exclude...)
		}
		assertion := selection.Should()
		if negated {
			assertion = selection.ShouldNot()
		}

		rule := assertion.Kind(kind, ruleConfig.Patterns, ruleConfig.Threshold)
		rule.Name = ruleConfig.Name
		if rule.Name == "" {
			rule.Name = fmt.Sprintf("rule %d", i+1)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// DefaultConfig is written by `config init`.
func DefaultConfig() ArchUnitConfig {
	return ArchUnitConfig{
		ConfigVersion: CurrentConfigVersion,
		Project: ProjectConfig{
			Extensions: DefaultExtensions,
			MimeTypes:  DefaultMimeTypes,
			Exclude:    []string{"dist/", "build/", "coverage/"},
		},
		Rules: []RuleConfig{
			{
				Name:   "No circular dependencies",
				Files:  []string{"**/*"},
				Assert: "should-not",
				Check:  HaveCyclesRule.String(),
			},
			{
				Name:      "Keep files small",
				Files:     []string{"**/*"},
				Assert:    "should",
				Check:     LocLessOrEqualThanRule.String(),
				Threshold: 500,
			},
		},
	}
}

// InitConfigFile writes the default config into dir and refuses to overwrite
// an existing one.
func InitConfigFile(dir string, yamlFormat bool) (string, error) {
	if existing, err := FindConfigFile(dir); err == nil {
		return "", fmt.Errorf("config file already exists: %s", existing)
	}

	config := DefaultConfig()
	var (
		content  []byte
		fileName string
		err      error
	)
	if yamlFormat {
		fileName = "arch-unit.config.yaml"
		content, err = yaml.Marshal(config)
	} else {
		fileName = "arch-unit.config.json"
		content, err = json.MarshalIndent(config, "", "  ")
		content = append(content, '\n')
	}
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(dir, fileName)
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configPath, nil
}
