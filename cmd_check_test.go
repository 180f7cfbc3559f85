package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/golden"
)

const reportConfig = `configVersion: "1.0"
rules:
  - name: C uses uuid
    files: ["src/C.ts"]
    assert: should
    check: dependsOn
    patterns: ["uuid"]
  - name: No cycles
    files: ["src/**"]
    assert: should-not
    check: haveCycles
  - name: Files are big
    files: ["src/**"]
    check: haveLocGreaterThan
    threshold: 12
  - name: Only services
    files: ["src/**"]
    check: onlyHaveName
    patterns: ["*.service.ts"]
  - name: Missing scope
    files: ["lib/**"]
    check: haveLocLessThan
    threshold: 100
`

func disableColor(t *testing.T) {
	t.Helper()
	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = previous })
}

func TestRunCheckCommand(t *testing.T) {
	disableColor(t)
	root := exampleProject(t)
	assert.NilError(t, os.WriteFile(filepath.Join(root, "arch-unit.config.yaml"), []byte(reportConfig), 0644))

	var output bytes.Buffer
	failed, err := runCheckCommand(context.Background(), &output, root, "", false)
	assert.NilError(t, err)
	assert.Assert(t, failed)

	golden.Assert(t, output.String(), "check.golden")
}

func TestRunCheckCommandExampleProject(t *testing.T) {
	disableColor(t)
	cwd := NormalizePathForInternal(ResolveAbsoluteCwd(filepath.Join("__fixtures__", "exampleProject")))

	var output bytes.Buffer
	failed, err := runCheckCommand(context.Background(), &output, cwd, "", false)
	assert.NilError(t, err)
	assert.Assert(t, !failed)

	golden.Assert(t, output.String(), "exampleProject.golden")
}

func TestExampleProjectGraph(t *testing.T) {
	cwd := ResolveAbsoluteCwd(filepath.Join("__fixtures__", "exampleProject"))
	graph := buildGraph(t, NewProject(cwd, WithTsConfig("tsconfig.json")))

	server, ok := graph.Node(graph.Root + "/src/app/server.js")
	assert.Assert(t, ok)
	assert.Equal(t, server.Language, JavaScriptLanguage)
	assert.Equal(t, server.RequireCalls, 2)
	assert.Equal(t, server.Dependencies[0].Name, "src/app/controller.ts")
	assert.Equal(t, server.Dependencies[1].Kind, BuiltinModuleDependency)

	userService, _ := graph.Node(graph.Root + "/src/domain/user.service.ts")
	assert.Equal(t, userService.Dependencies[0].Name, "src/shared/ids.ts")
}

func TestRunCheckCommandAllPassing(t *testing.T) {
	disableColor(t)
	root := exampleProject(t)
	config := `{"configVersion": "1.0", "rules": [{"name": "acyclic", "files": ["**"], "assert": "should-not", "check": "haveCycles"}]}`
	assert.NilError(t, os.WriteFile(filepath.Join(root, "rules.json"), []byte(config), 0644))

	var output bytes.Buffer
	failed, err := runCheckCommand(context.Background(), &output, root, "rules.json", false)
	assert.NilError(t, err)
	assert.Assert(t, !failed)
	assert.Equal(t, output.String(), `✅ acyclic files("**") shouldNot haveCycles()

1 passed, 0 failed
✅ All checks passed!
`)
}

func TestRunCheckCommandMissingConfig(t *testing.T) {
	_, err := runCheckCommand(context.Background(), &bytes.Buffer{}, t.TempDir(), "", false)
	assert.Assert(t, is.ErrorContains(err, "could not load configuration"))
}

func TestFormatCheckResultsLimitsMessages(t *testing.T) {
	disableColor(t)
	rule := NewProject("/p").Files("src/**").Should().HaveLocLessThan(10)
	rule.Name = "small files"

	messages := []string{}
	for i := 1; i <= 7; i++ {
		messages = append(messages, fmt.Sprintf("src/file%d.ts has 20 logical lines, expected < 10", i))
	}
	result := &CheckResult{
		RuleResults: []RuleResult{{
			Rule: rule,
			Err:  &CheckError{Kind: ViolationError, Construction: rule.Construction(), Messages: messages},
		}},
		HasFailures: true,
	}

	var limited bytes.Buffer
	formatCheckResults(&limited, result, false)
	assert.Assert(t, is.Contains(limited.String(), "src/file5.ts"))
	assert.Assert(t, !strings.Contains(limited.String(), "src/file6.ts"))
	assert.Assert(t, is.Contains(limited.String(), "    ... and 2 more issues (use --list-all to see them)\n"))

	var all bytes.Buffer
	formatCheckResults(&all, result, true)
	assert.Assert(t, is.Contains(all.String(), "src/file7.ts"))
	assert.Assert(t, !strings.Contains(all.String(), "more issues"))
}

func TestRunRulesStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunRules(ctx, []*Rule{NewProject("/p").Files("**").ShouldNot().HaveCycles()})
	assert.ErrorIs(t, err, context.Canceled)
}
