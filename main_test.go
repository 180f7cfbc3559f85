package main

import (
	"bytes"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, formatNumber(0), "0")
	assert.Equal(t, formatNumber(999), "999")
	assert.Equal(t, formatNumber(1000), "1_000")
	assert.Equal(t, formatNumber(1234567), "1_234_567")
}

func TestPrintLinesOfCode(t *testing.T) {
	root := exampleProject(t)
	files, err := SelectFiles(root, DefaultMimeTypes, nil, true)
	assert.NilError(t, err)
	counts, err := countLinesOfFiles(files)
	assert.NilError(t, err)

	var output bytes.Buffer
	printLinesOfCode(&output, counts, root, 2)

	assert.Equal(t, output.String(), `Metric         Lines  Percentage
------         -----  ----------
Total lines    45     100.00%
Logical lines  45     100.00%

File      Logical  Total
src/C.ts  20       20
src/B.ts  15       15
`)
}

func TestPrintGraph(t *testing.T) {
	root := exampleProject(t)
	graph := buildGraph(t, NewProject(root))

	var output bytes.Buffer
	printGraph(&output, graph)

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	assert.DeepEqual(t, lines, []string{
		"src/A.ts (typescript, 10/10 lines)",
		"src/B.ts (typescript, 15/15 lines)",
		"  ➞ src/A.ts [file-path via import]",
		"src/C.ts (typescript, 20/20 lines)",
		"  ➞ src/B.ts [file-path via import]",
		"  ➞ uuid [runtime-package via import]",
	})
}

func TestProjectFromFlags(t *testing.T) {
	packageJsonPath, tsconfigJsonPath = "config/package.json", ""
	t.Cleanup(func() { packageJsonPath, tsconfigJsonPath = "", "" })

	project := projectFromFlags("/repo", []string{"src/**"}, nil)
	assert.Equal(t, project.Root, "/repo")
	assert.Equal(t, project.PackageJsonPath, "/repo/config/package.json")
	assert.Equal(t, project.TsConfigPath, "")
	assert.DeepEqual(t, project.Include, []string{"src/**"})
	assert.Assert(t, is.Len(project.Exclude, 0))
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := []string{}
	for _, command := range rootCmd.Commands() {
		names = append(names, command.Name())
	}
	for _, expected := range []string{"check", "config", "graph", "entry-points", "circular", "list-cwd-files", "lines-of-code"} {
		assert.Assert(t, is.Contains(names, expected))
	}
}
