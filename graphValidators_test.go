package main

import (
	"context"
	"errors"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func buildGraph(t *testing.T, project *Project) *DependencyGraph {
	t.Helper()
	graph, err := project.BuildGraph(context.Background())
	assert.NilError(t, err)
	return graph
}

func validation(project *Project) GraphValidation {
	return GraphValidation{
		Construction: "files(\"**\") should haveName(\"*\")",
		MimeTypes:    MustCreateGlobMatchers(project.MimeTypes, project.Root),
		Include:      project.selectionPatterns(),
	}
}

func checkErrorOf(t *testing.T, err error) *CheckError {
	t.Helper()
	var checkErr *CheckError
	assert.Assert(t, errors.As(err, &checkErr), "expected *CheckError, got %v", err)
	return checkErr
}

func TestValidateGraphPasses(t *testing.T) {
	project := NewProject(exampleProject(t))
	assert.NilError(t, ValidateGraph(buildGraph(t, project), validation(project)))
}

func TestValidateGraphReportsUnknownExtensions(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/a.ts":       `import "./styles.css";`,
		"src/styles.css": "",
		"README.md":      "",
	})
	project := NewProject(root, WithInclude("src/**"))

	err := ValidateGraph(buildGraph(t, project), validation(project))
	assert.Assert(t, errors.Is(err, ErrStructural))

	checkErr := checkErrorOf(t, err)
	assert.Equal(t, checkErr.Kind, StructuralError)
	assert.Equal(t, len(checkErr.Messages), 1)
	assert.Assert(t, is.Contains(checkErr.Messages[0], "src/styles.css does not match the configured file types"))
}

func TestValidateGraphReportsEveryUnresolvedImport(t *testing.T) {
	root := writeProject(t, map[string]string{
		"package.json":        `{"dependencies": {"uuid": "9"}}`,
		"src/a.ts":            `import "./missing"; import "lodash";`,
		"src/b.ts":            `import "../src/utils/strng";`,
		"src/utils/string.ts": "",
	})
	project := NewProject(root)

	err := ValidateGraph(buildGraph(t, project), validation(project))
	checkErr := checkErrorOf(t, err)
	assert.Equal(t, checkErr.Kind, StructuralError)
	assert.Equal(t, len(checkErr.Messages), 3)
	assert.Assert(t, is.Contains(checkErr.Messages[0], "'./missing' imported from src/a.ts could not be resolved"))
	assert.Assert(t, is.Contains(checkErr.Messages[1], "'lodash' imported from src/a.ts"))
	assert.Assert(t, is.Contains(checkErr.Messages[2], "(did you mean 'src/utils/string.ts'?)"))
}

func TestValidateGraphStopsAtFirstFailingStage(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/a.ts":  `import "./b.vue"; import "./missing";`,
		"src/b.vue": "",
	})
	project := NewProject(root, WithInclude("src/**"))

	checkErr := checkErrorOf(t, ValidateGraph(buildGraph(t, project), validation(project)))
	// only the extension stage is reported
	assert.Equal(t, len(checkErr.Messages), 1)
	assert.Assert(t, is.Contains(checkErr.Messages[0], "src/b.vue does not match"))
}

func TestValidateGraphExtensionsOnly(t *testing.T) {
	root := writeProject(t, map[string]string{"src/a.ts": `import "./missing";`})
	project := NewProject(root)

	v := validation(project)
	v.ExtensionsOnly = true
	assert.NilError(t, ValidateGraph(buildGraph(t, project), v))
}

func TestValidateGraphReportsFilesOutsideOfTheGraph(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/a.ts": `import "../lib/b";`,
		"lib/b.ts": "",
	})
	project := NewProject(root, WithInclude("src/**"))

	checkErr := checkErrorOf(t, ValidateGraph(buildGraph(t, project), validation(project)))
	assert.Equal(t, len(checkErr.Messages), 1)
	assert.Equal(t, checkErr.Messages[0],
		"src/a.ts depends on lib/b.ts which is not part of the dependency graph, check that the include patterns [src/**] select it")
}
