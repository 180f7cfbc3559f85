package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() {
		SetLogOutput(os.Stderr)
		SetVerbose(false)
	})
	return &buf
}

func TestLogLevels(t *testing.T) {
	logs := captureLogs(t)

	logDebug("hidden %d", 1)
	logWarning("shown %d", 2)
	assert.Equal(t, logs.String(), "level=WARN msg=\"shown 2\"\n")

	logs.Reset()
	SetVerbose(true)
	logDebug("visible %s", "now")
	assert.Equal(t, logs.String(), "level=DEBUG msg=\"visible now\"\n")
}

func TestBrokenTsConfigIsOnlyAWarning(t *testing.T) {
	logs := captureLogs(t)
	root := writeProject(t, map[string]string{
		"tsconfig.json": `{"compilerOptions": `,
		"a.ts":          `export const a = 1;`,
	})

	graph, err := NewProject(root).BuildGraph(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, graph.Len(), 1)
	assert.Assert(t, is.Contains(logs.String(), "level=WARN"))
	assert.Assert(t, is.Contains(logs.String(), filepath.Join(root, "tsconfig.json")))
}
