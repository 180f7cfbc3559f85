package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// writeProject lays files out under a fresh temp dir and returns its
// internal (forward slash) path.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return NormalizePathForInternal(root)
}

// sourceWithLines returns header followed by filler statements so the file
// has exactly logical logical lines.
func sourceWithLines(header []string, logical int) string {
	lines := append([]string{}, header...)
	for i := len(header); i < logical; i++ {
		lines = append(lines, "export const value"+strconv.Itoa(i)+" = "+strconv.Itoa(i)+";")
	}
	return strings.Join(lines, "\n") + "\n"
}

// exampleProject is the three file project used across rule tests:
// A.ts has no imports, B.ts imports A, C.ts imports B and uuid.
func exampleProject(t *testing.T) string {
	t.Helper()
	return writeProject(t, map[string]string{
		"package.json": `{"name": "example", "dependencies": {"uuid": "^9.0.0"}}`,
		"src/A.ts":     sourceWithLines(nil, 10),
		"src/B.ts":     sourceWithLines([]string{`import { value0 } from "./A";`}, 15),
		"src/C.ts":     sourceWithLines([]string{`import { value0 } from "./B";`, `import { v4 } from "uuid";`}, 20),
	})
}
