package main

import (
	"testing"

	"gotest.tools/v3/assert"
)

func relativeAll(paths []string, root string) []string {
	result := make([]string, len(paths))
	for i, path := range paths {
		result[i] = RelativeToRoot(path, root)
	}
	return result
}

func gitignoredProject(t *testing.T) string {
	t.Helper()
	return writeProject(t, map[string]string{
		".gitignore":                "dist/\n*.generated.ts\n",
		"src/index.ts":              "",
		"src/model.generated.ts":    "",
		"src/view.tsx":              "",
		"src/styles.css":            "",
		"src/legacy/.gitignore":     "old.js\n",
		"src/legacy/old.js":         "",
		"src/legacy/new.js":         "",
		"dist/bundle.js":            "",
		"node_modules/uuid/uuid.js": "",
	})
}

func TestSelectFilesRespectsGitignore(t *testing.T) {
	root := gitignoredProject(t)

	files, err := SelectFiles(root, DefaultMimeTypes, nil, true)
	assert.NilError(t, err)

	assert.DeepEqual(t, relativeAll(files, root), []string{
		"src/index.ts",
		"src/legacy/new.js",
		"src/view.tsx",
	})
}

func TestSelectFilesWithoutGitignore(t *testing.T) {
	root := gitignoredProject(t)

	files, err := SelectFiles(root, DefaultMimeTypes, nil, false)
	assert.NilError(t, err)

	// node_modules is never entered
	assert.DeepEqual(t, relativeAll(files, root), []string{
		"dist/bundle.js",
		"src/index.ts",
		"src/legacy/new.js",
		"src/legacy/old.js",
		"src/model.generated.ts",
		"src/view.tsx",
	})
}

func TestSelectFilesIncludeExclude(t *testing.T) {
	root := gitignoredProject(t)

	files, err := SelectFiles(root, []string{"src/**", "!**/*.css"}, []string{"legacy/"}, true)
	assert.NilError(t, err)
	assert.DeepEqual(t, relativeAll(files, root), []string{"src/index.ts", "src/view.tsx"})

	// no include selects every file, extensions included
	files, err = SelectFiles(root, nil, []string{"src/legacy/**"}, true)
	assert.NilError(t, err)
	assert.DeepEqual(t, relativeAll(files, root), []string{
		".gitignore",
		"src/index.ts",
		"src/styles.css",
		"src/view.tsx",
	})
}

func TestSelectFilesErrors(t *testing.T) {
	_, err := SelectFiles("/definitely/not/existing/root", nil, nil, true)
	assert.ErrorContains(t, err, "cannot read project root")

	root := writeProject(t, map[string]string{"a.ts": ""})
	_, err = SelectFiles(root, []string{"src/[a"}, nil, true)
	assert.ErrorContains(t, err, "include")
}
