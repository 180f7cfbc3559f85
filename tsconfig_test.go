package main

import (
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func TestParseTsConfig_Simple(t *testing.T) {
	root := writeProject(t, map[string]string{
		"tsconfig.json": `{
			"compilerOptions": {
				// jsonc
				"baseUrl": "./src",
				"paths":   {"@app/*": ["app/*"]},
			}
		}`,
	})

	tsConfig, err := ParseTsConfig(filepath.Join(root, "tsconfig.json"))
	assert.NilError(t, err)

	assert.Equal(t, tsConfig.Dir, root)
	assert.Equal(t, tsConfig.BaseURL, root+"/src")
	assert.DeepEqual(t, tsConfig.Paths, map[string][]string{"@app/*": {root + "/src/app/*"}})
}

func TestParseTsConfig_PathsWithoutBaseUrl(t *testing.T) {
	root := writeProject(t, map[string]string{
		"tsconfig.json": `{"compilerOptions": {"paths": {"@lib": ["lib/index.ts"]}}}`,
	})

	tsConfig, err := ParseTsConfig(filepath.Join(root, "tsconfig.json"))
	assert.NilError(t, err)

	assert.Equal(t, tsConfig.BaseURL, "")
	assert.DeepEqual(t, tsConfig.Paths, map[string][]string{"@lib": {root + "/lib/index.ts"}})
}

func TestParseTsConfig_Extends(t *testing.T) {
	root := writeProject(t, map[string]string{
		"configs/base.json": `{
			"compilerOptions": {
				"baseUrl": ".",
				"paths":   {"@shared/*": ["shared/*"], "@old/*": ["old/*"]}
			}
		}`,
		"tsconfig.json": `{
			"extends":         "./configs/base",
			"compilerOptions": {"paths": {"@old/*": ["new/*"]}}
		}`,
	})

	tsConfig, err := ParseTsConfig(filepath.Join(root, "tsconfig.json"))
	assert.NilError(t, err)

	// baseUrl of the base config is relative to the base config
	assert.Equal(t, tsConfig.BaseURL, root+"/configs")
	assert.DeepEqual(t, tsConfig.Paths, map[string][]string{
		"@shared/*": {root + "/configs/shared/*"},
		"@old/*":    {root + "/configs/new/*"},
	})
}

func TestParseTsConfig_ExtendsCycle(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.json": `{"extends": "./b.json", "compilerOptions": {"baseUrl": "a"}}`,
		"b.json": `{"extends": "./a.json"}`,
	})

	tsConfig, err := ParseTsConfig(filepath.Join(root, "a.json"))
	assert.NilError(t, err)
	assert.Equal(t, tsConfig.BaseURL, root+"/a")
}

func TestParseTsConfig_InvalidJson(t *testing.T) {
	root := writeProject(t, map[string]string{"tsconfig.json": `{"compilerOptions": `})

	_, err := ParseTsConfig(filepath.Join(root, "tsconfig.json"))
	assert.ErrorContains(t, err, "failed to unmarshal tsconfig")
}
