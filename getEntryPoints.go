package main

// GetEntryPoints returns, in path order, graph files no other graph file
// depends on, narrowed by resultInclude/resultExclude.
func GetEntryPoints(graph *DependencyGraph, resultExclude []string, resultInclude []string) ([]string, error) {
	referencedFiles := map[string]bool{}

	for _, node := range graph.SortedNodes() {
		for _, dependency := range node.Dependencies {
			if dependency.Kind == FilePathDependency && dependency.FullName != node.Path {
				referencedFiles[dependency.FullName] = true
			}
		}
	}

	excludeGlobs, err := CreateGlobMatchers(resultExclude, graph.Root)
	if err != nil {
		return nil, err
	}
	includeGlobs, err := CreateGlobMatchers(resultInclude, graph.Root)
	if err != nil {
		return nil, err
	}

	notReferencedFiles := []string{}
	for _, filePath := range graph.SortedPaths() {
		if referencedFiles[filePath] {
			continue
		}
		if len(includeGlobs) > 0 && !MatchesAnyGlobMatcher(filePath, includeGlobs) {
			continue
		}
		if MatchesAnyGlobMatcher(filePath, excludeGlobs) {
			continue
		}
		notReferencedFiles = append(notReferencedFiles, filePath)
	}

	return notReferencedFiles, nil
}
