package main

import (
	"fmt"
	"strings"
)

type visitColor uint8

const (
	white visitColor = iota
	gray
	black
)

// HasCycle runs a three-colour DFS over nodes and reports whether any cycle
// exists. Only edges to file dependencies that are themselves part of nodes
// are followed.
func HasCycle(nodes []*FileNode) bool {
	byPath := make(map[string]*FileNode, len(nodes))
	for _, node := range nodes {
		byPath[node.Path] = node
	}
	colors := make(map[string]visitColor, len(nodes))

	var dfs func(node *FileNode) bool
	dfs = func(node *FileNode) bool {
		colors[node.Path] = gray
		for _, dep := range node.Dependencies {
			if dep.Kind != FilePathDependency {
				continue
			}
			next, inScope := byPath[dep.FullName]
			if !inScope {
				continue
			}
			switch colors[dep.FullName] {
			case gray:
				return true
			case white:
				if dfs(next) {
					return true
				}
			}
		}
		colors[node.Path] = black
		return false
	}

	for _, node := range nodes {
		if colors[node.Path] == white && dfs(node) {
			return true
		}
	}
	return false
}

// FindCircularDependencies returns every cycle path found by DFS over the
// whole graph. Each cycle starts and ends with the same file.
func FindCircularDependencies(graph *DependencyGraph) [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	// Use shared path slice to avoid copying
	path := make([]string, 0, 64)

	var dfs func(node string)
	dfs = func(node string) {
		visited[node] = true
		recStack[node] = true
		path = append(path, node)

		if fileNode, exists := graph.Node(node); exists {
			for _, dep := range fileNode.Dependencies {
				if dep.Kind != FilePathDependency || !graph.Has(dep.FullName) {
					continue
				}
				depPath := dep.FullName

				if recStack[depPath] {
					cycleStart := -1
					for i := len(path) - 1; i >= 0; i-- {
						if path[i] == depPath {
							cycleStart = i
							break
						}
					}
					if cycleStart >= 0 {
						cycle := make([]string, len(path)-cycleStart+1)
						copy(cycle, path[cycleStart:])
						cycle[len(cycle)-1] = depPath
						cycles = append(cycles, cycle)
					}
					continue
				}

				if !visited[depPath] {
					dfs(depPath)
				}
			}
		}

		path = path[:len(path)-1]
		recStack[node] = false
	}

	for _, node := range graph.SortedPaths() {
		if !visited[node] {
			dfs(node)
		}
	}

	return deduplicateStringArrays(cycles)
}

// FormatCircularDependencies renders cycles with the specifier closing each edge.
func FormatCircularDependencies(cycles [][]string, graph *DependencyGraph) string {
	if len(cycles) == 0 {
		return fmt.Sprintln("No circular dependencies found! ✅")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d circular dependencies:\n\n", len(cycles))

	for i, cycle := range cycles {
		fmt.Fprintf(&b, "Circular Dependency %d:\n", i+1)
		for j, file := range cycle {
			cleanPath := RelativeToRoot(file, graph.Root)
			indent := strings.Repeat(" ", j)
			if j == 0 {
				fmt.Fprintf(&b, "%s ➞ %s (cycle start)\n", indent, cleanPath)
				continue
			}
			fmt.Fprintf(&b, "%s ➞ %s ('%s')\n", indent, cleanPath, requestBetween(graph, cycle[j-1], file))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func requestBetween(graph *DependencyGraph, from string, to string) string {
	node, exists := graph.Node(from)
	if !exists {
		return ""
	}
	for _, dep := range node.Dependencies {
		if dep.Kind == FilePathDependency && dep.FullName == to {
			return dep.Request
		}
	}
	return ""
}

// deduplicateStringArrays deduplicates cycles
func deduplicateStringArrays(arr [][]string) [][]string {
	entries := make(map[string]struct{}, len(arr))
	result := make([][]string, 0, len(arr))

	for _, arrNested := range arr {
		key := strings.Join(arrNested, ",")
		if _, exists := entries[key]; !exists {
			result = append(result, arrNested)
			entries[key] = struct{}{}
		}
	}
	return result
}
