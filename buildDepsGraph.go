package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// FileNode is one source file of the dependency graph.
type FileNode struct {
	Path             string
	Name             string
	Language         Language
	LogicalLineCount int
	TotalLineCount   int
	Dependencies     []Dependency

	ImportDeclarations int
	RequireCalls       int
	DynamicImportCalls int
}

// DependencyGraph maps absolute internal file paths to their nodes. It is
// built fresh for every check and never mutated afterwards.
type DependencyGraph struct {
	Root  string
	Nodes map[string]*FileNode
	paths []string
}

func (g *DependencyGraph) Node(path string) (*FileNode, bool) {
	node, ok := g.Nodes[path]
	return node, ok
}

func (g *DependencyGraph) Has(path string) bool {
	_, ok := g.Nodes[path]
	return ok
}

func (g *DependencyGraph) Len() int {
	return len(g.Nodes)
}

// SortedPaths returns node keys in lexical order.
func (g *DependencyGraph) SortedPaths() []string {
	return g.paths
}

// SortedNodes returns every node ordered by path.
func (g *DependencyGraph) SortedNodes() []*FileNode {
	nodes := make([]*FileNode, 0, len(g.paths))
	for _, path := range g.paths {
		nodes = append(nodes, g.Nodes[path])
	}
	return nodes
}

// Scope narrows the graph to the nodes selected by scope and not matched by
// exclude, ordered by path.
func (g *DependencyGraph) Scope(scope []GlobMatcher, exclude []GlobMatcher) []*FileNode {
	nodes := []*FileNode{}
	for _, path := range g.paths {
		if !SelectedByGlobMatchers(path, scope) {
			continue
		}
		if len(exclude) > 0 && MatchesAnyGlobMatcher(path, exclude) {
			continue
		}
		nodes = append(nodes, g.Nodes[path])
	}
	return nodes
}

// BuildFileNode reads and parses one file and resolves every specifier found in it.
func BuildFileNode(ctx context.Context, filePath string, resolver *ModuleResolver) (*FileNode, error) {
	filePath = NormalizePathForInternal(filePath)
	src, err := os.ReadFile(DenormalizePathForOS(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	lang := LanguageForPath(filePath)
	logical, total := CountLines(src)
	node := &FileNode{
		Path:             filePath,
		Name:             filepath.Base(filePath),
		Language:         lang,
		LogicalLineCount: logical,
		TotalLineCount:   total,
		Dependencies:     []Dependency{},
	}

	// unknown files are kept without dependencies so the extension check can report them
	if lang == UnknownLanguage {
		return node, nil
	}

	imports, err := ParseImports(ctx, filePath, src, lang)
	if err != nil {
		return nil, err
	}

	importingDir := NormalizePathForInternal(filepath.Dir(DenormalizePathForOS(filePath)))
	for _, imp := range imports {
		switch imp.Kind {
		case ImportDeclaration:
			node.ImportDeclarations++
		case RequireCall:
			node.RequireCalls++
		case DynamicImportCall:
			node.DynamicImportCalls++
		}
		node.Dependencies = append(node.Dependencies, resolver.Resolve(imp.Request, importingDir, imp.ResolvedVia()))
	}

	return node, nil
}

// BuildDependencyGraphFromFiles builds a node per file with bounded
// parallelism. The first read or parse error cancels the remaining work.
func BuildDependencyGraphFromFiles(ctx context.Context, root string, files []string, resolver *ModuleResolver) (*DependencyGraph, error) {
	results := make([]*FileNode, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0) * 2)

	for i, filePath := range files {
		i, filePath := i, filePath
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			node, err := BuildFileNode(gCtx, filePath, resolver)
			if err != nil {
				return err
			}
			results[i] = node
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	graph := &DependencyGraph{
		Root:  NormalizePathForInternal(root),
		Nodes: make(map[string]*FileNode, len(results)),
		paths: make([]string, 0, len(results)),
	}
	for _, node := range results {
		if _, exists := graph.Nodes[node.Path]; exists {
			continue
		}
		graph.Nodes[node.Path] = node
		graph.paths = append(graph.paths, node.Path)
	}
	sort.Strings(graph.paths)

	logDebug("built dependency graph with %d nodes for %s", graph.Len(), graph.Root)
	return graph, nil
}

// GraphOptions describe which files of a project end up in the graph and how
// their specifiers resolve.
type GraphOptions struct {
	Root             string
	Include          []string
	Exclude          []string
	MimeTypes        []string
	RespectGitignore bool
	Resolver         *ModuleResolver
}

// BuildDependencyGraph selects files under Root and builds the graph for them.
// Without explicit include patterns the mime type globs select the files.
func BuildDependencyGraph(ctx context.Context, opts GraphOptions) (*DependencyGraph, error) {
	include := opts.Include
	if len(include) == 0 {
		include = opts.MimeTypes
	}

	files, err := SelectFiles(opts.Root, include, opts.Exclude, opts.RespectGitignore)
	if err != nil {
		return nil, err
	}

	return BuildDependencyGraphFromFiles(ctx, opts.Root, files, opts.Resolver)
}
