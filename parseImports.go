package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language is the syntax family a file is parsed with.
type Language uint8

const (
	UnknownLanguage Language = iota
	JavaScriptLanguage
	TypeScriptLanguage
	TSXLanguage
)

func (l Language) String() string {
	switch l {
	case JavaScriptLanguage:
		return "javascript"
	case TypeScriptLanguage:
		return "typescript"
	case TSXLanguage:
		return "tsx"
	}
	return "unknown"
}

func (l Language) grammar() *sitter.Language {
	switch l {
	case JavaScriptLanguage:
		return javascript.GetLanguage()
	case TypeScriptLanguage:
		return typescript.GetLanguage()
	case TSXLanguage:
		return tsx.GetLanguage()
	}
	return nil
}

var extensionToLanguage = map[string]Language{
	".js":   JavaScriptLanguage,
	".jsx":  JavaScriptLanguage,
	".mjs":  JavaScriptLanguage,
	".cjs":  JavaScriptLanguage,
	".mjsx": JavaScriptLanguage,
	".ts":   TypeScriptLanguage,
	".mts":  TypeScriptLanguage,
	".cts":  TypeScriptLanguage,
	".tsx":  TSXLanguage,
}

func LanguageForPath(filePath string) Language {
	return extensionToLanguage[strings.ToLower(filepath.Ext(filePath))]
}

type ImportKind uint8

const (
	ImportDeclaration ImportKind = iota
	RequireCall
	DynamicImportCall
)

// Import is one statically resolvable specifier occurrence in a source file.
type Import struct {
	Request string
	Kind    ImportKind
	Line    int
}

func (i Import) ResolvedVia() ResolvedVia {
	if i.Kind == RequireCall {
		return ViaRequire
	}
	return ViaImport
}

// ParseError reports source that could not be turned into a syntax tree.
type ParseError struct {
	File   string
	Line   int
	Column int
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse %s: %v", e.File, e.Cause)
	}
	return fmt.Sprintf("failed to parse %s: syntax error at %d:%d", e.File, e.Line, e.Column)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ParseImports extracts import declarations, re-exports with a source,
// `require('x')` calls with a single string argument and `import('x')` calls
// whose argument is a string or a template without substitutions. Dynamic
// imports with computed arguments are skipped.
func ParseImports(ctx context.Context, filePath string, src []byte, lang Language) ([]Import, error) {
	grammar := lang.grammar()
	if grammar == nil {
		return []Import{}, nil
	}

	// parsers are not safe for concurrent use, one per call
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &ParseError{File: filePath, Cause: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line, column := firstSyntaxError(root)
		return nil, &ParseError{File: filePath, Line: line, Column: column}
	}

	imports := []Import{}
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch node.Type() {
		case "import_statement":
			if source := node.ChildByFieldName("source"); source != nil {
				if request, ok := stringLiteralValue(source, src); ok {
					imports = append(imports, Import{Request: request, Kind: ImportDeclaration, Line: lineOf(source)})
				}
			} else if clause := findChildOfType(node, "import_require_clause"); clause != nil {
				// import x = require('y')
				source := clause.ChildByFieldName("source")
				if source == nil {
					source = findChildOfType(clause, "string")
				}
				if source != nil {
					if request, ok := stringLiteralValue(source, src); ok {
						imports = append(imports, Import{Request: request, Kind: RequireCall, Line: lineOf(source)})
					}
				}
			}
			continue
		case "export_statement":
			if source := node.ChildByFieldName("source"); source != nil {
				if request, ok := stringLiteralValue(source, src); ok {
					imports = append(imports, Import{Request: request, Kind: ImportDeclaration, Line: lineOf(source)})
				}
			}
		case "call_expression":
			if imp, ok := callExpressionImport(node, src); ok {
				imports = append(imports, imp)
			}
		}

		// push in reverse so occurrences come out in source order
		for i := int(node.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, node.NamedChild(i))
		}
	}

	return imports, nil
}

func callExpressionImport(node *sitter.Node, src []byte) (Import, bool) {
	function := node.ChildByFieldName("function")
	arguments := node.ChildByFieldName("arguments")
	if function == nil || arguments == nil {
		return Import{}, false
	}
	args := namedArguments(arguments)
	if len(args) != 1 {
		return Import{}, false
	}
	arg := args[0]

	switch {
	case function.Type() == "import":
		request, ok := stringLiteralValue(arg, src)
		if !ok {
			request, ok = plainTemplateValue(arg, src)
		}
		if !ok {
			return Import{}, false
		}
		return Import{Request: request, Kind: DynamicImportCall, Line: lineOf(arg)}, true
	case function.Type() == "identifier" && function.Content(src) == "require":
		request, ok := stringLiteralValue(arg, src)
		if !ok {
			return Import{}, false
		}
		return Import{Request: request, Kind: RequireCall, Line: lineOf(arg)}, true
	}
	return Import{}, false
}

func namedArguments(arguments *sitter.Node) []*sitter.Node {
	args := []*sitter.Node{}
	for i := 0; i < int(arguments.NamedChildCount()); i++ {
		child := arguments.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		args = append(args, child)
	}
	return args
}

func stringLiteralValue(node *sitter.Node, src []byte) (string, bool) {
	if node.Type() != "string" {
		return "", false
	}
	return trimQuotes(node.Content(src)), true
}

func plainTemplateValue(node *sitter.Node, src []byte) (string, bool) {
	if node.Type() != "template_string" {
		return "", false
	}
	if findChildOfType(node, "template_substitution") != nil {
		return "", false
	}
	return trimQuotes(node.Content(src)), true
}

func trimQuotes(literal string) string {
	if len(literal) < 2 {
		return literal
	}
	return literal[1 : len(literal)-1]
}

func findChildOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func lineOf(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// firstSyntaxError returns the 1-based position of the first ERROR or
// MISSING node in document order.
func firstSyntaxError(root *sitter.Node) (int, int) {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.Type() == "ERROR" || node.IsMissing() {
			point := node.StartPoint()
			return int(point.Row) + 1, int(point.Column) + 1
		}
		if !node.HasError() {
			continue
		}
		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, node.Child(i))
		}
	}
	point := root.StartPoint()
	return int(point.Row) + 1, int(point.Column) + 1
}

// CountLines returns the logical and the total line count of src. A line is
// logical when, trimmed, it is not empty and does not start with `//`, `/*`
// or `*`.
func CountLines(src []byte) (logical int, total int) {
	content := strings.ReplaceAll(string(src), "\r\n", "\n")
	if content == "" {
		return 0, 0
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	total = len(lines)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") {
			continue
		}
		logical++
	}
	return logical, total
}
