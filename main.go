package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var (
	currentDir, _ = os.Getwd()
	rootCmd       = &cobra.Command{
		Use:   "arch-unit",
		Short: "Check architecture rules of JavaScript/TypeScript projects",
		Long: `Builds the dependency graph of a JavaScript or TypeScript project and checks declarative rules against it:
dependencies between directories, cycles, file sizes and naming conventions.`,
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			SetVerbose(verbose)
			color.NoColor = noColor || !isatty.IsTerminal(os.Stdout.Fd())
			applyEnvDefaults()
		},
	}
)

var (
	verbose bool
	noColor bool
)

var docsCmd = &cobra.Command{
	Use:   "doc-gen",
	Short: "Generate CLI documentation",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := doc.GenMarkdownTree(rootCmd, "./docs")
		if err != nil {
			log.Fatal(err)
		}
		return nil
	},
}

// ---------------- shared flags ----------------

var (
	packageJsonPath  string
	tsconfigJsonPath string
)

func addSharedFlags(command *cobra.Command) {
	command.Flags().StringVar(&packageJsonPath, "package-json", "",
		"Path to package.json (default: ./package.json, env ARCH_UNIT_PACKAGE_JSON)")
	command.Flags().StringVar(&tsconfigJsonPath, "tsconfig-json", "",
		"Path to tsconfig.json (default: ./tsconfig.json, env ARCH_UNIT_TSCONFIG)")
}

// applyEnvDefaults fills flags left empty from the environment (.env included).
func applyEnvDefaults() {
	if packageJsonPath == "" {
		packageJsonPath = os.Getenv("ARCH_UNIT_PACKAGE_JSON")
	}
	if tsconfigJsonPath == "" {
		tsconfigJsonPath = os.Getenv("ARCH_UNIT_TSCONFIG")
	}
	if checkConfigPath == "" {
		checkConfigPath = os.Getenv("ARCH_UNIT_CONFIG")
	}
}

func projectFromFlags(cwd string, include []string, exclude []string) *Project {
	opts := []ProjectOption{}
	if packageJsonPath != "" {
		opts = append(opts, WithPackageJson(JoinWithCwd(cwd, packageJsonPath)))
	}
	if tsconfigJsonPath != "" {
		opts = append(opts, WithTsConfig(JoinWithCwd(cwd, tsconfigJsonPath)))
	}
	if len(include) > 0 {
		opts = append(opts, WithInclude(include...))
	}
	if len(exclude) > 0 {
		opts = append(opts, WithExclude(exclude...))
	}
	return NewProject(cwd, opts...)
}

// ---------------- graph ----------------
var (
	graphCwd     string
	graphInclude []string
	graphExclude []string
)

func printGraph(w io.Writer, graph *DependencyGraph) {
	for _, node := range graph.SortedNodes() {
		fmt.Fprintf(w, "%s (%s, %d/%d lines)\n", RelativeToRoot(node.Path, graph.Root), node.Language, node.LogicalLineCount, node.TotalLineCount)
		for _, dep := range node.Dependencies {
			fmt.Fprintf(w, "  ➞ %s [%s via %s]\n", dep.Name, dep.Kind, dep.ResolvedVia)
		}
	}
}

var graphCmd = &cobra.Command{
	Use:     "graph",
	Short:   "Print the dependency graph of the project",
	Example: "arch-unit graph --include='src/**'",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd := ResolveAbsoluteCwd(graphCwd)
		graph, err := projectFromFlags(cwd, graphInclude, graphExclude).BuildGraph(cmd.Context())
		if err != nil {
			return err
		}
		printGraph(cmd.OutOrStdout(), graph)
		return nil
	},
}

// ---------------- entry-points ----------------
var (
	entryPointsCwd           string
	entryPointsCount         bool
	entryPointsResultInclude []string
	entryPointsResultExclude []string
)

var entryPointsCmd = &cobra.Command{
	Use:   "entry-points",
	Short: "List files that no other project file depends on",
	Long: `Builds the dependency graph and lists the files nothing imports.
Useful to discover the roots the rules should be scoped to.`,
	Example: "arch-unit entry-points --result-exclude='**/*.test.ts'",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd := ResolveAbsoluteCwd(entryPointsCwd)
		graph, err := projectFromFlags(cwd, nil, nil).BuildGraph(cmd.Context())
		if err != nil {
			return err
		}
		entryPoints, err := GetEntryPoints(graph, entryPointsResultExclude, entryPointsResultInclude)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if entryPointsCount {
			fmt.Fprintln(out, len(entryPoints))
			return nil
		}
		for _, entryPoint := range entryPoints {
			fmt.Fprintln(out, RelativeToRoot(entryPoint, graph.Root))
		}
		return nil
	},
}

// ---------------- circular ----------------
var (
	circularCwd     string
	circularExclude []string
)

var circularCmd = &cobra.Command{
	Use:   "circular",
	Short: "Detect circular dependencies in your project",
	Long: `Analyzes the project to find circular dependencies between modules.
Exits with the number of cycles found.`,
	Example: "arch-unit circular --exclude='**/*.test.ts'",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd := ResolveAbsoluteCwd(circularCwd)
		graph, err := projectFromFlags(cwd, nil, circularExclude).BuildGraph(cmd.Context())
		if err != nil {
			return err
		}
		cycles := FindCircularDependencies(graph)

		fmt.Fprint(os.Stderr, FormatCircularDependencies(cycles, graph))

		if len(cycles) > 0 {
			os.Exit(len(cycles))
		}
		return nil
	},
}

// ---------------- list-cwd-files ----------------
var (
	listFilesCwd     string
	listFilesInclude []string
	listFilesExclude []string
	listFilesCount   bool
)

var listCwdFilesCmd = &cobra.Command{
	Use:   "list-cwd-files",
	Short: "List all files in the current working directory",
	Long: `Recursively lists all files in the specified directory,
with options to filter results. Files ignored by git are skipped.`,
	Example: "arch-unit list-cwd-files --include='**/*.ts' --exclude='**/*.test.ts'",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd := ResolveAbsoluteCwd(listFilesCwd)
		files, err := SelectFiles(cwd, listFilesInclude, listFilesExclude, true)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if listFilesCount {
			fmt.Fprintln(out, len(files))
			return nil
		}
		for _, filePath := range files {
			fmt.Fprintln(out, RelativeToRoot(filePath, cwd))
		}
		return nil
	},
}

// ---------------- lines-of-code ----------------
var (
	locCwd     string
	locInclude []string
	locExclude []string
)

// formatNumber formats an integer with underscores as thousand separators
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteRune('_')
		}
		b.WriteRune(r)
	}
	return b.String()
}

type fileLines struct {
	path    string
	logical int
	total   int
}

func countLinesOfFiles(files []string) ([]fileLines, error) {
	counts := make([]fileLines, 0, len(files))
	for _, filePath := range files {
		content, err := os.ReadFile(DenormalizePathForOS(filePath))
		if err != nil {
			return nil, err
		}
		logical, total := CountLines(content)
		counts = append(counts, fileLines{path: filePath, logical: logical, total: total})
	}
	return counts, nil
}

func printLinesOfCode(w io.Writer, counts []fileLines, root string, top int) {
	totalLines := 0
	logicalLines := 0
	for _, c := range counts {
		totalLines += c.total
		logicalLines += c.logical
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Metric\tLines\tPercentage")
	fmt.Fprintln(tw, "------\t-----\t----------")
	fmt.Fprintf(tw, "Total lines\t%v\t100.00%%\n", formatNumber(totalLines))
	percentage := 0.0
	if totalLines > 0 {
		percentage = float64(logicalLines) / float64(totalLines) * 100
	}
	fmt.Fprintf(tw, "Logical lines\t%v\t%.2f%%\n", formatNumber(logicalLines), percentage)
	tw.Flush()

	if top <= 0 || len(counts) == 0 {
		return
	}
	sorted := make([]fileLines, len(counts))
	copy(sorted, counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].logical > sorted[j].logical
	})
	if len(sorted) > top {
		sorted = sorted[:top]
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "File\tLogical\tTotal")
	for _, c := range sorted {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", RelativeToRoot(c.path, root), c.logical, c.total)
	}
	tw.Flush()
}

var locTop int

var linesOfCodeCmd = &cobra.Command{
	Use:     "lines-of-code",
	Short:   "Count logical lines of code: lines that are neither blank nor start with a comment",
	Example: "arch-unit lines-of-code --include='src/**' --top 10",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd := ResolveAbsoluteCwd(locCwd)
		include := locInclude
		if len(include) == 0 {
			include = DefaultMimeTypes
		}
		files, err := SelectFiles(cwd, include, locExclude, true)
		if err != nil {
			return err
		}
		counts, err := countLinesOfFiles(files)
		if err != nil {
			return err
		}
		printLinesOfCode(cmd.OutOrStdout(), counts, cwd, locTop)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print debug traces to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	// graph flags
	addSharedFlags(graphCmd)
	graphCmd.Flags().StringVarP(&graphCwd, "cwd", "c", currentDir,
		"Working directory for the command")
	graphCmd.Flags().StringSliceVar(&graphInclude, "include", []string{},
		"Only include files matching these glob patterns")
	graphCmd.Flags().StringSliceVar(&graphExclude, "exclude", []string{},
		"Exclude files matching these glob patterns")

	// entry-points flags
	addSharedFlags(entryPointsCmd)
	entryPointsCmd.Flags().StringVarP(&entryPointsCwd, "cwd", "c", currentDir,
		"Working directory for the command")
	entryPointsCmd.Flags().BoolVarP(&entryPointsCount, "count", "n", false,
		"Only display the number of entry points found")
	entryPointsCmd.Flags().StringSliceVar(&entryPointsResultExclude, "result-exclude", []string{},
		"Exclude files matching these glob patterns from results")
	entryPointsCmd.Flags().StringSliceVar(&entryPointsResultInclude, "result-include", []string{},
		"Only include files matching these glob patterns in results")

	// circular flags
	addSharedFlags(circularCmd)
	circularCmd.Flags().StringVarP(&circularCwd, "cwd", "c", currentDir,
		"Working directory for the command")
	circularCmd.Flags().StringSliceVar(&circularExclude, "exclude", []string{},
		"Exclude files matching these glob patterns from analysis")

	// list-files flags
	listCwdFilesCmd.Flags().StringVar(&listFilesCwd, "cwd", currentDir,
		"Directory to list files from")
	listCwdFilesCmd.Flags().StringSliceVar(&listFilesExclude, "exclude", []string{},
		"Exclude files matching these glob patterns")
	listCwdFilesCmd.Flags().StringSliceVar(&listFilesInclude, "include", []string{},
		"Only include files matching these glob patterns")
	listCwdFilesCmd.Flags().BoolVar(&listFilesCount, "count", false,
		"Only display the count of matching files")

	// lines-of-code flags
	linesOfCodeCmd.Flags().StringVarP(&locCwd, "cwd", "c", currentDir,
		"Directory to analyze")
	linesOfCodeCmd.Flags().StringSliceVar(&locInclude, "include", []string{},
		"Only count files matching these glob patterns")
	linesOfCodeCmd.Flags().StringSliceVar(&locExclude, "exclude", []string{},
		"Skip files matching these glob patterns")
	linesOfCodeCmd.Flags().IntVar(&locTop, "top", 0,
		"Also list the N files with the most logical lines")

	// add commands
	rootCmd.AddCommand(checkCmd, configCmd, graphCmd, entryPointsCmd, circularCmd, listCwdFilesCmd, linesOfCodeCmd, docsCmd)
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
