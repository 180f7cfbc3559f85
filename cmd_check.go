package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RuleResult is the outcome of one rule of a config.
type RuleResult struct {
	Rule   *Rule
	Passed bool
	Err    error
}

type CheckResult struct {
	RuleResults []RuleResult
	HasFailures bool
}

// RunRules checks every rule in order. A failing rule never stops the
// remaining ones; only context cancellation does.
func RunRules(ctx context.Context, rules []*Rule) (*CheckResult, error) {
	result := &CheckResult{RuleResults: make([]RuleResult, 0, len(rules))}
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logDebug("checking %s: %s", rule.Name, rule.Construction())
		passed, err := rule.Check(ctx)
		result.RuleResults = append(result.RuleResults, RuleResult{Rule: rule, Passed: passed, Err: err})
		if !passed {
			result.HasFailures = true
		}
	}
	return result, nil
}

const defaultMessagesLimit = 5

var (
	passedMark = color.New(color.FgGreen).SprintFunc()
	failedMark = color.New(color.FgRed).SprintFunc()
	dimmed     = color.New(color.Faint).SprintFunc()
)

func formatCheckResults(w io.Writer, result *CheckResult, listAll bool) {
	passed := 0
	for _, ruleResult := range result.RuleResults {
		rule := ruleResult.Rule
		if ruleResult.Passed {
			passed++
			fmt.Fprintf(w, "%s %s %s\n", passedMark("✅"), rule.Name, dimmed(rule.Construction()))
			continue
		}

		fmt.Fprintf(w, "%s %s %s\n", failedMark("❌"), rule.Name, dimmed(rule.Construction()))

		var checkErr *CheckError
		switch {
		case ruleResult.Err == nil:
			fmt.Fprintf(w, "    - not satisfied by the selected files\n")
		case errors.As(ruleResult.Err, &checkErr):
			fmt.Fprintf(w, "    %s\n", failedMark(checkErr.Kind.sentinel()))
			messages := checkErr.Messages
			remaining := 0
			if !listAll && len(messages) > defaultMessagesLimit {
				remaining = len(messages) - defaultMessagesLimit
				messages = messages[:defaultMessagesLimit]
			}
			for _, message := range messages {
				fmt.Fprintf(w, "    - %s\n", message)
			}
			if remaining > 0 {
				fmt.Fprintf(w, "    ... and %d more issues (use --list-all to see them)\n", remaining)
			}
		default:
			fmt.Fprintf(w, "    - %v\n", ruleResult.Err)
		}
	}

	failed := len(result.RuleResults) - passed
	fmt.Fprintf(w, "\n%d passed, %d failed\n", passed, failed)
	if result.HasFailures {
		fmt.Fprintf(w, "%s Checks failed! See details above.\n", failedMark("❌"))
	} else {
		fmt.Fprintf(w, "%s All checks passed!\n", passedMark("✅"))
	}
}

// ---------------- check ----------------
var (
	checkCwd        string
	checkConfigPath string
	checkListAll    bool
)

// runCheckCommand loads the config, runs its rules and prints the report. It
// returns whether any rule failed.
func runCheckCommand(ctx context.Context, w io.Writer, cwd string, configPath string, listAll bool) (bool, error) {
	if configPath == "" {
		configPath = cwd
	} else {
		configPath = JoinWithCwd(cwd, configPath)
	}

	config, actualPath, err := LoadConfig(configPath)
	if err != nil {
		return false, fmt.Errorf("could not load configuration from %s: %w", configPath, err)
	}
	logDebug("loaded config %s", actualPath)

	project := NewProjectFromConfig(config, cwd, packageJsonPath, tsconfigJsonPath)
	rules, err := config.BuildRules(project)
	if err != nil {
		return false, err
	}

	result, err := RunRules(ctx, rules)
	if err != nil {
		return false, err
	}
	formatCheckResults(w, result, listAll)
	return result.HasFailures, nil
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every rule defined in arch-unit.config.(json|jsonc|yaml|yml)",
	Long: `Builds the dependency graph of the project and checks every rule of the configuration against it.
Exits with code 1 when any rule fails.`,
	Example: "arch-unit check --config arch-unit.config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd := NormalizePathForInternal(ResolveAbsoluteCwd(checkCwd))
		failed, err := runCheckCommand(cmd.Context(), cmd.OutOrStdout(), cwd, checkConfigPath, checkListAll)
		if err != nil {
			return err
		}
		if failed {
			os.Exit(1)
		}
		return nil
	},
}

// ---------------- config ----------------
var (
	configCwd  string
	configYaml bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create arch-unit configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new arch-unit.config.json file",
	Long:  `Create a new configuration file in the working directory with a starter set of rules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd := ResolveAbsoluteCwd(configCwd)
		configPath, err := InitConfigFile(cwd, configYaml)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s\n", passedMark("✅"), configPath)
		return nil
	},
}

func init() {
	addSharedFlags(checkCmd)
	checkCmd.Flags().StringVarP(&checkCwd, "cwd", "c", currentDir,
		"Working directory for the command")
	checkCmd.Flags().StringVar(&checkConfigPath, "config", "",
		"Path to the config file (default: arch-unit.config.* in cwd)")
	checkCmd.Flags().BoolVar(&checkListAll, "list-all", false,
		"List all issues instead of limiting output")

	configInitCmd.Flags().StringVarP(&configCwd, "cwd", "c", currentDir,
		"Working directory for the command")
	configInitCmd.Flags().BoolVar(&configYaml, "yaml", false,
		"Write the config as YAML")
	configCmd.AddCommand(configInitCmd)
}
