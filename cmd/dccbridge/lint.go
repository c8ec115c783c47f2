package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"caliper-hq/dccbridge/pkg/cli"
	profileErrors "caliper-hq/dccbridge/pkg/profile/errors"
	"caliper-hq/dccbridge/pkg/profile/parser"
)

var lintFlags struct {
	file     string
	dir      string
	noRepair bool
	format   string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate mapping profiles",
	Long: `Validate mapping profile files for syntax and structural errors.

The lint command parses profile files and performs comprehensive validation:
  - JSON syntax validation (with lenient repair unless disabled)
  - Profile structure validation (targets, rule kinds, required fields)
  - Target/type coherence validation

Examples:
  # Lint single profile
  dccbridge lint --file profiles/fluke.json

  # Lint directory
  dccbridge lint --dir profiles/

  # Disable lenient parsing
  dccbridge lint --file profiles/fluke.json --no-repair

  # JSON output for CI/CD
  dccbridge lint --file profiles/fluke.json --format json`,
	RunE: lintProfiles,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "profile file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of profile files")
	lintCmd.Flags().BoolVar(&lintFlags.noRepair, "no-repair", false, "disable lenient JSON parsing")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

func lintProfiles(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string

	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}

	if lintFlags.dir != "" {
		matches, err := filepath.Glob(filepath.Join(lintFlags.dir, "*.json"))
		if err != nil {
			return fmt.Errorf("failed to list profile files: %w", err)
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return fmt.Errorf("no profile files found")
	}

	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintProfileFile(file))
	}

	if lintFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, results)
	}
	return lintOutputText(results)
}

// LintResult represents the validation result for a single profile file.
type LintResult struct {
	File   string      `json:"file"`
	Name   string      `json:"name,omitempty"`
	Rules  int         `json:"rules,omitempty"`
	Valid  bool        `json:"valid"`
	Errors []LintError `json:"errors,omitempty"`
}

// LintError represents a single validation error.
type LintError struct {
	Path       string `json:"path,omitempty"`
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func lintProfileFile(path string) LintResult {
	result := LintResult{
		File:  path,
		Valid: true,
	}

	p := parser.NewParser().WithRepair(!lintFlags.noRepair)
	profile, err := p.Parse(path)
	if err != nil {
		result.Valid = false

		if errList, ok := err.(*profileErrors.ErrorList); ok {
			for _, e := range errList.Errors {
				result.Errors = append(result.Errors, LintError{
					Path:       e.Path,
					Message:    e.Message,
					Type:       string(e.Type),
					Suggestion: e.Suggestion,
				})
			}
		} else if profErr, ok := err.(*profileErrors.Error); ok {
			result.Errors = append(result.Errors, LintError{
				Path:       profErr.Path,
				Message:    profErr.Message,
				Type:       string(profErr.Type),
				Suggestion: profErr.Suggestion,
			})
		} else {
			result.Errors = append(result.Errors, LintError{Message: err.Error()})
		}
		return result
	}

	result.Name = profile.Name
	result.Rules = len(profile.Mappings)
	return result
}

func lintOutputText(results []LintResult) error {
	totalErrors := 0

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if result.Valid {
			fmt.Printf("✓ Syntax valid\n")
			fmt.Printf("✓ %d rule(s) validated\n", result.Rules)
		}

		for _, err := range result.Errors {
			fmt.Printf("✗ Error: %s", err.Message)
			if err.Path != "" {
				fmt.Printf(" (%s)", err.Path)
			}
			if err.Type != "" {
				fmt.Printf(" [%s]", err.Type)
			}
			fmt.Println()
			if err.Suggestion != "" {
				fmt.Printf("  suggestion: %s\n", err.Suggestion)
			}
			totalErrors++
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d file(s), %d error(s)\n", len(results), totalErrors)

	if totalErrors > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}
	return nil
}
