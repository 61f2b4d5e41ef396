package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rinkleague/internal/harness"
)

// ScenarioOptions holds flags for the scenario command.
type ScenarioOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario filter (glob pattern)
	GoldenDir string // defaults to <scenarios-dir>/golden
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Digest string   `json:"digest,omitempty"`
	Score  string   `json:"score,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// ScenarioSummary holds the overall result.
type ScenarioSummary struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScenarioOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scenario <scenarios-dir>",
		Short: "Run simulation scenarios against golden play-by-play",
		Long: `Simulate every YAML scenario in a directory and check its assertions.

When <golden-dir>/<name>.golden exists the play-by-play trace must match it
byte for byte. No database is used.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)`,
		Example: `  rinkleague scenario ./internal/harness/testdata/scenarios --golden-dir ./internal/harness/testdata/golden
  rinkleague scenario ./scenarios --filter "seed42*" --update`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "golden file directory (default <scenarios-dir>/golden)")

	return cmd
}

func runScenarios(opts *ScenarioOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	if opts.GoldenDir == "" {
		opts.GoldenDir = filepath.Join(dir, "golden")
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	summary := ScenarioSummary{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	for _, f := range files {
		res := runScenarioFile(f, opts)
		summary.Scenarios = append(summary.Scenarios, res)
		if res.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	if opts.Format == "json" {
		return outputScenarioJSON(cmd, summary)
	}
	return outputScenarioText(cmd, summary)
}

// findScenarioFiles finds all YAML scenario files directly in dir.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(e.Name(), ext))
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func goldenFilePath(dir, name string) string {
	return filepath.Join(dir, name+".golden")
}

func runScenarioFile(path string, opts *ScenarioOptions) ScenarioResult {
	s, err := harness.LoadScenario(path)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(path),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	res, err := harness.Run(s)
	if err != nil {
		return ScenarioResult{Name: s.Name, Errors: []string{fmt.Sprintf("execution failed: %v", err)}}
	}
	out := ScenarioResult{
		Name:   s.Name,
		Pass:   res.Pass,
		Digest: res.Digest,
		Score:  fmt.Sprintf("%d-%d", res.Match.HomeScore, res.Match.AwayScore),
		Errors: res.Errors,
	}

	trace := harness.Trace(s.Name, s.Seed, res.Match)
	golden := goldenFilePath(opts.GoldenDir, s.Name)

	if opts.Update {
		if err := os.MkdirAll(filepath.Dir(golden), 0o755); err != nil {
			out.Pass = false
			out.Errors = append(out.Errors, fmt.Sprintf("failed to create golden directory: %v", err))
			return out
		}
		if err := os.WriteFile(golden, trace, 0o644); err != nil {
			out.Pass = false
			out.Errors = append(out.Errors, fmt.Sprintf("failed to write golden file: %v", err))
		}
		return out
	}

	want, err := os.ReadFile(golden)
	if os.IsNotExist(err) {
		return out
	}
	if err != nil {
		out.Pass = false
		out.Errors = append(out.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		return out
	}
	if !bytes.Equal(want, trace) {
		out.Pass = false
		out.Errors = append(out.Errors, "trace does not match golden file (run with --update to regenerate)")
	}
	return out
}

func outputScenarioJSON(cmd *cobra.Command, summary ScenarioSummary) error {
	response := CLIResponse{Status: "ok", Data: summary}
	if summary.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_SCENARIO_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", summary.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}
	return nil
}

func outputScenarioText(cmd *cobra.Command, summary ScenarioSummary) error {
	w := cmd.OutOrStdout()
	if summary.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}

	for _, r := range summary.Scenarios {
		if r.Pass {
			fmt.Fprintf(w, "✓ %s (%s)\n", r.Name, r.Score)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", r.Name)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scenario Summary: %d passed, %d failed, %d total\n", summary.Passed, summary.Failed, summary.Total)
	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
