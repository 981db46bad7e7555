package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cookgraph/internal/scenario"
)

// runCommand creates the run command for playing a scenario in batch.
func (c *CLI) runCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run [scenario.toml]",
		Short: "Play a scenario and check its expectations",
		Long: `Play a scenario and check its expectations.

The run command builds the scenario's network, then applies each step in
order through the undo history, settling the resulting cook after every
step. A step's "expect" table is checked against output values once the
step settles. The command fails at the first unexpected error or failed
expectation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScenario(cmd.Context(), args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the final session snapshot as JSON")

	return cmd
}

// runScenario builds and plays the scenario at path.
func (c *CLI) runScenario(ctx context.Context, path string, asJSON bool) error {
	s, sc, err := c.openScenario(ctx, path, nil)
	if err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	err = scenario.Play(ctx, s, sc, func(r scenario.Result) {
		if asJSON {
			return
		}
		switch {
		case r.Err != nil && r.Step.Fails:
			printWarning(c.out, "%s (failed as expected: %v)", r.Step, r.Err)
		case r.Err != nil:
			printError(c.out, "%s: %v", r.Step, r.Err)
		default:
			printSuccess(c.out, "%s", r.Step)
		}
		if r.Cook != nil {
			printCook(c.out, *r.Cook)
		}
	})
	if err != nil {
		return err
	}
	prog.done("played scenario", "steps", len(sc.Steps))

	if asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(s.Snapshot())
	}

	if v := s.Network().Visible(); v != nil {
		fmt.Fprintln(c.out)
		printOutputs(c.out, v)
	}
	fmt.Fprintln(c.out)
	printNextStep(c.out, "Step through it interactively", fmt.Sprintf("%s tui %s", appName, path))
	return nil
}
