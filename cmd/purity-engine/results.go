// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/purity-engine/internal/results"
	"github.com/pdiddy/purity-engine/pkg/types"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Query stored calc runs (list, show, export, delete)",
	Long: `Results reads the local results database written by calc. Runs are
addressed by ID or by a unique ID prefix.`,
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openResults(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(cmd.Context())
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs found.")
			return nil
		}
		fmt.Fprintf(w, "%-40s  %-20s  %-8s  %-10s  %s\n", "ID", "Created", "Scenario", "Decay (s)", "Element")
		fmt.Fprintln(w, strings.Repeat("-", 95))
		for _, r := range runs {
			fmt.Fprintf(w, "%-40s  %-20s  %-8s  %-10.3e  %s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Scenario, r.DecayTime, r.Element)
		}
		fmt.Fprintf(w, "\n%d runs\n", len(runs))
		return nil
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the nuclide activities and doses of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openResults(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.LoadRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printStoredRun(cmd, run)
		return nil
	},
}

var resultsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a run as YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		store, err := openResults(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Export(cmd.Context(), args[0], format, cmd.OutOrStdout())
	},
}

var resultsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a run from the results database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openResults(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.LoadRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := store.DeleteRun(cmd.Context(), run.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", run.ID)
		return nil
	},
}

func openResults(cmd *cobra.Command) (*results.Store, error) {
	dir, _ := cmd.Flags().GetString("results-dir")
	if dir == "" {
		dir = "output"
	}
	return results.NewStore(types.ResultsConfig{ResultsDir: dir})
}

func printStoredRun(cmd *cobra.Command, run types.Run) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "  Created:  %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Scenario: %s, decay time %.3e s\n", run.Scenario, run.DecayTime)
	fmt.Fprintf(w, "  Source:   %s\n", describeSource(run.Source))
	if run.Dir != "" {
		fmt.Fprintf(w, "  Dir:      %s\n", run.Dir)
	}

	fmt.Fprintln(w)
	printActivities(w, run)
	for i, d := range run.SampleDoses {
		fmt.Fprintf(w, "  Sample %d dose: %.3e uSv/h\n", i, d)
	}
	for _, ws := range run.Workstations {
		fmt.Fprintf(w, "  Workstation %s: %.3e uSv/h at (%g, %g, %g)\n",
			ws.Workstation, ws.Dose, ws.At.X, ws.At.Y, ws.At.Z)
	}
}

func init() {
	resultsCmd.PersistentFlags().String("results-dir", "output", "directory of the results database")
	resultsExportCmd.Flags().String("format", results.FormatYAML, "export format: yaml or json")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
	resultsCmd.AddCommand(resultsExportCmd)
	resultsCmd.AddCommand(resultsDeleteCmd)

	rootCmd.AddCommand(resultsCmd)
}
