// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/purity-engine/internal/results"
	"github.com/pdiddy/purity-engine/internal/schedule"
	"github.com/pdiddy/purity-engine/pkg/types"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect irradiation scenarios",
	Long: `Schedule lists the built-in irradiation scenarios and shows the pulses
of a built-in scenario or a schedule file.`,
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := schedule.NewProvider()
		w := cmd.OutOrStdout()
		for _, name := range p.Names() {
			s, err := p.Resolve(name)
			if err != nil {
				return err
			}
			printScheduleSummary(w, s)
		}
		return nil
	},
}

var scheduleShowCmd = &cobra.Command{
	Use:   "show <name|file>",
	Short: "Show the pulses of a scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := schedule.NewProvider().Resolve(args[0])
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		if format != "" {
			return results.Encode(cmd.OutOrStdout(), s, format)
		}
		printSchedule(cmd.OutOrStdout(), s)
		return nil
	},
}

func printScheduleSummary(w io.Writer, s types.Schedule) {
	fmt.Fprintf(w, "%-6s  %3d pulses  %.4e s\n", s.Name, len(s.Pulses), s.Duration())
}

func printSchedule(w io.Writer, s types.Schedule) {
	fmt.Fprintf(w, "%-5s  %-12s  %s\n", "Pulse", "Duration (s)", "Strength")
	for i, p := range s.Pulses {
		fmt.Fprintf(w, "%-5d  %-12.5e  %.5e\n", i+1, p.Duration, p.Strength)
	}
	fmt.Fprintf(w, "\n%s: %d pulses, %.4e s\n", s.Name, len(s.Pulses), s.Duration())
}

func init() {
	scheduleShowCmd.Flags().String("format", "", "print as yaml or json instead of a table")

	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleShowCmd)

	rootCmd.AddCommand(scheduleCmd)
}
