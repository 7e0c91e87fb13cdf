// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/purity-engine/internal/reaction"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Build a reaction-rate table from cross sections and a spectrum",
	Long: `Rates collapses every cross section of the library whose parent is a
natural isotope of --element against the neutron spectrum and writes the
resulting reaction-rate table as YAML. The table can be passed to calc with
--rates.`,
	RunE: runRates,
}

func runRates(cmd *cobra.Command, args []string) error {
	xsPath, _ := cmd.Flags().GetString("xs")
	spectrumPath, _ := cmd.Flags().GetString("spectrum")
	isotopesPath, _ := cmd.Flags().GetString("isotopes")
	element, _ := cmd.Flags().GetString("element")
	delta, _ := cmd.Flags().GetFloat64("delta-impurity")
	outPath, _ := cmd.Flags().GetString("output")

	if xsPath == "" || spectrumPath == "" || isotopesPath == "" || element == "" {
		return fmt.Errorf("--xs, --spectrum, --isotopes and --element are required")
	}

	lib, err := reaction.LoadLibrary(xsPath)
	if err != nil {
		return err
	}
	spectrum, err := reaction.LoadSpectrum(spectrumPath)
	if err != nil {
		return err
	}
	isotopes, err := reaction.LoadIsotopes(isotopesPath)
	if err != nil {
		return err
	}

	table, err := reaction.BuildTable(reaction.Inputs{
		Library:       lib,
		Spectrum:      spectrum,
		Isotopes:      isotopes,
		Element:       element,
		DeltaImpurity: delta,
	}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}
	if err := reaction.WriteTable(w, table); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d parent(s) to %s\n", len(table), outPath)
	}
	return nil
}

func init() {
	ratesCmd.Flags().String("xs", "", "cross-section library")
	ratesCmd.Flags().String("spectrum", "", "neutron spectrum (YAML)")
	ratesCmd.Flags().String("isotopes", "", "isotope table (YAML)")
	ratesCmd.Flags().String("element", "", "impurity element, e.g. Co")
	ratesCmd.Flags().Float64("delta-impurity", 0, "impurity deviation in weight percent")
	ratesCmd.Flags().StringP("output", "o", "", "write the table to this file instead of stdout")

	rootCmd.AddCommand(ratesCmd)
}
