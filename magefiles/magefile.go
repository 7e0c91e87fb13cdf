//go:build mage

// Package main contains Mage build targets for purity-engine developer tooling.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories a calc run expects.
var projectDirs = []string{
	"data/xs",
	"data/schedules",
	"output",
}

// Init creates the project directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "purity-engine"
	cmdPkg  = "./cmd/purity-engine"
)

// Build compiles the CLI binary into bin/, stamping the version from
// PURITY_ENGINE_VERSION when set.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version := os.Getenv("PURITY_ENGINE_VERSION")
	if version == "" {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Example runs calc and map on the bundled cobalt and niobium inputs.
func Example() error {
	mg.Deps(Init, Build)
	bin := filepath.Join(binDir, binName)

	common := []string{
		"--decay-data", "data/decay_co_nb.json",
		"--irrad-scenario", "SA2",
		"--decay-time", "1e6",
		"--dose-factors", "data/dose_factors.csv",
		"--workstations", "data/workstations.yaml",
		"--location", "Nb cell",
		"--workstation", "all",
		"--metrics-file", "output/purity.prom",
	}

	point := append([]string{"calc", "--rates", "data/rates_co.yaml",
		"--x1", "0", "--y1", "0", "--z1", "90"}, common...)
	if err := sh.RunV(bin, point...); err != nil {
		return err
	}

	line := append([]string{"calc",
		"--xs", "data/xs/co_nb_xs", "--isotopes", "data/isotopes.yaml",
		"--element", "Nb", "--delta-impurity", "0.1",
		"--spectrum", "data/spectrum_line.yaml",
		"--x1", "0", "--y1", "0", "--z1", "0",
		"--x2", "0", "--y2", "0", "--z2", "180"}, common...)
	if err := sh.RunV(bin, line...); err != nil {
		return err
	}
	if err := sh.RunV(bin, "map",
		"--xs", "data/xs/co_nb_xs", "--isotopes", "data/isotopes.yaml",
		"--element", "Co", "--delta-impurity", "0.05",
		"--spectrum", "data/spectrum_line.yaml"); err != nil {
		return err
	}
	return sh.RunV(bin, "results", "list")
}

// Stats prints project metrics: Go production and test LOC, and the number
// of data files.
func Stats() error {
	var prod, test, data int
	err := filepath.WalkDir(".", func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") || d.Name() == ".git" || d.Name() == "output" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(path, "data"+string(filepath.Separator)) {
			data++
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return err
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", test)
	fmt.Printf("Data files:                     %d\n", data)
	return nil
}

// countLines counts the non-blank lines of a file.
func countLines(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	for _, line := range bytes.Split(content, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n, nil
}
