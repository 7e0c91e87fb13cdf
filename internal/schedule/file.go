// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schedule

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/purity-engine/pkg/types"
)

// File is the YAML form of a user schedule. Each pulse gives its length in
// either days or seconds.
type File struct {
	Pulses []FilePulse `yaml:"pulses"`
}

// FilePulse is one pulse of a YAML schedule file.
type FilePulse struct {
	Days     float64 `yaml:"days,omitempty"`
	Seconds  float64 `yaml:"seconds,omitempty"`
	Strength float64 `yaml:"strength"`
}

// LoadFile reads a user schedule. Files ending in .yaml or .yml are parsed
// as File; all others as two whitespace-separated columns: pulse length in
// days and relative flux. Blank lines and lines starting with # are skipped.
// The schedule is named after path.
func LoadFile(path string) (types.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Schedule{}, fmt.Errorf("reading schedule: %w", err)
	}

	var pulses []types.Pulse
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		pulses, err = parseYAML(data)
	default:
		pulses, err = parseColumns(data)
	}
	if err != nil {
		return types.Schedule{}, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if len(pulses) == 0 {
		return types.Schedule{}, fmt.Errorf("%w: %s: no pulses", ErrMalformed, path)
	}
	return types.Schedule{Name: path, Pulses: pulses}, nil
}

func parseColumns(data []byte) ([]types.Pulse, error) {
	var pulses []types.Pulse
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want 2 columns, got %d", lineNo, len(fields))
		}
		days, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: time: %w", lineNo, err)
		}
		strength, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: flux: %w", lineNo, err)
		}
		p := types.Pulse{Duration: days * daySeconds, Strength: strength}
		if err := checkPulse(p); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		pulses = append(pulses, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pulses, nil
}

func parseYAML(data []byte) ([]types.Pulse, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	pulses := make([]types.Pulse, 0, len(f.Pulses))
	for i, fp := range f.Pulses {
		if fp.Days != 0 && fp.Seconds != 0 {
			return nil, fmt.Errorf("pulse %d: both days and seconds given", i+1)
		}
		p := types.Pulse{Duration: fp.Seconds, Strength: fp.Strength}
		if fp.Days != 0 {
			p.Duration = fp.Days * daySeconds
		}
		if err := checkPulse(p); err != nil {
			return nil, fmt.Errorf("pulse %d: %w", i+1, err)
		}
		pulses = append(pulses, p)
	}
	return pulses, nil
}

func checkPulse(p types.Pulse) error {
	if p.Duration < 0 || math.IsNaN(p.Duration) || math.IsInf(p.Duration, 0) {
		return fmt.Errorf("invalid duration %g", p.Duration)
	}
	if p.Strength < 0 || math.IsNaN(p.Strength) || math.IsInf(p.Strength, 0) {
		return fmt.Errorf("invalid strength %g", p.Strength)
	}
	return nil
}
