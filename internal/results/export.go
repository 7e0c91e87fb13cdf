// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/purity-engine/pkg/types"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Export writes the run matching id to w in the given format.
func (s *Store) Export(ctx context.Context, id, format string, w io.Writer) error {
	run, err := s.LoadRun(ctx, id)
	if err != nil {
		return err
	}
	return Encode(w, run, format)
}

// Encode writes v to w as YAML or JSON.
func Encode(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case FormatYAML, "yml", "":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
}

// Totals sums the activity records of run per nuclide.
func Totals(run types.Run) map[string]float64 {
	out := make(map[string]float64)
	for _, a := range run.Activities {
		out[a.Nuclide] += a.Activity
	}
	return out
}
