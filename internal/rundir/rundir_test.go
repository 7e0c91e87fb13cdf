// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rundir

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/purity-engine/pkg/types"
)

func TestCreate(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2026, 5, 4, 13, 2, 1, 0, time.UTC)

	d, err := Create(root, now)
	require.NoError(t, err)
	_, err = uuid.Parse(d.ID)
	require.NoError(t, err)

	name := filepath.Base(d.Path)
	assert.Regexp(t, regexp.MustCompile(`^purity_20260504_130201_[0-9a-f]{8}$`), name)
	assert.Equal(t, d.ID[:8], name[len(name)-8:])

	info, err := os.Stat(d.Path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Two runs in the same second get distinct directories.
	d2, err := Create(root, now)
	require.NoError(t, err)
	assert.NotEqual(t, d.Path, d2.Path)
}

func TestMetadataRoundTrip(t *testing.T) {
	d, err := Create(t.TempDir(), time.Now())
	require.NoError(t, err)

	end := types.Point{X: 1, Y: 2, Z: 3}
	cfg := types.RunConfig{
		Element:       "Nb",
		DeltaImpurity: 0.1,
		DecayDataPath: "data/decay_co_nb.json",
		Sources:       []types.Source{{Start: types.Point{}, End: &end}},
		Schedule:      types.ScheduleConfig{Scenario: "SA2", DecayTime: 1e6},
		Solver:        types.DefaultSolverConfig(),
		Results:       types.ResultsConfig{OutputRoot: "output", ResultsDir: "output"},
	}
	require.NoError(t, d.WriteMetadata(cfg))

	id, got, err := ReadMetadata(d.Path)
	require.NoError(t, err)
	assert.Equal(t, d.ID, id)
	assert.Equal(t, cfg, got)
	assert.Equal(t, filepath.Join(d.Path, "metadata.yaml"), d.File("metadata.yaml"))
}

func TestReadMetadataMissing(t *testing.T) {
	_, _, err := ReadMetadata(t.TempDir())
	assert.Error(t, err)
}
