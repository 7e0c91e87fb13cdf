// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/purity-engine/internal/activity"
	"github.com/pdiddy/purity-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.ResultsConfig{ResultsDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string, created time.Time) types.Run {
	end := types.Point{X: 10}
	return types.Run{
		RunSummary: types.RunSummary{
			ID:        id,
			CreatedAt: created,
			Scenario:  "DT1",
			DecayTime: 1e6,
			Element:   "Co",
			Dir:       "output/purity_x",
		},
		Source: types.Source{End: &end},
		Config: types.RunConfig{Element: "Co", DeltaImpurity: 0.05},
		Activities: Records([]activity.Unit{
			{Parent: "Co059", Sample: 0, Activities: map[string]float64{"Co060m": 0, "Co060": 2.5e8}},
			{Parent: "Co059", Sample: 1, Activities: map[string]float64{"Co060": 1.2e8}},
		}),
		SampleDoses: []float64{92.5, 44.4},
		Workstations: []types.WorkstationDose{
			{Workstation: "1", Dose: 0.25, At: types.Point{X: 100, Y: 0, Z: 90}},
		},
	}
}

func TestRecords(t *testing.T) {
	got := Records([]activity.Unit{
		{Parent: "Nb093", Sample: 0, Activities: map[string]float64{"Nb094": 1, "Nb093m": 2}},
	})
	assert.Equal(t, []types.ActivityRecord{
		{Nuclide: "Nb093m", Parent: "Nb093", Sample: 0, Activity: 2},
		{Nuclide: "Nb094", Parent: "Nb093", Sample: 0, Activity: 1},
	}, got)
}

func TestSaveAndLoadRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := sampleRun("0f3a9c12-aaaa-bbbb-cccc-000000000001", created)

	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.LoadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.RunSummary, got.RunSummary)
	assert.Equal(t, run.Source, got.Source)
	assert.Equal(t, run.Config, got.Config)
	assert.Equal(t, run.Activities, got.Activities)
	assert.Equal(t, run.SampleDoses, got.SampleDoses)
	assert.Equal(t, run.Workstations, got.Workstations)

	// Prefix lookup.
	got, err = s.LoadRun(ctx, "0f3a9c12")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}

func TestSaveRunReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	run := sampleRun("run-1", time.Now())
	require.NoError(t, s.SaveRun(ctx, run))

	run.Activities = run.Activities[:1]
	run.SampleDoses = nil
	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got.Activities, 1)
	assert.Empty(t, got.SampleDoses)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSaveRunEncodingErrors(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run := sampleRun("bad-source", time.Now())
	run.Source.Start.X = math.NaN()
	err := s.SaveRun(ctx, run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding run source")

	run = sampleRun("bad-config", time.Now())
	run.Config.DeltaImpurity = math.Inf(1)
	err = s.SaveRun(ctx, run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding run config")

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, sampleRun("old", base)))
	require.NoError(t, s.SaveRun(ctx, sampleRun("new", base.Add(time.Hour))))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)
}

func TestLoadRunErrors(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, sampleRun("abc-1", time.Now())))
	require.NoError(t, s.SaveRun(ctx, sampleRun("abc-2", time.Now())))

	_, err := s.LoadRun(ctx, "zzz")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = s.LoadRun(ctx, "abc")
	assert.ErrorContains(t, err, "matches 2 runs")

	_, err = s.LoadRun(ctx, "")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	assert.Error(t, s.SaveRun(ctx, types.Run{}))
}

func TestDeleteRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, sampleRun("gone", time.Now())))

	require.NoError(t, s.DeleteRun(ctx, "gone"))
	_, err := s.LoadRun(ctx, "gone")
	assert.True(t, errors.Is(err, ErrRunNotFound))
	assert.True(t, errors.Is(s.DeleteRun(ctx, "gone"), ErrRunNotFound))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM activities`).Scan(&n))
	assert.Zero(t, n)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	run := sampleRun("export-1", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveRun(ctx, run))

	var jsonBuf bytes.Buffer
	require.NoError(t, s.Export(ctx, "export-1", FormatJSON, &jsonBuf))
	var fromJSON types.Run
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	assert.Equal(t, "export-1", fromJSON.ID)
	assert.Len(t, fromJSON.Activities, 3)

	var yamlBuf bytes.Buffer
	require.NoError(t, s.Export(ctx, "export-1", FormatYAML, &yamlBuf))
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Equal(t, "export-1", fromYAML["id"])
	assert.Equal(t, "DT1", fromYAML["scenario"])

	assert.Error(t, s.Export(ctx, "export-1", "xml", &bytes.Buffer{}))
}

func TestTotals(t *testing.T) {
	run := sampleRun("t", time.Now())
	got := Totals(run)
	assert.InDelta(t, 3.7e8, got["Co060"], 1)
	assert.Zero(t, got["Co060m"])
}
