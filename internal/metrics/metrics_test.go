// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/purity-engine/internal/activity"
	"github.com/pdiddy/purity-engine/internal/chain"
)

// The recorder plugs into both observer hooks.
var (
	_ chain.Observer        = (*Recorder)(nil)
	_ activity.UnitObserver = (*Recorder)(nil)
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.ChainSolved()
	r.ChainSolved()
	r.PulseSolved()
	r.DegenerateChain(2)
	r.UnitDone(5*time.Millisecond, nil)
	r.UnitDone(time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.chains))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pulses))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.degenerate))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.units.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.units.WithLabelValues("failed")))
	n, err := testutil.GatherAndCount(r.registry)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.PulseSolved()
	path := filepath.Join(t.TempDir(), "purity.prom")

	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "purity_engine_pulses_solved_total 1")
	assert.Contains(t, string(data), "# TYPE purity_engine_unit_duration_seconds histogram")
}
