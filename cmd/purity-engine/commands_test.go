// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/purity-engine/pkg/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "purity-engine dev\n", out)
}

func TestScheduleCommands(t *testing.T) {
	out, err := execute(t, "schedule", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "DT1")
	assert.Contains(t, out, "SA2")

	out, err = execute(t, "schedule", "show", "DT1", "--format", "yaml")
	require.NoError(t, err)
	var s types.Schedule
	require.NoError(t, yaml.Unmarshal([]byte(out), &s))
	assert.Equal(t, "DT1", s.Name)
	assert.Len(t, s.Pulses, 6)

	_, err = execute(t, "schedule", "show", "no-such-scenario")
	assert.Error(t, err)
}

func TestResultsCommandsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "results", "list", "--results-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found.")

	_, err = execute(t, "results", "show", "abc", "--results-dir", dir)
	assert.Error(t, err)
}
