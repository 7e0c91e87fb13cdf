// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nuclide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLong(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"co59", "Co059"},
		{"Co60m", "Co060m"},
		{"CO60M", "Co060m"},
		{"ta181", "Ta181"},
		{"TA182n", "Ta182n"},
		{"h3", "H003"},
		{"Nb094", "Nb094"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Long(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"co59", "Co59"},
		{"co59m", "Co59m"},
		{"co59n", "Co59n"},
		{"co059", "Co59"},
		{"Co060m", "Co60m"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Short(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsInvalidNames(t *testing.T) {
	for _, name := range []string{"", "60co", "co", "co-60", "co 60"} {
		_, err := Parse(name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestElement(t *testing.T) {
	el, err := Element("nb093m")
	require.NoError(t, err)
	assert.Equal(t, "Nb", el)
}
