package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScalePortionLabel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		label string
		ratio float64
		want  string
	}{
		{"150g rice + 200g dal", 0.5, "75g rice + 100g dal"},
		{"2 rotis", 0.5, "1 rotis"},
		{"1 bowl", 1.5, "1.5 bowl"},
		{"2.5 cups oats", 2.0, "5 cups oats"},
		{"a handful of nuts", 0.5, "a handful of nuts"},
		{"", 0.5, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ScalePortionLabel(tc.label, tc.ratio), tc.label)
	}
}

func TestRoundToStep(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 300, roundToStep(298))
	assert.Equal(t, 300, roundToStep(275))
	assert.Equal(t, 250, roundToStep(274))
	assert.Equal(t, 0, roundToStep(24))
	assert.Equal(t, 50, roundToStep(25))
	assert.Equal(t, 500, roundToStep(500))
}
