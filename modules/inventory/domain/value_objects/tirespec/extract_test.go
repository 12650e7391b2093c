package tirespec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/value_objects/tirespec"
)

func TestNormalize(t *testing.T) {
	t.Run("StripsAccentsAndBoilerplate", func(t *testing.T) {
		assert.Equal(t, "205/55R16 MICHELIN", tirespec.Normalize("Neumático nuevo 205/55R16 Michelin"))
	})

	t.Run("CollapsesWhitespace", func(t *testing.T) {
		assert.Equal(t, "205/55R16 91V", tirespec.Normalize("  205/55R16\t\t91v "))
	})

	t.Run("BoilerplateOnly", func(t *testing.T) {
		assert.Equal(t, "", tirespec.Normalize("Neumático nuevo"))
	})
}

func TestExtract(t *testing.T) {
	t.Run("FullMatch", func(t *testing.T) {
		spec := tirespec.Extract("NEUMATICO 205/55R16 91V MICHELIN PRIMACY")

		require.NotNil(t, spec.Width)
		require.NotNil(t, spec.AspectRatio)
		require.NotNil(t, spec.RimDiameter)
		require.NotNil(t, spec.Construction)
		require.NotNil(t, spec.LoadIndex)
		require.NotNil(t, spec.SpeedRating)

		assert.Equal(t, 205, *spec.Width)
		assert.Equal(t, 55, *spec.AspectRatio)
		assert.Equal(t, 16, *spec.RimDiameter)
		assert.Equal(t, "R", *spec.Construction)
		assert.Equal(t, 91, *spec.LoadIndex)
		assert.Equal(t, "V", *spec.SpeedRating)
		assert.Equal(t, tirespec.MethodRegex, spec.Method)
		assert.Equal(t, 100, spec.Confidence)
	})

	t.Run("SpacedSeparators", func(t *testing.T) {
		spec := tirespec.Extract("205/55 R 16")

		require.NotNil(t, spec.Width)
		require.NotNil(t, spec.RimDiameter)
		assert.Equal(t, 205, *spec.Width)
		assert.Equal(t, 16, *spec.RimDiameter)
		// Non-canonical spacing scores lower but stays above the AI routing
		// threshold.
		assert.Equal(t, 75, spec.Confidence)
	})

	t.Run("PlainSizeWithoutConstruction", func(t *testing.T) {
		spec := tirespec.Extract("205/55-16")

		require.NotNil(t, spec.Width)
		require.NotNil(t, spec.AspectRatio)
		require.NotNil(t, spec.RimDiameter)
		assert.Nil(t, spec.Construction)
		assert.Equal(t, 65, spec.Confidence)
	})

	t.Run("WidthRimOnlyScoresBelowRoutingThreshold", func(t *testing.T) {
		spec := tirespec.Extract("650R16 COMERCIAL")

		require.NotNil(t, spec.Width)
		require.NotNil(t, spec.RimDiameter)
		assert.Equal(t, 650, *spec.Width)
		assert.Equal(t, 16, *spec.RimDiameter)
		assert.Nil(t, spec.AspectRatio)
		assert.Equal(t, 60, spec.Confidence)
	})

	t.Run("AmbiguousSizesKeepLeftmostWithPenalty", func(t *testing.T) {
		spec := tirespec.Extract("205/55R16 185/65R15")

		require.NotNil(t, spec.Width)
		assert.Equal(t, 205, *spec.Width)
		assert.Equal(t, 70, spec.Confidence)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		spec := tirespec.Extract("")

		assert.Nil(t, spec.Width)
		assert.Nil(t, spec.RimDiameter)
		assert.Equal(t, 0, spec.Confidence)
		assert.Equal(t, tirespec.MethodRegex, spec.Method)
	})

	t.Run("NoSizeYieldsEmptySpec", func(t *testing.T) {
		spec := tirespec.Extract("CAMARA DE AIRE MOTO")

		assert.Equal(t, 0, spec.FieldCount())
		assert.Equal(t, 0, spec.Confidence)
	})

	t.Run("LoadIndexOutOfRangeIgnored", func(t *testing.T) {
		spec := tirespec.Extract("205/55R16 20A")

		assert.Nil(t, spec.LoadIndex)
		assert.Nil(t, spec.SpeedRating)
	})

	t.Run("ConfidenceAlwaysInRange", func(t *testing.T) {
		inputs := []string{
			"", "205/55R16 91V", "650R16", "garbage", "205/55R16 185/65R15 175/70R13",
			"NEUMATICO CUBIERTA LLANTA", "999/999R99",
		}
		for _, in := range inputs {
			spec := tirespec.Extract(in)
			assert.GreaterOrEqual(t, spec.Confidence, 0, "input %q", in)
			assert.LessOrEqual(t, spec.Confidence, 100, "input %q", in)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		first := tirespec.Extract("NEUMATICO 205/55R16 91V")
		second := tirespec.Extract("NEUMATICO 205/55R16 91V")
		assert.Equal(t, first, second)
	})
}
