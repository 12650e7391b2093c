package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	t.Run("PlainJSON", func(t *testing.T) {
		spec, err := parseResponse(`{"width":205,"aspect_ratio":55,"rim_diameter":16,"construction":"R","load_index":91,"speed_rating":"V","confidence":95}`)
		require.NoError(t, err)

		require.NotNil(t, spec.Width)
		assert.Equal(t, 205, *spec.Width)
		assert.Equal(t, 95, spec.Confidence)
	})

	t.Run("FencedJSON", func(t *testing.T) {
		spec, err := parseResponse("```json\n{\"width\":205,\"confidence\":80}\n```")
		require.NoError(t, err)
		require.NotNil(t, spec.Width)
		assert.Equal(t, 80, spec.Confidence)
	})

	t.Run("NullFields", func(t *testing.T) {
		spec, err := parseResponse(`{"width":null,"aspect_ratio":null,"rim_diameter":null,"confidence":10}`)
		require.NoError(t, err)
		assert.Nil(t, spec.Width)
		assert.Equal(t, 10, spec.Confidence)
	})

	t.Run("ConfidenceClamped", func(t *testing.T) {
		high, err := parseResponse(`{"confidence":150}`)
		require.NoError(t, err)
		assert.Equal(t, 100, high.Confidence)

		low, err := parseResponse(`{"confidence":-5}`)
		require.NoError(t, err)
		assert.Equal(t, 0, low.Confidence)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := parseResponse("I could not find a tire size.")
		assert.Error(t, err)
	})
}

func TestLookupCost(t *testing.T) {
	assert.Greater(t, lookupCost("gpt-4o-mini"), 0.0)
	// Unknown models fall back to a conservative default.
	assert.Equal(t, defaultCostPerCall, lookupCost("some-future-model"))
}
