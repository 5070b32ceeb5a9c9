package goldminer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/plus3/goldminer/goldminer"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := goldminer.NewLogger("warn", format)
		require.NoError(t, err, format)
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	}

	_, err := goldminer.NewLogger("loud", "json")
	assert.Error(t, err)

	_, err = goldminer.NewLogger("info", "xml")
	assert.Error(t, err)
}

func TestStateHashTracksScore(t *testing.T) {
	sim, _ := newSim(t, testConfig(), nil)
	before := sim.Hash()
	assert.Equal(t, before, goldminer.StateHash(sim.Storage()))

	setScore(t, sim.Storage(), 1, 10)
	assert.NotEqual(t, before, sim.Hash())
}
