package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	log := Console(&buf, false)
	log.Debug().Msg("hidden")
	log.Info().Str("method", "GET").Msg("sent")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "sent")
	assert.Contains(t, buf.String(), "method=")

	buf.Reset()
	log = Console(&buf, true)
	log.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestTUIDiscardsWithoutDebug(t *testing.T) {
	log, c, err := TUI(false)
	require.NoError(t, err)
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
	assert.NoError(t, c.Close())
}
