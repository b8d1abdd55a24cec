package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevelRoundTrip(t *testing.T) {
	for _, level := range []int{TraceLevel, DebugLevel, InfoLevel, WarnLevel, ErrorLevel, FatalLevel} {
		parsed, err := ParseLevel(LogLevelToString(level))
		require.Nil(t, err)
		require.Equal(t, level, parsed)
	}
	parsed, err := ParseLevel("warning")
	require.Nil(t, err)
	require.Equal(t, WarnLevel, parsed)
	_, err = ParseLevel("loud")
	require.NotNil(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(DebugLevel, JSONFormat)
	require.Nil(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger(WarnLevel, ConsoleFormat)
	require.Nil(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.ErrorLevel))

	_, err = NewLogger(InfoLevel, "xml")
	require.NotNil(t, err)
}
