package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		Name     string
		Level    string
		Expected zapcore.Level
	}{
		{"debug", "debug", zapcore.DebugLevel},
		{"upper case with spaces", "  INFO ", zapcore.InfoLevel},
		{"warn", "warn", zapcore.WarnLevel},
		{"error", "error", zapcore.ErrorLevel},
		{"fatal", "fatal", zapcore.FatalLevel},
		{"numeric", "-1", zapcore.DebugLevel},
	}

	for _, aTestCase := range testCases {
		t.Run(aTestCase.Name, func(t *testing.T) {
			level, err := ParseLevel(aTestCase.Level)
			require.NoError(t, err)
			assert.Equal(t, aTestCase.Expected, level)
		})
	}
}

func TestParseLevel_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseLevel("bogus")
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Parallel()

	logger, err := New("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = New("bogus")
	require.Error(t, err)
}
