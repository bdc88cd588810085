package logging_test

import (
	"path/filepath"
	"testing"

	"github.com/slhowardESR/sliderule/logging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewStderrLogger(t *testing.T) {
	logger, err := logging.New(logging.Config{Level: zapcore.InfoLevel})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("hello")
}

func TestNewFileLogger(t *testing.T) {
	dir := t.TempDir()
	logger, err := logging.New(logging.Config{Path: filepath.Join(dir, "reader.log"), Level: zapcore.DebugLevel})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Debug("hello")
}
