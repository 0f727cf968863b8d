package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/2beens/notesservice/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestGetLevel(t *testing.T) {
	for levelStr, expected := range map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"DEBUG":   logrus.DebugLevel,
		"error":   logrus.ErrorLevel,
		"fatal":   logrus.FatalLevel,
		"info":    logrus.InfoLevel,
		"trace":   logrus.TraceLevel,
		"warn":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		" info ":  logrus.InfoLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	} {
		assert.Equal(t, expected, GetLevel(levelStr), levelStr)
	}
}

func TestSetup_LogFile(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)

	logPath := filepath.Join(t.TempDir(), "service")
	Setup(LoggerSetupParams{
		LogFileName: logPath,
		LogLevel:    "debug",
	})

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.Debug("written to file")
	content, err := os.ReadFile(logPath + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(content), "written to file")
}

func TestSetup_JSONFormat(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	defer logrus.SetFormatter(&logrus.TextFormatter{})

	logPath := filepath.Join(t.TempDir(), "notes.log")
	Setup(LoggerSetupParams{
		LogFileName:   logPath,
		LogLevel:      "info",
		LogFormatJSON: true,
	})

	logrus.WithField("note_id", 2).Info("note fetched")
	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"note_id":2`)
	assert.Contains(t, string(content), `"msg":"note fetched"`)
}

func TestLogOutput(t *testing.T) {
	out, destination := logOutput(LoggerSetupParams{})
	assert.Equal(t, os.Stdout, out)
	assert.Equal(t, "stdout", destination)

	dir := t.TempDir()

	out, destination = logOutput(LoggerSetupParams{LogFileName: filepath.Join(dir, "service")})
	_, isRotated := out.(*lumberjack.Logger)
	assert.True(t, isRotated)
	assert.Equal(t, filepath.Join(dir, "service.log"), destination)

	out, destination = logOutput(LoggerSetupParams{LogFileName: dir + string(filepath.Separator)})
	assert.Equal(t, filepath.Join(dir, defaultLogFileName), out.(*lumberjack.Logger).Filename)
	assert.Equal(t, filepath.Join(dir, defaultLogFileName), destination)

	out, destination = logOutput(LoggerSetupParams{
		LogFileName: filepath.Join(dir, "both.log"),
		LogToStdout: true,
	})
	combined, ok := out.(*pkg.CombinedWriter)
	require.True(t, ok)
	assert.Len(t, combined.Writers, 2)
	assert.Equal(t, "stdout and "+filepath.Join(dir, "both.log"), destination)
}

func TestSentryLevel(t *testing.T) {
	assert.Equal(t, sentry.LevelFatal, sentryLevel(logrus.PanicLevel))
	assert.Equal(t, sentry.LevelFatal, sentryLevel(logrus.FatalLevel))
	assert.Equal(t, sentry.LevelError, sentryLevel(logrus.ErrorLevel))
	assert.Equal(t, sentry.LevelWarning, sentryLevel(logrus.WarnLevel))
	assert.Equal(t, sentry.LevelInfo, sentryLevel(logrus.InfoLevel))
	assert.Equal(t, sentry.LevelDebug, sentryLevel(logrus.TraceLevel))
}

func TestSentryHook_Levels(t *testing.T) {
	levels := []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel}
	hook := NewSentryHook(levels)
	assert.Equal(t, levels, hook.Levels())
	// no client bound to the hub, capture is a no-op
	assert.NoError(t, hook.Fire(&logrus.Entry{
		Level:   logrus.ErrorLevel,
		Message: "boom",
		Data:    logrus.Fields{"note_id": 3},
	}))
}
