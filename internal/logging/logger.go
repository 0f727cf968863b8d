package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/2beens/notesservice/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMB   = 10
	logFileMaxBackups  = 5
	logFileMaxAgeDays  = 30
	defaultLogFileName = "notes-service.log"
)

type LoggerSetupParams struct {
	LogFileName      string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// Setup configures the package level logrus logger used across the service.
func Setup(params LoggerSetupParams) {
	logrus.SetLevel(GetLevel(params.LogLevel))
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out, destination := logOutput(params)
	logrus.SetOutput(out)
	logrus.Debugf("notes service logs go to %s", destination)

	if params.SentryEnabled {
		setupSentry(params)
	}
}

// logOutput picks stdout, a rotated log file, or both. Without a file name
// stdout is used even if LogToStdout is off, logs are never dropped.
func logOutput(params LoggerSetupParams) (io.Writer, string) {
	if params.LogFileName == "" {
		return os.Stdout, "stdout"
	}

	fileName := params.LogFileName
	if filepath.Ext(fileName) != ".log" {
		fileName += ".log"
	}
	if strings.HasSuffix(fileName, string(filepath.Separator)+".log") {
		fileName = strings.TrimSuffix(fileName, ".log") + defaultLogFileName
	}

	rotated := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
		Compress:   true,
	}

	if !params.LogToStdout {
		return rotated, fileName
	}
	return pkg.NewCombinedWriter(os.Stdout, rotated), "stdout and " + fileName
}

func setupSentry(params LoggerSetupParams) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              params.SentryDSN,
		Environment:      params.Environment,
		ServerName:       params.SentryServerName,
		TracesSampleRate: 1.0,
	}); err != nil {
		logrus.Errorf("sentry init: %s", err)
		return
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Info("sentry error reporting enabled")
}

// GetLevel parses a level name case insensitively, unknown names mean info.
func GetLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
