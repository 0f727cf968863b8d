package pkg

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(cw *CombinedWriter) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cw)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger
}

func TestCombinedWriter_StdoutAndLogFile(t *testing.T) {
	stdout := &bytes.Buffer{}
	logFile, err := os.Create(filepath.Join(t.TempDir(), "notes-service.log"))
	require.NoError(t, err)
	defer logFile.Close()

	cw := NewCombinedWriter(stdout, logFile)
	require.Len(t, cw.Writers, 2)

	logger := newTestLogger(cw)
	logger.WithField("note_id", 4).Info("new note added")
	logger.Info("---")

	fileContent, err := os.ReadFile(logFile.Name())
	require.NoError(t, err)
	assert.Equal(t, stdout.String(), string(fileContent))
	assert.Contains(t, stdout.String(), `msg="new note added" note_id=4`)
	assert.Contains(t, stdout.String(), `msg=---`)
}

func TestCombinedWriter_Write_CountsAllWriters(t *testing.T) {
	first, second := &bytes.Buffer{}, &bytes.Buffer{}
	cw := NewCombinedWriter(first, second)

	line := []byte("GET /api/notes/2\n")
	n, err := cw.Write(line)
	require.NoError(t, err)
	assert.Equal(t, 2*len(line), n)
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestCombinedWriter_ClosedLogFile(t *testing.T) {
	stdout := &bytes.Buffer{}
	logFile, err := os.Create(filepath.Join(t.TempDir(), "rotated.log"))
	require.NoError(t, err)
	require.NoError(t, logFile.Close())

	cw := NewCombinedWriter(logFile, stdout)
	line := []byte("DELETE /api/notes/999\n")
	n, err := cw.Write(line)

	// stdout still gets the line, the file error is reported
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.Equal(t, len(line), n)
	assert.Equal(t, string(line), stdout.String())
}

func TestNewCombinedWriter_CopiesWriters(t *testing.T) {
	writers := []*bytes.Buffer{{}, {}}
	cw := NewCombinedWriter(writers[0], writers[1])
	cw.Writers[0] = &bytes.Buffer{}

	_, err := cw.Write([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 0, writers[0].Len())
	assert.Equal(t, 1, writers[1].Len())
}
