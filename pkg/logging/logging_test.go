package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	originalOutput := logger.Out
	originalLevel := logger.GetLevel()
	logger.SetOutput(&buf)
	t.Cleanup(func() {
		logger.SetOutput(originalOutput)
		logger.SetLevel(originalLevel)
		logger.SetFormatter(textFormatter())
	})
	return &buf
}

func TestSetLevel(t *testing.T) {
	buf := captureOutput(t)

	SetLevel(InfoLevel)
	Debugf("Debug message")
	assert.Empty(t, buf.String())

	buf.Reset()
	Infof("Info message")
	assert.Contains(t, buf.String(), "Info message")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DebugLevel,
		"INFO":  InfoLevel,
		"":      InfoLevel,
		"warn":  WarnLevel,
		"error": ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestWithFields(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(DebugLevel)

	InfoWithFields(logrus.Fields{"location": "/status", "status": 200}, "Message with fields")

	out := buf.String()
	assert.Contains(t, out, "Message with fields")
	assert.Contains(t, out, "location=/status")
	assert.Contains(t, out, "status=200")
}

func TestCritf(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(InfoLevel)

	fields := logrus.Fields{"interface": "eth0"}
	Critf(fields, "enumeration failed: %d", 24)

	out := buf.String()
	assert.Contains(t, out, "level=error")
	assert.Contains(t, out, "severity=crit")
	assert.Contains(t, out, "interface=eth0")
	assert.Contains(t, out, "enumeration failed: 24")
	assert.NotContains(t, fields, "severity", "caller fields must not be mutated")
}

func TestSetFormat(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(InfoLevel)

	require.NoError(t, SetFormat("json"))
	Infof("JSON formatted message")
	assert.Contains(t, buf.String(), "\"level\":\"info\"")
	assert.Contains(t, buf.String(), "\"msg\":\"JSON formatted message\"")

	assert.Error(t, SetFormat("xml"))
}

func TestFileLogging(t *testing.T) {
	tempDir := t.TempDir()
	originalOutput := logger.Out
	defer logger.SetOutput(originalOutput)
	SetLevel(InfoLevel)

	require.NoError(t, EnableFileLogging(tempDir, "systatd.log", 10, 3, 7))
	Infof("File log test message")

	content, err := os.ReadFile(filepath.Join(tempDir, "systatd.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "File log test message")
}
