package obs

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerDefaultsToStderr(t *testing.T) {
	log := NewLogger(nil)
	require.NotNil(t, log)
}

func TestNewLoggerWritesToGivenFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log-*.json")
	require.NoError(t, err)
	defer f.Close()

	log := NewLogger(f)
	log.Info().Str("component", "test").Log("hello")

	var buf bytes.Buffer
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	_, err = buf.ReadFrom(f)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "hello")
}

func TestComponentAnnotatesChildLogger(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log-*.json")
	require.NoError(t, err)
	defer f.Close()

	log := NewLogger(f)
	child := Component(log, "cucp")
	require.NotNil(t, child)
	child.Info().Log("component logged")

	var buf bytes.Buffer
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	_, err = buf.ReadFrom(f)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "cucp")
}
