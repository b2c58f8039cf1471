package logging

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robottwo/suggester/internal/config"
)

func TestIsValidZstdFile(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		expected bool
	}{
		{"valid magic number", []byte{0x28, 0xB5, 0x2F, 0xFD, 0x00}, true},
		{"plain text", []byte("hello world"), false},
		{"too short", []byte{0x28, 0xB5}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "log")
			require.NoError(t, os.WriteFile(path, tt.content, 0644))
			assert.Equal(t, tt.expected, isValidZstdFile(path))
		})
	}

	assert.False(t, isValidZstdFile(filepath.Join(t.TempDir(), "missing")))
}

func readCompressed(t *testing.T, path string) string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	decoder, err := zstd.NewReader(file)
	require.NoError(t, err)
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	require.NoError(t, err)
	return string(data)
}

func writeThroughSink(t *testing.T, path, line string) {
	t.Helper()
	sink, err := newCompressedSink(&url.URL{Scheme: compressedScheme, Path: path})
	require.NoError(t, err)
	_, err = sink.Write([]byte(line))
	require.NoError(t, err)
	require.NoError(t, sink.Sync())
	require.NoError(t, sink.Close())
}

func TestCompressedSink_AppendsFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log.zst")

	writeThroughSink(t, path, "first\n")
	writeThroughSink(t, path, "second\n")

	assert.Equal(t, "first\nsecond\n", readCompressed(t, path))
}

func TestCompressedSink_TruncatesPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("not compressed"), 0644))

	writeThroughSink(t, path, "fresh\n")

	assert.Equal(t, "fresh\n", readCompressed(t, path))
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()

	out, err := outputPath("")
	require.NoError(t, err)
	assert.Equal(t, "stderr", out)

	plain := filepath.Join(dir, "nested", "app.log")
	out, err = outputPath(plain)
	require.NoError(t, err)
	assert.Equal(t, plain, out)
	assert.DirExists(t, filepath.Dir(plain))

	compressed := filepath.Join(dir, "zst", "app.log.zst")
	out, err = outputPath("zstd://" + compressed)
	require.NoError(t, err)
	assert.Equal(t, "zstd://"+filepath.ToSlash(compressed), out)
	assert.DirExists(t, filepath.Dir(compressed))
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	_, _, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)

	path := filepath.Join(dir, "plain.log")
	logger, closeLog, err := New(config.LogConfig{Level: "info", File: path})
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("suggester started")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "suggester started")
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_Compressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log.zst")

	for _, entry := range []string{"first session", "second session"} {
		logger, closeLog, err := New(config.LogConfig{Level: "debug", File: "zstd://" + path})
		require.NoError(t, err)
		logger.Debug(entry)
		closeLog()
	}

	logged := readCompressed(t, path)
	assert.True(t, strings.Contains(logged, "first session"))
	assert.True(t, strings.Contains(logged, "second session"))
}
