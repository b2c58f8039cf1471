// Package logging builds the process logger from the log section of the
// configuration. Log files can be written zstd-compressed through the
// "zstd://" sink registered here.
package logging

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/robottwo/suggester/internal/config"
)

const compressedScheme = "zstd"

func init() {
	if err := zap.RegisterSink(compressedScheme, newCompressedSink); err != nil {
		panic(errors.Wrap(err, "failed to register zstd sink"))
	}
}

// New builds a production logger writing to cfg.File. An empty file logs to
// stderr; a "zstd://" prefix compresses the file. The returned close func
// flushes the logger and, for a compressed file, finishes the zstd frame so
// the next session can append to it.
func New(cfg config.LogConfig) (*zap.Logger, func(), error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
	}

	output, err := outputPath(cfg.File)
	if err != nil {
		return nil, nil, err
	}

	sink, closeSink, err := zap.Open(output)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open log output %s", output)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), sink, level)
	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)))

	return logger, func() {
		_ = logger.Sync()
		closeSink()
	}, nil
}

// outputPath turns a configured log file into a zap output path, creating
// the parent directory on the way.
func outputPath(file string) (string, error) {
	if file == "" {
		return "stderr", nil
	}

	compressed := false
	if rest, ok := strings.CutPrefix(file, compressedScheme+"://"); ok {
		compressed = true
		file = rest
	}

	path, err := filepath.Abs(config.ExpandHome(file))
	if err != nil {
		return "", errors.Wrapf(err, "invalid log file %q", file)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.Wrap(err, "failed to create log directory")
	}

	if compressed {
		return compressedScheme + "://" + filepath.ToSlash(path), nil
	}
	return path, nil
}

// newCompressedSink opens the log file named by the URL path. Each session
// appends a new zstd frame to an existing compressed log; a file holding
// anything else is truncated.
func newCompressedSink(u *url.URL) (zap.Sink, error) {
	file, err := os.OpenFile(u.Path, openFlags(u.Path), 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log %s", u.Path)
	}

	encoder, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "failed to create zstd encoder")
	}
	return &compressedSink{file: file, encoder: encoder}, nil
}

func openFlags(path string) int {
	flags := os.O_CREATE | os.O_WRONLY
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		if isValidZstdFile(path) {
			return flags | os.O_APPEND
		}
		return flags | os.O_TRUNC
	}
	return flags
}

var zstdMagic = [4]byte{0x28, 0xB5, 0x2F, 0xFD}

// isValidZstdFile reports whether the file starts with the zstd frame magic.
func isValidZstdFile(filePath string) bool {
	file, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer func() {
		_ = file.Close()
	}()

	var magic [4]byte
	if _, err := io.ReadFull(file, magic[:]); err != nil {
		return false
	}
	return magic == zstdMagic
}

// compressedSink is a zap.Sink writing through a zstd encoder.
type compressedSink struct {
	file    *os.File
	encoder *zstd.Encoder
}

// Write reports len(p) on success, regardless of the compressed size.
func (s *compressedSink) Write(p []byte) (int, error) {
	if _, err := s.encoder.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Sync flushes the encoder and syncs the file to disk.
func (s *compressedSink) Sync() error {
	if err := s.encoder.Flush(); err != nil {
		return err
	}
	return s.file.Sync()
}

// Close finishes the frame and closes the file, reporting the first failure.
func (s *compressedSink) Close() error {
	encErr := s.encoder.Close()
	if fileErr := s.file.Close(); encErr == nil {
		return fileErr
	}
	return encErr
}
