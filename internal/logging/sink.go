package logging

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap/zapcore"
)

const sinkFileMode os.FileMode = 0o644

// fileSink is a size-capped append-only file. It implements
// zapcore.WriteSyncer and never reports errors: a failed write is dropped.
type fileSink struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	file    *os.File
	size    int64
}

var _ zapcore.WriteSyncer = (*fileSink)(nil)

func newFileSink(path string, maxSize int64) *fileSink {
	return &fileSink{path: path, maxSize: maxSize}
}

// Write appends p, truncating the file first when it has reached the cap.
func (s *fileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil && !s.open() {
		return len(p), nil
	}

	if s.maxSize > 0 && s.size >= s.maxSize {
		s.truncate()
	}

	n, err := s.file.Write(p)
	s.size += int64(n)
	if err != nil {
		// Reopen on the next write.
		_ = s.file.Close()
		s.file = nil
	}
	return len(p), nil
}

// Sync flushes the file.
func (s *fileSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		_ = s.file.Sync()
	}
	return nil
}

// Close closes the file. A later write reopens it.
func (s *fileSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
}

// SetMaxSize changes the cap.
func (s *fileSink) SetMaxSize(n int64) {
	s.mu.Lock()
	s.maxSize = n
	s.mu.Unlock()
}

func (s *fileSink) open() bool {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return false
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, sinkFileMode)
	if err != nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return false
	}
	s.file = f
	s.size = info.Size()
	return true
}

func (s *fileSink) truncate() {
	if err := s.file.Truncate(0); err != nil {
		return
	}
	_, _ = s.file.Seek(0, 0)
	s.size = 0
}
