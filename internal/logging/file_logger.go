package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
	queueSize       = 100
)

// FileLogger writes log lines to a file from a background goroutine.
// Every line carries the session id so interleaved runs can be told apart.
type FileLogger struct {
	logChan chan string
	file    *os.File
	session string
	waiter  sync.WaitGroup
	mu      sync.Mutex // guards file during Close
}

// NewFileLogger creates a logger appending to filePath, creating its directory.
func NewFileLogger(filePath string) (*FileLogger, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	logger := &FileLogger{
		logChan: make(chan string, queueSize),
		file:    f,
		session: uuid.NewString()[:8],
	}

	logger.waiter.Add(1)
	go logger.writer()

	return logger, nil
}

// DefaultPath returns <cacheDir>/codeguard/logs/codeguard-<timestamp>.log
func DefaultPath(cacheDir string, now time.Time) string {
	name := fmt.Sprintf("codeguard-%s.log", now.Format("20060102-150405"))
	return filepath.Join(cacheDir, "codeguard", "logs", name)
}

// LinkLatest points latest.log in the log directory at logPath.
// It is a no-op on Windows.
func LinkLatest(logPath string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	linkPath := filepath.Join(filepath.Dir(logPath), "latest.log")
	_ = os.Remove(linkPath)
	return os.Symlink(filepath.Base(logPath), linkPath)
}

func (l *FileLogger) writer() {
	defer l.waiter.Done()
	for msg := range l.logChan {
		l.mu.Lock()
		if l.file != nil {
			_, _ = l.file.WriteString(msg)
		}
		l.mu.Unlock()
	}
}

// Session returns the short id stamped on every line
func (l *FileLogger) Session() string {
	return l.session
}

// Log formats the message and queues it. When the queue is full the message is dropped.
func (l *FileLogger) Log(format string, args ...interface{}) {
	now := time.Now().Format(timestampLayout)
	msg := fmt.Sprintf("[%s] [%s] %s\n", now, l.session, fmt.Sprintf(format, args...))

	select {
	case l.logChan <- msg:
	default:
	}
}

// IsEnabled returns true for FileLogger.
func (l *FileLogger) IsEnabled() bool {
	return true
}

// Close drains the queue and closes the log file.
func (l *FileLogger) Close() error {
	close(l.logChan)
	l.waiter.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

var _ Logger = (*FileLogger)(nil)
