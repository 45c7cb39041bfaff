package filehandler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/diag"
	"github.com/philipp01105/syslogconsole/handler"
)

// backupLayout names rotated files; nanoseconds keep rapid rotations apart.
const backupLayout = "2006-01-02T15-04-05.000000000"

// ErrFilenameRequired is returned by NewFileHandler when no path is configured.
var ErrFilenameRequired = errors.New("filehandler: filename is required")

// sizeTrackingWriter wraps an io.Writer and tracks total bytes written
type sizeTrackingWriter struct {
	w       io.Writer
	written int64
}

func (s *sizeTrackingWriter) Write(p []byte) (n int, err error) {
	n, err = s.w.Write(p)
	s.written += int64(n)
	return
}

func (s *sizeTrackingWriter) reset(w io.Writer) {
	s.w = w
	s.written = 0
}

// FileConfig holds configuration for file handler
type FileConfig struct {
	// Filename is the path to the fragment file
	Filename string
	// MaxSize is the maximum size in bytes before rotation (0 = no size rotation)
	MaxSize int64
	// MaxBackups is the maximum number of rotated files to retain (0 = keep all)
	MaxBackups int
	// RotateInterval is the interval for time-based rotation (0 = no interval rotation)
	RotateInterval time.Duration
	// Async enables asynchronous writes through handler.AsyncHandler
	Async bool
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int
	// OverflowPolicy defines per-severity overflow behavior (default: handler.DefaultSeverityPolicy)
	OverflowPolicy map[core.Severity]handler.OverflowPolicy
	// BlockTimeout is the timeout for blocking overflow policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout is the timeout for draining queue on Close (default: 5s)
	DrainTimeout time.Duration
	// Reporter receives async write failures (default: diag.Default())
	Reporter diag.Reporter
}

// FileHandler appends one fragment per line to a file, rotating it by
// size or interval.
type FileHandler struct {
	filename       string
	file           *os.File
	bufWriter      *bufio.Writer
	sizeWriter     *sizeTrackingWriter
	mu             sync.Mutex
	maxSize        int64
	maxBackups     int
	rotateInterval time.Duration
	currentSize    int64
	lastRotateTime time.Time
	now            func() time.Time
	stats          *handler.Stats
	closed         bool
}

// NewFileHandler opens (or creates) the configured file. When Async is
// set the handler is wrapped in a handler.AsyncHandler.
func NewFileHandler(cfg FileConfig) (handler.Handler, error) {
	h, err := newFileHandler(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.Async {
		return h, nil
	}
	return handler.NewAsyncHandler(h, handler.AsyncConfig{
		BufferSize:     cfg.BufferSize,
		OverflowPolicy: cfg.OverflowPolicy,
		BlockTimeout:   cfg.BlockTimeout,
		DrainTimeout:   cfg.DrainTimeout,
		Reporter:       cfg.Reporter,
	}), nil
}

func newFileHandler(cfg FileConfig) (*FileHandler, error) {
	if cfg.Filename == "" {
		return nil, ErrFilenameRequired
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		if closeErr := file.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, err
	}

	sw := &sizeTrackingWriter{w: file}
	return &FileHandler{
		filename:       cfg.Filename,
		file:           file,
		sizeWriter:     sw,
		bufWriter:      bufio.NewWriterSize(sw, 4096),
		maxSize:        cfg.MaxSize,
		maxBackups:     cfg.MaxBackups,
		rotateInterval: cfg.RotateInterval,
		currentSize:    info.Size(),
		lastRotateTime: time.Now(),
		now:            time.Now,
		stats:          handler.NewStats(),
	}, nil
}

// Emit appends the fragment followed by a newline. The severity is
// already encoded in the surrounding pipeline and is not written.
func (h *FileHandler) Emit(_ core.Severity, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return handler.ErrClosed
	}
	if err := h.rotateIfNeeded(); err != nil {
		h.stats.IncrementFailed()
		return err
	}

	n, err := h.bufWriter.WriteString(text)
	if err == nil {
		var m int
		m, err = h.bufWriter.Write([]byte{'\n'})
		n += m
	}
	h.currentSize += int64(n)
	if err != nil {
		h.stats.IncrementFailed()
		return err
	}
	h.stats.IncrementProcessed()
	return nil
}

// Flush writes buffered fragments to the file.
func (h *FileHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return handler.ErrClosed
	}
	return h.bufWriter.Flush()
}

// rotateIfNeeded checks and performs rotation if needed
func (h *FileHandler) rotateIfNeeded() error {
	needRotate := false

	if h.maxSize > 0 && h.currentSize >= h.maxSize {
		needRotate = true
	}
	if h.rotateInterval > 0 && h.now().Sub(h.lastRotateTime) >= h.rotateInterval {
		needRotate = true
	}

	if !needRotate {
		return nil
	}
	return h.rotate()
}

// rotate performs the actual file rotation
func (h *FileHandler) rotate() error {
	// Flush buffered writer, sync and close current file
	if err := h.bufWriter.Flush(); err != nil {
		return err
	}
	if err := h.file.Sync(); err != nil {
		return err
	}
	if err := h.file.Close(); err != nil {
		return err
	}

	rotatedName := fmt.Sprintf("%s.%s", h.filename, h.now().Format(backupLayout))
	if err := os.Rename(h.filename, rotatedName); err != nil {
		// If rename fails, try to reopen the original file
		file, openErr := os.OpenFile(h.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if openErr != nil {
			return fmt.Errorf("rotation failed: %v, reopen failed: %v", err, openErr)
		}
		h.file = file
		h.sizeWriter.reset(file)
		h.bufWriter.Reset(h.sizeWriter)
		return err
	}

	if h.maxBackups > 0 {
		h.cleanupOldBackups()
	}

	file, err := os.OpenFile(h.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	h.file = file
	h.sizeWriter.reset(file)
	h.bufWriter.Reset(h.sizeWriter)
	h.currentSize = 0
	h.lastRotateTime = h.now()
	return nil
}

// backups lists rotated files, oldest first. The timestamp suffix sorts
// lexically in time order.
func (h *FileHandler) backups() []string {
	dir := filepath.Dir(h.filename)
	base := filepath.Base(h.filename)

	matches, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return nil
	}

	var backups []string
	for _, match := range matches {
		suffix := strings.TrimPrefix(filepath.Base(match), base+".")
		if _, err := time.Parse(backupLayout, suffix); err == nil {
			backups = append(backups, match)
		}
	}
	sort.Strings(backups)
	return backups
}

// cleanupOldBackups removes old backup files based on MaxBackups
func (h *FileHandler) cleanupOldBackups() {
	backups := h.backups()
	if len(backups) <= h.maxBackups {
		return
	}
	for _, file := range backups[:len(backups)-h.maxBackups] {
		if err := os.Remove(file); err != nil {
			return
		}
	}
}

// Stats returns a snapshot of the current statistics
func (h *FileHandler) Stats() handler.Snapshot {
	return h.stats.GetSnapshot()
}

// Close flushes, syncs and closes the underlying file.
func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if err := h.bufWriter.Flush(); err != nil {
		h.file.Close()
		return err
	}
	if err := h.file.Sync(); err != nil {
		h.file.Close()
		return err
	}
	return h.file.Close()
}
