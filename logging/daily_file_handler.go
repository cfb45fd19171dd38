package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyFileHandler writes every record to a per-day log file and
// mirrors it to stdout through the default text handler. Derived
// handlers from WithAttrs/WithGroup share the same underlying file.
type DailyFileHandler struct {
	out            *logOutput
	defaultHandler slog.Handler
}

type logOutput struct {
	currentFile     *os.File
	currentFileName string
	logDir          string
	mutex           sync.Mutex
}

func NewDailyFileHandler(logDir string, opts *slog.HandlerOptions) (*DailyFileHandler, error) {
	// Create logs directory if it doesn't exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	h := &DailyFileHandler{
		out:            &logOutput{logDir: logDir},
		defaultHandler: slog.NewTextHandler(os.Stdout, opts),
	}

	if err := h.out.rotateIfNeeded(); err != nil {
		return nil, err
	}

	return h, nil
}

func (o *logOutput) rotateIfNeeded() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	fileName := fmt.Sprintf("ancrage-%s.log", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(o.logDir, fileName)

	if fileName == o.currentFileName {
		return nil
	}

	// Close existing file if open
	if o.currentFile != nil {
		o.currentFile.Close()
	}

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	o.currentFile = f
	o.currentFileName = fileName
	return nil
}

func (o *logOutput) write(line string) error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	_, err := o.currentFile.WriteString(line)
	return err
}

func (h *DailyFileHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.out.rotateIfNeeded(); err != nil {
		// If rotation fails, at least log to stdout
		return h.defaultHandler.Handle(ctx, r)
	}

	timeStr := r.Time.Format("2006/01/02 15:04:05.000")
	level := r.Level.String()

	var attrs string
	r.Attrs(func(a slog.Attr) bool {
		attrs += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})

	logLine := fmt.Sprintf("[%s] %-5s %s%s\n", timeStr, level, r.Message, attrs)

	err := h.out.write(logLine)

	// Also log to default handler (stdout)
	if err2 := h.defaultHandler.Handle(ctx, r); err2 != nil {
		if err == nil {
			err = err2
		}
	}

	return err
}

func (h *DailyFileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &DailyFileHandler{
		out:            h.out,
		defaultHandler: h.defaultHandler.WithAttrs(attrs),
	}
}

func (h *DailyFileHandler) WithGroup(name string) slog.Handler {
	return &DailyFileHandler{
		out:            h.out,
		defaultHandler: h.defaultHandler.WithGroup(name),
	}
}

func (h *DailyFileHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.defaultHandler.Enabled(ctx, level)
}
