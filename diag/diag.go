// Package diag is the diagnostic side channel. Components that swallow
// an internal failure instead of returning it (a message that cannot
// be serialized, an error value that cannot be inspected) report it
// here so the failure itself is still logged somewhere.
package diag

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Reporter receives internal failures
type Reporter interface {
	ReportInternalError(context string, err error)
}

// Func adapts a function to a Reporter
type Func func(context string, err error)

// ReportInternalError implements Reporter
func (f Func) ReportInternalError(context string, err error) {
	f(context, err)
}

type nopReporter struct{}

func (nopReporter) ReportInternalError(string, error) {}

// Nop returns a Reporter that discards everything
func Nop() Reporter {
	return nopReporter{}
}

// ZapReporter writes internal failures to a zap logger
type ZapReporter struct {
	log *zap.Logger
}

// NewZapReporter creates a reporter on top of log
func NewZapReporter(log *zap.Logger) *ZapReporter {
	return &ZapReporter{log: log}
}

// ReportInternalError implements Reporter
func (r *ZapReporter) ReportInternalError(context string, err error) {
	r.log.Error("SYSLOG_ERROR", zap.String("context", context), zap.Error(err))
}

// Sync flushes the underlying logger
func (r *ZapReporter) Sync() error {
	return r.log.Sync()
}

var (
	defaultOnce     sync.Once
	defaultReporter *ZapReporter
)

// Default returns the process-wide reporter: JSON lines on stderr
func Default() Reporter {
	defaultOnce.Do(func() {
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapcore.DebugLevel)
		defaultReporter = NewZapReporter(zap.New(core, zap.AddStacktrace(zapcore.FatalLevel)))
	})
	return defaultReporter
}
