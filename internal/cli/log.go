package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI's logger. Lines carry a "15:04:05.00" timestamp
// and go to w, normally stderr so they never mix with exported documents.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.New(w)
	l.SetReportTimestamp(true)
	l.SetTimeFormat("15:04:05.00")
	l.SetLevel(level)
	return l
}

// levelFor maps --verbose to a log level.
func levelFor(verbose bool) log.Level {
	if verbose {
		return LogDebug
	}
	return LogInfo
}

// progress times a multi-step operation such as fetch-then-import.
// Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, last: now}
}

// step logs an intermediate milestone with the time since the previous one.
func (p *progress) step(msg string, keyvals ...any) {
	now := time.Now()
	p.logger.Debug(msg, append(keyvals, "took", now.Sub(p.last).Round(time.Millisecond))...)
	p.last = now
}

// done logs msg at debug level with the total elapsed time.
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Debug(msg, append(keyvals, "elapsed", p.elapsed())...)
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}
