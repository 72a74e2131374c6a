// Package crash turns fatal memory faults into a symbolized report on the
// error stream followed by process exit.
package crash

import (
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/domain/ports"
)

const (
	// MaxFrames is the most frames a report contains.
	MaxFrames = 64

	defaultExitCode = 1
	reportBufSize   = 16 << 10
)

// Reporter writes crash reports and terminates the process. It keeps no
// state between faults apart from its one-time signal registration.
type Reporter struct {
	out       io.Writer
	exit      func(int)
	signals   chan os.Signal
	buf       []byte
	maxFrames int
	exitCode  int
	mu        sync.Mutex
	once      sync.Once
	installed atomic.Bool
}

var _ ports.FaultSink = (*Reporter)(nil)

type reporterConfig struct {
	out       io.Writer
	exit      func(int)
	maxFrames int
	exitCode  int
}

func defaultReporterConfig() reporterConfig {
	return reporterConfig{
		out:       os.Stderr,
		exit:      os.Exit,
		maxFrames: MaxFrames,
		exitCode:  defaultExitCode,
	}
}

// Option configures a Reporter.
type Option func(*reporterConfig)

// WithOutput sets where reports are written. Defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(c *reporterConfig) { c.out = w }
}

// WithMaxFrames caps the number of frames in a report, at most MaxFrames.
func WithMaxFrames(n int) Option {
	return func(c *reporterConfig) {
		if n > 0 && n <= MaxFrames {
			c.maxFrames = n
		}
	}
}

// WithExit replaces os.Exit.
func WithExit(fn func(int)) Option {
	return func(c *reporterConfig) { c.exit = fn }
}

// WithExitCode sets the non-zero exit status. Zero is ignored.
func WithExitCode(code int) Option {
	return func(c *reporterConfig) {
		if code != 0 {
			c.exitCode = code
		}
	}
}

// New creates a Reporter. The report buffer is allocated here so that
// writing a report does not depend on the allocator.
func New(opts ...Option) *Reporter {
	cfg := defaultReporterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Reporter{
		out:       cfg.out,
		exit:      cfg.exit,
		maxFrames: cfg.maxFrames,
		exitCode:  cfg.exitCode,
		buf:       make([]byte, 0, reportBufSize),
	}
}

// Install registers for SIGSEGV and SIGBUS sent to the process from outside
// (faults raised by Go code arrive through the invoker instead). Repeated
// calls have no further effect.
func (r *Reporter) Install() error {
	r.once.Do(func() {
		r.signals = make(chan os.Signal, 1)
		signal.Notify(r.signals, syscall.SIGSEGV, syscall.SIGBUS)
		go r.watch()
		r.installed.Store(true)
	})
	return nil
}

// Installed reports whether Install has run.
func (r *Reporter) Installed() bool {
	return r.installed.Load()
}

func (r *Reporter) watch() {
	for sig := range r.signals {
		f := entities.Fault{Signal: entities.FaultSegfault, External: true}
		if sig == syscall.SIGBUS {
			f.Signal = entities.FaultBusError
		}
		r.Fatal(f)
	}
}

// Fatal writes the report for f and exits. It never recovers, unwinds or
// releases anything; the process is considered corrupt.
func (r *Reporter) Fatal(f entities.Fault) {
	var pcs [MaxFrames]uintptr
	n := runtime.Callers(2, pcs[:r.maxFrames])

	r.mu.Lock()
	r.buf = r.appendReport(r.buf[:0], f, pcs[:n])
	_, _ = r.out.Write(r.buf)
	r.mu.Unlock()

	r.exit(r.exitCode)
}

func (r *Reporter) appendReport(b []byte, f entities.Fault, pcs []uintptr) []byte {
	b = f.Append(b)
	b = append(b, '\n')
	if f.Message != "" {
		b = append(b, "  "...)
		b = append(b, f.Message...)
		b = append(b, '\n')
	}
	if len(pcs) == 0 {
		return append(b, "  <empty stacktrace, possibly corrupt>\n"...)
	}

	// Symbolization allocates inside the runtime; everything appended here
	// goes into the preallocated buffer.
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		b = appendFrame(b, frame)
		if !more {
			break
		}
	}
	return b
}

func appendFrame(b []byte, frame runtime.Frame) []byte {
	b = append(b, "  "...)
	b, ok := appendDemangled(b, frame.Function)
	if !ok {
		b = append(b, "pc=0x"...)
		b = strconv.AppendUint(b, uint64(frame.PC), 16)
		return append(b, '\n')
	}
	if frame.File != "" {
		b = append(b, " at "...)
		b = append(b, frame.File...)
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(frame.Line), 10)
	}
	return append(b, '\n')
}
