package log

import (
	"fmt"
	"os"
	"time"

	"github.com/gur-shatz/empdir/internal/color"
)

// Logger is an instance-based logger with its own prefix and verbosity.
type Logger struct {
	prefix  string
	verbose bool
}

// New creates a new Logger with the given prefix and verbosity.
func New(prefix string, verbose bool) *Logger {
	return &Logger{prefix: prefix, verbose: verbose}
}

// Error prints a red error message to stderr.
func (this *Logger) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s %s\n", this.prefix, color.Red("Error:"), msg)
}

// Warn prints a yellow warning message to stdout.
func (this *Logger) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(this.prefix + " " + color.Yellow(msg))
}

// Success prints a green success message to stdout.
func (this *Logger) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(this.prefix + " " + color.Green(msg))
}

// Status prints a bold status message to stdout.
func (this *Logger) Status(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(color.Bold(this.prefix + " " + msg))
}

// Verbose prints a dim message to stdout, only if verbose mode is enabled.
func (this *Logger) Verbose(format string, args ...any) {
	if !this.verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Println(color.Dim(this.prefix + " " + msg))
}

// Request prints one access-log line in verbose mode. 5xx is red,
// 4xx yellow, the rest green.
func (this *Logger) Request(method, path string, status int, elapsed time.Duration) {
	if !this.verbose {
		return
	}
	code := fmt.Sprintf("%d", status)
	switch {
	case status >= 500:
		code = color.Red(code)
	case status >= 400:
		code = color.Yellow(code)
	default:
		code = color.Green(code)
	}
	fmt.Printf("%s %s %s %s\n", this.prefix, code, method+" "+path, color.Dim(elapsed.Round(time.Microsecond).String()))
}

// --- Global convenience functions ---

var defaultLogger = &Logger{prefix: "[empdir]"}

// Init initializes the global logger. Must be called before any other global log function.
func Init(v bool) {
	defaultLogger.verbose = v
	color.Init()
}

// SetPrefix changes the global log prefix (default "[empdir]").
func SetPrefix(p string) {
	defaultLogger.prefix = p
}

// Default returns the global logger, for components that take a *Logger.
func Default() *Logger { return defaultLogger }

func Error(format string, args ...any)   { defaultLogger.Error(format, args...) }
func Warn(format string, args ...any)    { defaultLogger.Warn(format, args...) }
func Success(format string, args ...any) { defaultLogger.Success(format, args...) }
func Status(format string, args ...any)  { defaultLogger.Status(format, args...) }
func Verbose(format string, args ...any) { defaultLogger.Verbose(format, args...) }
func Request(method, path string, status int, elapsed time.Duration) {
	defaultLogger.Request(method, path, status, elapsed)
}
