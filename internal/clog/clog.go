// Package clog implements the compiler's structured logging of SPEC_FULL.md
// §5: a package-level slog.Logger, broadcast to stdout plus an optional
// sink file, with WasmException diagnostics colourised on a terminal.
package clog

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/stephens2424/writerset"

	"github.com/wasmforge/classwasm/internal/errs"
)

// Logger is the global logger instance every compiler package writes
// through.
var Logger *slog.Logger

// Level is the current log level, adjustable at runtime by the CLI's -v
// flag without rebuilding the handler.
var Level = new(slog.LevelVar)

// sinks is the broadcast set Init writes through: stdout is always a
// member, an optional log file is added by SetSinkFile.
var sinks = writerset.New()

func init() {
	sinks.Add(os.Stdout)
	Init(slog.LevelInfo)
}

// Init (re)builds Logger at the given level, writing through the current
// sink set.
func Init(level slog.Level) {
	handler := slog.NewJSONHandler(sinks, &slog.HandlerOptions{
		Level:     Level,
		AddSource: true,
	})
	Logger = slog.New(handler)
	Level.Set(level)
}

// SetSinkFile adds f to the broadcast sink set so every record written
// from here on reaches both stdout and f. Callers are responsible for
// closing f themselves once compilation finishes.
func SetSinkFile(f io.Writer) {
	sinks.Add(f)
}

// ReportException writes a one-line, terminal-colourised rendering of a
// WasmException to w: red for the message, cyan for the class.method:line
// location, matching the severity colouring a CLI error path uses
// elsewhere in the pack. Writes nothing when we is nil.
func ReportException(w io.Writer, we *errs.WasmException) {
	if we == nil {
		return
	}
	msg := color.New(color.FgRed, color.Bold).Sprintf("%s error", we.Kind)
	loc := ""
	if we.ClassName != "" {
		loc = color.New(color.FgCyan).Sprintf(" [%s", we.ClassName)
		if we.MethodName != "" {
			loc += color.New(color.FgCyan).Sprintf(".%s", we.MethodName)
		}
		if we.SourceLine >= 0 {
			loc += color.New(color.FgCyan).Sprintf(":%d", we.SourceLine)
		}
		loc += color.New(color.FgCyan).Sprint("]")
	}
	io.WriteString(w, msg+": "+we.Message+loc+"\n")
}
