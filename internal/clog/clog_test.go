package clog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/wasmforge/classwasm/internal/errs"
)

func TestSetSinkFileBroadcasts(t *testing.T) {
	var fileBuf bytes.Buffer
	SetSinkFile(&fileBuf)
	Init(slog.LevelInfo)
	Logger.Info("hello", "phase", "translate")

	require.Contains(t, fileBuf.String(), "hello")
}

func TestSetLevelFiltersDebug(t *testing.T) {
	var fileBuf bytes.Buffer
	SetSinkFile(&fileBuf)
	Init(slog.LevelInfo)
	Logger.Debug("should not appear")

	require.NotContains(t, fileBuf.String(), "should not appear")
}

func TestReportExceptionIncludesLocation(t *testing.T) {
	color.NoColor = true
	we := errs.New(errs.KindInput, "bad opcode 0x%02x", 0xca).WithLocation("Foo", "bar", 12)
	var buf bytes.Buffer
	ReportException(&buf, we)

	out := buf.String()
	require.True(t, strings.Contains(out, "Foo"))
	require.True(t, strings.Contains(out, "bar"))
	require.True(t, strings.Contains(out, "12"))
}

func TestReportExceptionNilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	ReportException(&buf, nil)
	require.Empty(t, buf.String())
}
