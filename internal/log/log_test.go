package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSetOutput_WritesCategory(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelDebug)
	t.Cleanup(func() { SetOutput(io.Discard, slog.LevelInfo) })

	Debug(CatChat, "prompt submitted", "length", 5)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "chat", record["category"])
	require.Equal(t, "prompt submitted", record["msg"])
	require.EqualValues(t, 5, record["length"])
}

func TestErrorErr_AttachesError(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelInfo)
	t.Cleanup(func() { SetOutput(io.Discard, slog.LevelInfo) })

	ErrorErr(CatHTTP, "request failed", errors.New("connection refused"), "url", "http://localhost:8000")

	out := buf.String()
	require.Contains(t, out, `"error":"connection refused"`)
	require.Contains(t, out, `"url":"http://localhost:8000"`)
}

func TestSetOutput_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelWarn)
	t.Cleanup(func() { SetOutput(io.Discard, slog.LevelInfo) })

	Info(CatApp, "hidden")
	Warn(CatApp, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "flowdraft.log")

	closeFn, err := Init(Options{Path: path, Level: "debug"})
	require.NoError(t, err)
	t.Cleanup(func() { SetOutput(io.Discard, slog.LevelInfo) })

	Info(CatConfig, "config loaded")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "config loaded"))
}

func TestInit_EmptyPathIsNoop(t *testing.T) {
	closeFn, err := Init(Options{})
	require.NoError(t, err)
	require.NoError(t, closeFn())
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	var buf syncBuffer
	SetOutput(&buf, slog.LevelDebug)
	t.Cleanup(func() { SetOutput(io.Discard, slog.LevelInfo) })

	done := make(chan struct{})
	SafeGo("boom", func() {
		defer close(done)
		panic("kaboom")
	})
	<-done

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "kaboom")
	}, time.Second, 10*time.Millisecond)
	require.Contains(t, buf.String(), `"goroutine":"boom"`)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
