package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestSystem_RemoteSessionUsesOSC52(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		prefix string
	}{
		{"ssh", map[string]string{"SSH_TTY": "/dev/pts/1"}, "\x1b]52;c;"},
		{"ssh in tmux", map[string]string{"SSH_CONNECTION": "x", "TMUX": "/tmp/tmux"}, "\x1bPtmux;"},
		{"screen", map[string]string{"STY": "1234.pts"}, "\x1bP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bufferCloser{}
			s := System{
				Getenv: env(tt.env),
				TTY:    func() (io.WriteCloser, error) { return buf, nil },
			}

			require.NoError(t, s.Copy("Workflow created"))

			out := buf.String()
			require.Contains(t, out, tt.prefix)
			require.Contains(t, out, base64.StdEncoding.EncodeToString([]byte("Workflow created")))
			require.True(t, buf.closed)
		})
	}
}

func TestSystem_TTYError(t *testing.T) {
	s := System{
		Getenv: env(map[string]string{"SSH_TTY": "x"}),
		TTY:    func() (io.WriteCloser, error) { return nil, errors.New("no tty") },
	}

	require.ErrorContains(t, s.Copy("x"), "opening terminal: no tty")
}
