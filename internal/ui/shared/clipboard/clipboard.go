// Package clipboard copies text to the user's clipboard from inside the TUI.
package clipboard

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

// Clipboard copies text.
type Clipboard interface {
	Copy(text string) error
}

// System writes to the native clipboard on a local terminal and falls back to
// OSC 52 escape sequences over SSH or inside GNU screen, where the native
// clipboard belongs to another machine.
type System struct {
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// TTY opens the terminal for OSC 52 output. Defaults to /dev/tty so the
	// sequence bypasses Bubble Tea's alt screen.
	TTY func() (io.WriteCloser, error)
}

// Copy implements Clipboard.
func (s System) Copy(text string) error {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	remote := getenv("SSH_TTY") != "" || getenv("SSH_CLIENT") != "" || getenv("SSH_CONNECTION") != ""
	screen := getenv("STY") != ""
	if !remote && !screen {
		return clipboard.WriteAll(text)
	}

	seq := osc52.New(text)
	switch {
	case getenv("TMUX") != "":
		seq = seq.Tmux()
	case screen:
		seq = seq.Screen()
	}
	return s.writeSequence(seq)
}

func (s System) writeSequence(seq osc52.Sequence) (err error) {
	open := s.TTY
	if open == nil {
		open = func() (io.WriteCloser, error) { return os.OpenFile("/dev/tty", os.O_WRONLY, 0) }
	}
	tty, err := open()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	defer func() {
		if closeErr := tty.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	_, err = seq.WriteTo(tty)
	return err
}
