// Package editor composes text in the user's external editor.
package editor

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// FinishedMsg is sent when the external editor closes.
type FinishedMsg struct {
	Content string
	Err     error
}

// ExecMsg is sent when the editor command is ready. The parent runs it with
// msg.ExecCmd() so Bubble Tea can release the terminal.
type ExecMsg struct {
	cmd     *exec.Cmd
	tmpPath string
}

// Command resolves the editor from $VISUAL, then $EDITOR, then "vi". Values
// may carry arguments, e.g. "code --wait".
func Command(getenv func(string) string) (string, []string) {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(getenv(key)); len(fields) > 0 {
			return fields[0], fields[1:]
		}
	}
	return "vi", nil
}

// OpenCmd writes content to a temp file and returns a command that yields an
// ExecMsg for editing it.
func OpenCmd(content string) tea.Cmd {
	return func() tea.Msg {
		name, args := Command(os.Getenv)

		tmpFile, err := os.CreateTemp("", "flowdraft-prompt-*.md")
		if err != nil {
			return FinishedMsg{Err: err}
		}
		tmpPath := tmpFile.Name()

		_, writeErr := tmpFile.WriteString(content)
		closeErr := tmpFile.Close()
		if err := errors.Join(writeErr, closeErr); err != nil {
			_ = os.Remove(tmpPath)
			return FinishedMsg{Err: err}
		}

		// #nosec G204 -- editor command is from trusted env vars (VISUAL/EDITOR) or hardcoded "vi"
		cmd := exec.Command(name, append(args, tmpPath)...)
		return ExecMsg{cmd: cmd, tmpPath: tmpPath}
	}
}

// ExecCmd runs the editor and reads back the file, trimming the trailing
// newlines editors add on save.
func (msg ExecMsg) ExecCmd() tea.Cmd {
	return tea.ExecProcess(msg.cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(msg.tmpPath) }()

		if err != nil {
			return FinishedMsg{Err: err}
		}
		content, err := os.ReadFile(msg.tmpPath)
		if err != nil {
			return FinishedMsg{Err: err}
		}
		return FinishedMsg{Content: strings.TrimRight(string(content), "\n")}
	})
}
