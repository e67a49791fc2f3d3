package session

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Editor opens paths for editing and returns once the user is done.
type Editor interface {
	Edit(paths []string) error
}

// ExecEditor runs `SudoCommand Editor paths...` attached to the terminal.
// Editor may carry its own arguments ("vim -O"). An empty SudoCommand runs
// the editor directly.
type ExecEditor struct {
	SudoCommand string
	Editor      string
}

func (e *ExecEditor) Command(paths []string) []string {
	argv := make([]string, 0, len(paths)+2)
	if e.SudoCommand != "" {
		argv = append(argv, e.SudoCommand)
	}
	argv = append(argv, strings.Fields(e.Editor)...)
	return append(argv, paths...)
}

// Edit blocks until the editor exits. There is no timeout; the session ends
// when the user quits the editor.
func (e *ExecEditor) Edit(paths []string) error {
	argv := e.Command(paths)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q: %w", argv[0], err)
	}
	return nil
}
