//go:build windows

package app

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ansel1/merry"
	"github.com/lxn/walk"
	"gopkg.in/yaml.v3"
)

// editYaml writes x to a temporary YAML file and opens it in the configured editor.
// When the editor exits the edited value is passed to save on the UI thread.
// If reading or saving fails the user may reopen the same file to fix it.
func editYaml[T any](name string, x T, save func(T) error) {
	b, err := yaml.Marshal(x)
	if err != nil {
		showErr(name, merry.Wrap(err))
		return
	}
	filename := filepath.Join(tmpDir, name+".yaml")
	if err := os.WriteFile(filename, b, 0644); err != nil {
		showErr(name, merry.Wrap(err))
		return
	}

	var done func()
	done = func() {
		err := func() error {
			b, err := os.ReadFile(filename)
			if err != nil {
				return merry.Wrap(err)
			}
			var y T
			if err := yaml.Unmarshal(b, &y); err != nil {
				return merry.Wrap(err).WithUserMessage(err.Error())
			}
			return save(y)
		}()
		if err == nil {
			return
		}
		log.PrintErr(name, "error", merry.Details(err))
		if walk.MsgBox(mainWnd, name, userMessage(err)+"\n\nEdit again?",
			walk.MsgBoxIconError|walk.MsgBoxYesNo) == walk.DlgCmdYes {
			runEditor(filename, done)
		}
	}
	runEditor(filename, done)
}

// runEditor starts the configured editor on filename and calls done on the UI thread
// after it exits.
func runEditor(filename string, done func()) {
	args := strings.Fields(env.Config.Editor)
	if len(args) == 0 {
		args = []string{"notepad"}
	}
	cmd := exec.Command(args[0], append(args[1:], filename)...)
	if err := cmd.Start(); err != nil {
		showErr("Editor", merry.Prepend(err, env.Config.Editor).
			WithUserMessagef("can not start editor %q: %v", env.Config.Editor, err))
		return
	}
	setStatusOk(fmt.Sprintf("editing %s", filepath.Base(filename)))
	go func() {
		if err := cmd.Wait(); err != nil {
			log.PrintErr("editor", "file", filename, "error", err)
		}
		mainWnd.Synchronize(done)
	}()
}
