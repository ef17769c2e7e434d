//go:build windows

package app

import (
	"os"

	"github.com/ansel1/merry"
	"github.com/lxn/walk"
)

func panicIf(err error) {
	if err != nil {
		panic(err)
	}
}

func cleanTmpDir() {
	if err := os.RemoveAll(tmpDir); err != nil {
		log.PrintErr(merry.Append(err, "os.RemoveAll(tmpDir)"))
	}
}

func userMessage(err error) string {
	if s := merry.UserMessage(err); s != "" {
		return s
	}
	return err.Error()
}

func showErr(title string, err error) {
	log.PrintErr(title, "error", merry.Details(err))
	setStatusError(err)
	walk.MsgBox(mainWnd, title, userMessage(err), walk.MsgBoxIconError|walk.MsgBoxOK)
}

func confirm(title, text string) bool {
	return walk.MsgBox(mainWnd, title, text, walk.MsgBoxIconQuestion|walk.MsgBoxYesNo) == walk.DlgCmdYes
}

// writeFile creates filename and fills it with fn.
func writeFile(filename string, fn func(f *os.File) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return merry.Prepend(err, "create").WithUserMessagef("can not create %s", filename)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return merry.Wrap(f.Close())
}
