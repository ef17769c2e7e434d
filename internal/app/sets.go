//go:build windows

package app

import (
	"strconv"

	"github.com/lxn/walk"
)

var sets = func() *walk.IniFileSettings {
	app := walk.App()
	app.SetOrganizationName("fpawel")
	app.SetProductName("curtains")
	sets := walk.NewIniFileSettings("settings.ini")
	panicIf(sets.Load())
	app.SetSettings(sets)
	return sets
}()

func setsGet(key string) string {
	s, _ := sets.Get(key)
	return s
}

func setsPut(key, value string) {
	if err := sets.Put(key, value); err != nil {
		log.PrintErr("settings.ini", "key", key, "error", err)
	}
}

func setsTabIndex() int {
	n, err := strconv.Atoi(setsGet("tab"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func setsLastDir() string {
	return setsGet("last_dir")
}
