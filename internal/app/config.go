//go:build windows

package app

import (
	"github.com/fpawel/curtains/internal/config"
	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/quote"
)

func runEditSettings() {
	s, err := data.GetSettings(db)
	if err != nil {
		showErr("Company settings", err)
		return
	}
	editYaml("settings", quote.SettingsInputOf(s), func(in quote.SettingsInput) error {
		if _, err := data.UpdateSettings(db, in); err != nil {
			return err
		}
		setStatusOk("company settings saved")
		return nil
	})
}

// runEditConfig opens config.toml and reloads it after the editor exits.
// The database file and log settings take effect on the next start.
func runEditConfig() {
	filename := env.Paths.ConfigFile()
	runEditor(filename, func() {
		c, err := config.Load(filename)
		if err != nil {
			showErr("Configuration", err)
			return
		}
		env.Config = c
		setStatusOk("configuration reloaded")
	})
}
