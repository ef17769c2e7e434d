//go:build windows

package app

import (
	"github.com/fpawel/curtains/internal/quote"
	"github.com/lxn/walk"
	. "github.com/lxn/walk/declarative"
)

const allStatuses = "all"

// ComboBoxStatus filters the quotations table by status.
func ComboBoxStatus(onChanged func(quote.Status)) ComboBox {
	var cb *walk.ComboBox
	model := []string{allStatuses}
	for _, s := range quote.Statuses {
		model = append(model, string(s))
	}
	return ComboBox{
		AssignTo:     &cb,
		MaxSize:      Size{100, 0},
		Model:        model,
		CurrentIndex: 0,
		OnCurrentIndexChanged: func() {
			n := cb.CurrentIndex()
			if n <= 0 || n > len(quote.Statuses) {
				onChanged("")
				return
			}
			onChanged(quote.Statuses[n-1])
		},
	}
}
