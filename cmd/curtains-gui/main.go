//go:build windows

package main

import "github.com/fpawel/curtains/internal/app"

func main() {
	app.Main()
}
