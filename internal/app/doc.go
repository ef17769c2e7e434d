// Package app is the desktop front end of the quotation database, built on lxn/walk.
// It is only built for Windows.
package app
