// Package logging provides a toggleable package-level logger used
// throughout this module instead of a full logging framework.
package logging

import "log"

// Enabled is a clumsy switch that affects what Logf does.
//
// If Enabled is true, then Logf calls log.Printf.
var Enabled = false

// Logf calls log.Printf if Enabled is true.
func Logf(format string, args ...interface{}) {
	if !Enabled {
		return
	}
	log.Printf(format, args...)
}
