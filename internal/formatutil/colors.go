// Package formatutil colorizes CLI diagnostic output.
package formatutil

import (
	"fmt"

	"golang.org/x/term"
)

var (
	Bold   = Color("\033[1m%s\033[0m")
	Red    = Color("\033[1;31m%s\033[0m")
	Green  = Color("\033[1;32m%s\033[0m")
	Yellow = Color("\033[1;33m%s\033[0m")
	Cyan   = Color("\033[1;36m%s\033[0m")
)

// Color returns a formatting function that wraps its arguments in the
// given ANSI escape sequence when stdout is a terminal, and leaves them
// unadorned otherwise (so piping mkint's output to a file or another tool
// never embeds escape codes).
func Color(colorString string) func(...any) string {
	return func(args ...any) string {
		if term.IsTerminal(1) {
			return fmt.Sprintf(colorString, fmt.Sprint(args...))
		}
		return fmt.Sprint(args...)
	}
}
