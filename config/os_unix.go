//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// slash is the only other troublemaker, handled as separator
const invalidNameChars = ""

// EnableColorOutput reports if level colors could be used on stream.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
