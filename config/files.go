package config

import (
	"os"
	"strings"
)

// CleanFileName makes configured output name safe to join with destination
// directory: path separators and characters the platform does not allow are
// dropped, so are leading dots.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if sym == 0 || sym == os.PathSeparator || sym == os.PathListSeparator || strings.ContainsRune(invalidNameChars, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(out, ".")
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}
