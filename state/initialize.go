package state

import "time"

const (
	// DefaultTokensDir is where token files are looked for when command line
	// does not say otherwise.
	DefaultTokensDir = "tokens"
	// DefaultThemeFormat is used when neither command line nor configuration
	// specify one.
	DefaultThemeFormat = "json"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}
