// Package misc keeps program identity: name, version and source revision.
package misc

import (
	"runtime/debug"
	"sync"
)

const appName = "dtc"

// Set with -ldflags "-X dtc/misc.version=... -X dtc/misc.gitHash=..." by
// release builds. Otherwise taken from module build information.
var (
	version = ""
	gitHash = ""
)

var buildInfo = sync.OnceValues(func() (string, string) {
	v, h := version, gitHash
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return orUnknown(v), orUnknown(h)
	}
	if v == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	if h == "" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				h = s.Value
				if len(h) > 12 {
					h = h[:12]
				}
			}
		}
	}
	return orUnknown(v), orUnknown(h)
})

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func GetAppName() string {
	return appName
}

func GetVersion() string {
	v, _ := buildInfo()
	return v
}

func GetGitHash() string {
	_, h := buildInfo()
	return h
}
