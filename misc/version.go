// Package misc keeps program identity helpers out of the way of everything else.
package misc

import (
	"runtime/debug"
	"sync"
)

const appName = "cssb"

// set by the release build via -ldflags
var appVersion = "development"

// GetAppName returns short program name used for logs, reports and temp files.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return appVersion
}

var readBuildInfo = sync.OnceValue(func() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
})

// GetGitHash returns VCS revision recorded in the binary, if any.
func GetGitHash() string {
	return readBuildInfo()
}
