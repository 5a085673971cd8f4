// Package misc keeps program identity helpers in one place.
package misc

import "runtime/debug"

// appName and appVersion could be overwritten at link time.
var (
	appName    = "cssn"
	appVersion = "development"
)

// GetAppName returns the short program name used for logs and file names.
func GetAppName() string {
	return appName
}

// GetVersion returns the program version, preferring module metadata when
// the binary was built from a tagged module.
func GetVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return appVersion
}

// GetGitHash returns the vcs revision recorded in build info, or "unknown".
func GetGitHash() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
