// Package version reports the treegrid build version.
package version

import "runtime/debug"

// Version is the current application version. It is a var so release
// builds can set it:
//
//	go build -ldflags "-X github.com/vanderheijden86/treegrid/pkg/version.Version=v0.2.0"
//
// Builds installed with go install report their module version instead.
var Version = "dev"

func init() {
	if Version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		Version = fromBuildInfo(info)
	}
}

func fromBuildInfo(info *debug.BuildInfo) string {
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return "dev"
}
