package main

import (
	"fmt"
	"runtime/debug"
)

const (
	AppVendor  = "hexaflex"
	AppName    = "atlas-gen"
	AppVersion = "v0.2.0"
)

// Version returns program version information.
func Version() string {
	version := AppVersion
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	return fmt.Sprintf("%s %s %s", AppVendor, AppName, version)
}
