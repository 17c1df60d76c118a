// Package version holds build metadata stamped in by the linker:
//
//	-ldflags "-X github.com/dkoosis/gotestreport/internal/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String describes the build. Binaries installed with go install carry no
// ldflags, so their module version is used instead.
func String() string {
	v := Version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return fmt.Sprintf("gotestreport %s (commit %s, built %s)", v, CommitHash, BuildDate)
}
