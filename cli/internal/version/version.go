// Package version reports build information, set through -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Info holds version information.
type Info struct {
	Version   string
	BuildDate string
	GitCommit string
	GoVersion string
	Platform  string
}

// Get returns the build information of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("sqlorm version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// FullString adds the build date and commit, plus the SQLite library
// version when it is known.
func (i Info) FullString(sqliteVersion string) string {
	s := fmt.Sprintf("sqlorm version %s\nBuild Date: %s\nGit Commit: %s\nPlatform: %s\nGo Version: %s",
		i.Version, i.BuildDate, i.GitCommit, i.Platform, i.GoVersion)
	if sqliteVersion != "" {
		s += "\nSQLite: " + sqliteVersion
	}
	return s
}
