// SPDX-License-Identifier: MIT
//
// Package build manages build information embedded into the binary at
// compile time via linker flags: application name, build timestamp, Git
// commit hash and semantic version.
package build

import "fmt"

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Package-level variables for build information. These are populated by -ldflags
// during compilation. Default values of "unknown" are used during development.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "snipper",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "unknown",
	}
)

// Initialize copies build information from the ldflags variables into the
// buildFlags struct. Call early in program startup; missing flags keep
// their development defaults.
func Initialize() error {
	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}
	return nil
}

// GetBuildFlags returns the current build information. Initialize() should
// be called before this function so the information reflects the binary.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// VersionString renders the build information as a single line.
func VersionString() string {
	return fmt.Sprintf("%s %s (%s, built %s)",
		buildFlags.Name, buildFlags.Version, buildFlags.Commit, buildFlags.Time)
}
