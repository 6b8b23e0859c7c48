// Package version describes the build of a bazaar binary. Info is also the
// body of the server's /version endpoint, so bazaarctl decodes the server
// build into the same type it uses for itself.
package version

import (
	"fmt"
	"runtime"
)

// Info is populated from ldflags at build time
type Info struct {
	// Version is the display string, e.g. "Agora (2026.10) - v1.2.0-4f9f297"
	Version        string `json:"version"`
	ReleaseName    string `json:"release_name"`
	ReleaseVersion string `json:"release_version"`
	BuildDate      string `json:"build_date"`
	GitCommit      string `json:"git_commit"`
	// GoVersion is empty until Runtime fills it in
	GoVersion string `json:"go_version,omitempty"`
}

var (
	DefaultVersion        = "dev"
	DefaultReleaseName    = "Agora"
	DefaultReleaseVersion = "0.0.0"
	DefaultBuildDate      = "unknown"
	DefaultGitCommit      = "unknown"
)

// New returns an Info holding the defaults
func New() *Info {
	return &Info{
		Version:        DefaultVersion,
		ReleaseName:    DefaultReleaseName,
		ReleaseVersion: DefaultReleaseVersion,
		BuildDate:      DefaultBuildDate,
		GitCommit:      DefaultGitCommit,
	}
}

// Runtime returns a copy of i stamped with the running Go version
func (i *Info) Runtime() Info {
	c := *i
	c.GoVersion = runtime.Version()
	return c
}

func (i *Info) String() string {
	return i.Version
}

// Short returns "v<release>-<commit>"
func (i *Info) Short() string {
	return fmt.Sprintf("v%s-%s", i.ReleaseVersion, i.GitCommit)
}

// Full returns the multi-line form printed by the version commands. An Info
// decoded from a server keeps the server's Go version.
func (i *Info) Full() string {
	goVersion := i.GoVersion
	if goVersion == "" {
		goVersion = runtime.Version()
	}
	return fmt.Sprintf(`%s
  Release:    %s
  Version:    %s
  Build Date: %s
  Git Commit: %s
  Go Version: %s`,
		i.Version, i.ReleaseName, i.ReleaseVersion, i.BuildDate, i.GitCommit, goVersion)
}
