package buildconfig

import "runtime"

// Build-time variables injected via ldflags:
//
//	-X github.com/Harshitk-cp/informed/internal/buildconfig.version=...
var (
	version = "dev"
	commit  = "unknown"
	date    = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

func Version() string {
	return version
}

func Commit() string {
	return commit
}

// Get returns the build information of the running binary.
func Get() Info {
	return Info{
		Version:   version,
		Commit:    commit,
		BuildDate: date,
		GoVersion: runtime.Version(),
	}
}

// String formats the build information for a --version flag.
func (i Info) String() string {
	s := i.Version + " (" + i.Commit
	if i.BuildDate != "" {
		s += ", " + i.BuildDate
	}
	return s + ", " + i.GoVersion + ")"
}
