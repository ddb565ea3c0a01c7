package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Set via -ldflags "-X gotravel/internal/buildinfo.Version=..."
var (
	Version = "dev"
	Commit  = ""
	BuiltAt = ""
)

func Info() map[string]string {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}
	return map[string]string{
		"version": Version,
		"commit":  commit,
		"builtAt": BuiltAt,
	}
}

// String is the one-line form printed by -version.
func String() string {
	i := Info()
	s := "planner " + i["version"]
	if c := i["commit"]; c != "" {
		if len(c) > 12 {
			c = c[:12]
		}
		s += fmt.Sprintf(" (%s)", c)
	}
	if b := i["builtAt"]; b != "" {
		s += " built " + b
	}
	return s
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
