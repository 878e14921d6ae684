// Package goversion models the detected Go toolchain version so tool
// invocations can be gated on toolchain capability.
package goversion

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// Two recognized shapes of `go version` output: a tagged release with a
// dotted numeric version and an optional prerelease tag, and a
// development tip build carrying a commit fragment.
var (
	releaseRE = regexp.MustCompile(`go version go(\d+(?:\.\d+)+)([a-z]+\d+)?`)
	develRE   = regexp.MustCompile(`go version devel \+([0-9a-fA-F]+)`)
)

// Version is one detected toolchain build. A valid instance is either a
// tagged release or a development tip build, never both; output that
// matches neither shape yields an invalid instance. Values are immutable
// once constructed.
type Version struct {
	BinaryPath string
	Release    *semver.Version
	Devel      bool
	Commit     string
}

// Parse classifies raw `go version` output for the binary at binPath.
func Parse(binPath, raw string) Version {
	v := Version{BinaryPath: binPath}

	if m := develRE.FindStringSubmatch(raw); m != nil {
		v.Devel = true
		v.Commit = m[1]
		return v
	}

	if m := releaseRE.FindStringSubmatch(raw); m != nil {
		s := m[1]
		if m[2] != "" {
			s += "-" + m[2]
		}
		if release, err := semver.NewVersion(s); err == nil {
			v.Release = release
		}
	}
	return v
}

// IsValid reports whether the output matched a recognized shape.
func (v Version) IsValid() bool {
	return v.Devel || v.Release != nil
}

// LessThan reports whether the detected version precedes the given
// release string. A development build never precedes a release, and an
// invalid instance compares as unknown, so both report false. The same
// holds when the argument itself does not parse.
func (v Version) LessThan(s string) bool {
	if !v.IsValid() || v.Devel {
		return false
	}
	other, err := semver.NewVersion(s)
	if err != nil {
		return false
	}
	return v.Release.LessThan(other)
}

// GreaterThan reports whether the detected version succeeds the given
// release string. A development build is treated as newer than any
// release; an invalid instance compares as unknown and reports false.
func (v Version) GreaterThan(s string) bool {
	if !v.IsValid() {
		return false
	}
	if v.Devel {
		return true
	}
	other, err := semver.NewVersion(s)
	if err != nil {
		return false
	}
	return v.Release.GreaterThan(other)
}

// Format renders the version for display: `X.Y[.Z]` for releases, with
// the prerelease tag appended when requested, `devel +commit` for tip
// builds.
func (v Version) Format(includePrerelease bool) string {
	switch {
	case v.Devel:
		return "devel +" + v.Commit
	case v.Release == nil:
		return "unknown"
	}

	s := fmt.Sprintf("%d.%d", v.Release.Major(), v.Release.Minor())
	if v.Release.Patch() > 0 {
		s = fmt.Sprintf("%s.%d", s, v.Release.Patch())
	}
	if includePrerelease && v.Release.Prerelease() != "" {
		s += "-" + v.Release.Prerelease()
	}
	return s
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return v.Format(true)
}
