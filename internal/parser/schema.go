package parser

import (
	"strconv"
	"strings"
)

type semver struct {
	major, minor, patch int
	ok                  bool
}

func parseSemver(s string) semver {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) == 0 || s == "" {
		return semver{}
	}
	var v semver
	var err error
	if v.major, err = strconv.Atoi(parts[0]); err != nil {
		return semver{}
	}
	if len(parts) > 1 {
		if v.minor, err = strconv.Atoi(trimNonDigitsSuffix(parts[1])); err != nil {
			return semver{}
		}
	}
	if len(parts) > 2 {
		if v.patch, err = strconv.Atoi(trimNonDigitsSuffix(parts[2])); err != nil {
			return semver{}
		}
	}
	v.ok = true
	return v
}

// trimNonDigitsSuffix strips trailing non-digit characters, so semver
// pre-release/build suffixes like "0-beta" parse as "0".
func trimNonDigitsSuffix(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] < '0' || s[end-1] > '9') {
		end--
	}
	return s[:end]
}

// less reports whether a is strictly less than b, under major.minor.patch ordering.
func (a semver) less(b semver) bool {
	if a.major != b.major {
		return a.major < b.major
	}
	if a.minor != b.minor {
		return a.minor < b.minor
	}
	return a.patch < b.patch
}

func (a semver) atLeast(b semver) bool { return !a.less(b) }
func (a semver) atMost(b semver) bool  { return !b.less(a) }

// DetectSchemaProfile maps an entry's top-level "version" string to a
// schema profile per the version table in spec §4.2. An empty or
// unparseable version degrades to legacy, matching "missing / < 2.0".
func DetectSchemaProfile(version string) SchemaProfile {
	if version == "" {
		return ProfileLegacy
	}
	v := parseSemver(version)
	if !v.ok {
		return ProfileLegacy
	}

	switch {
	case v.less(semver{major: 2, minor: 0, patch: 0, ok: true}):
		return ProfileLegacy
	case v.atMost(semver{major: 2, minor: 0, patch: 29, ok: true}):
		return ProfileBase
	case v.atMost(semver{major: 2, minor: 0, patch: 55, ok: true}):
		return ProfileMid
	case v.atMost(semver{major: 2, minor: 0, patch: 63, ok: true}):
		return ProfileAgents
	case v.atMost(semver{major: 2, minor: 0, patch: 71, ok: true}):
		return ProfileUnified
	default:
		return ProfileLatest
	}
}
