package deb

import "strings"

// TransformVersion rewrites a semantic version into a Debian-safe version
// string. It is total and deterministic: the only change is that the hyphen
// introducing the pre-release segment, and any hyphen within it, becomes a
// tilde. Build metadata (after '+') is preserved verbatim.
//
// Debian sorts '~' before the empty string, so "1.2.3~beta.4" correctly
// precedes "1.2.3", whereas a bare hyphen would be read as the
// upstream/revision separator.
//
// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#s-f-version
func TransformVersion(version string) string {
	pre := strings.Index(version, "-")
	if pre < 0 {
		return version
	}
	end := strings.Index(version, "+")
	if end < 0 {
		end = len(version)
	}
	if end < pre {
		// The hyphen sits inside build metadata, not a pre-release segment.
		return version
	}
	return version[:pre] + strings.ReplaceAll(version[pre:end], "-", "~") + version[end:]
}

// fullVersion returns the complete Debian version written to the control
// file and the output filename: the transformed upstream version followed by
// the revision.
func fullVersion(o Options) string {
	return TransformVersion(o.Version) + "-" + o.Revision
}
