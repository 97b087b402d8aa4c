package deb

import (
	"fmt"
	"sort"
	"time"
)

// Options is the declarative configuration for one package build.
// Validate returns a normalized copy; the zero value of every optional field
// has a sensible Debian default.
type Options struct {
	// Name is the package name. It must consist only of lower case letters
	// (a-z), digits (0-9), plus (+) and minus (-) signs, and periods (.).
	// It must be at least two characters long and must start with an
	// alphanumeric character.
	//
	// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#s-f-package
	Name string

	// Version is the raw upstream version, typically semantic. Pre-release
	// hyphens are rewritten to '~' by TransformVersion before the version
	// reaches the control file.
	Version string

	// Revision is the Debian revision appended after the upstream version.
	// Defaults to "1".
	//
	// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#s-f-version
	Revision string

	// Architecture the package is built for: "amd64", "i386", "arm64", or
	// "all" for architecture-independent content. Defaults to "amd64".
	//
	// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#s-f-architecture
	Architecture string

	// Maintainer is the responsible person, "Name <email@address.com>".
	//
	// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#s-f-maintainer
	Maintainer string

	// Homepage is the URL of the upstream project's home page.
	Homepage string

	// Description is the single-line synopsis of the package.
	// At least one of Description and ProductDescription must be set.
	Description string

	// ProductDescription is the extended, possibly multi-line description
	// body. It is folded per Debian field rules when written to the control
	// file: continuation lines indented one space, blank lines become " .".
	//
	// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#s-f-description
	ProductDescription string

	// ProductName is the human-readable application name used in the
	// desktop entry. Defaults to Name.
	ProductName string

	// GenericName is the desktop entry generic name (e.g. "Text Editor").
	GenericName string

	// Bin is the file name of the application executable inside the source
	// tree. Defaults to Name. It is installed mode 0755 and linked from
	// /usr/bin.
	Bin string

	// Section classifies the package (e.g. "utils", "web"). Defaults to
	// "utils".
	Section string

	// Priority is the package importance. Defaults to "optional".
	Priority string

	// Relationship fields, each an ordered list of package specs like
	// "libc6 (>= 2.17)".
	//
	// Reference: https://www.debian.org/doc/debian-policy/ch-relationships.html#s-binarydeps
	Depends    []string
	Recommends []string
	Suggests   []string
	Enhances   []string
	PreDepends []string

	// Categories are freedesktop menu categories for the desktop entry.
	Categories []string

	// MimeType lists MIME types the application can open. Presence
	// triggers generation of a shared-mime-info registration and a
	// MimeType= line in the desktop entry.
	MimeType []string

	// Icon maps a size label ("48x48", "scalable", ...) to a source image
	// path, installed under the hicolor theme.
	Icon map[string]string

	// Scripts maps a maintainer script name to the source file providing
	// its body. Only preinst, postinst, prerm and postrm are accepted.
	Scripts map[MaintainerScript]string

	// LintianOverrides suppress specific lintian tags for this package,
	// one identifier per entry.
	LintianOverrides []string

	// Compression selects the data.tar codec. Defaults to xz.
	Compression Compression

	// Timestamp is the modification time recorded for every archive entry.
	// Pinning it is what makes rebuilds byte-identical. Defaults to the
	// Unix epoch.
	Timestamp time.Time

	// SignKey is an optional ASCII-armored PGP private key. When set, a
	// debsigs-style origin signature is appended to the package. The
	// signature member is excluded from the determinism guarantee.
	SignKey string
}

// isASCIIAlnum reports whether b is an ASCII letter or digit.
func isASCIIAlnum(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// Validate checks the options in rule order and returns a normalized copy
// with defaults applied. The first violated rule is reported as a
// *ValidationError; the filesystem is never touched.
func (o Options) Validate() (Options, error) {
	if len(o.Name) < 2 {
		return Options{}, &ValidationError{"Package name must be at least two characters"}
	}
	if !isASCIIAlnum(o.Name[0]) {
		return Options{}, &ValidationError{"Package name must start with an ASCII number or letter"}
	}
	if o.Description == "" && o.ProductDescription == "" {
		return Options{}, &ValidationError{"No Description or ProductDescription provided"}
	}
	switch o.Compression {
	case "", CompressXz, CompressGzip, CompressBzip2, CompressLzma, CompressZstd, CompressNone:
	default:
		return Options{}, &ValidationError{"Invalid compression type. xz, gzip, bzip2, lzma, zstd, or none are supported."}
	}
	// Sorted so the reported key is stable when several are wrong.
	names := make([]string, 0, len(o.Scripts))
	for name := range o.Scripts {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, name := range names {
		switch MaintainerScript(name) {
		case ScriptPreinst, ScriptPostinst, ScriptPrerm, ScriptPostrm:
		default:
			return Options{}, &ValidationError{fmt.Sprintf("Wrong executable script name: %s", name)}
		}
	}

	if o.Revision == "" {
		o.Revision = "1"
	}
	if o.Architecture == "" {
		o.Architecture = "amd64"
	}
	if o.Section == "" {
		o.Section = "utils"
	}
	if o.Priority == "" {
		o.Priority = "optional"
	}
	if o.Bin == "" {
		o.Bin = o.Name
	}
	if o.ProductName == "" {
		o.ProductName = o.Name
	}
	if o.Compression == "" {
		o.Compression = CompressXz
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = time.Unix(0, 0)
	}
	o.Timestamp = o.Timestamp.UTC()
	return o, nil
}
