package deb

// ControlField represents a standard field in a Debian control file.
type ControlField string

const (
	FieldPackage       ControlField = "Package"
	FieldVersion       ControlField = "Version"
	FieldArchitecture  ControlField = "Architecture"
	FieldMaintainer    ControlField = "Maintainer"
	FieldInstalledSize ControlField = "Installed-Size"
	FieldDepends       ControlField = "Depends"
	FieldRecommends    ControlField = "Recommends"
	FieldSuggests      ControlField = "Suggests"
	FieldEnhances      ControlField = "Enhances"
	FieldPreDepends    ControlField = "Pre-Depends"
	FieldSection       ControlField = "Section"
	FieldPriority      ControlField = "Priority"
	FieldHomepage      ControlField = "Homepage"
	FieldDescription   ControlField = "Description"
)

// ControlFile represents a standard file found in the control.tar.gz archive.
type ControlFile string

const (
	FileControl ControlFile = "control"
	FileMd5sums ControlFile = "md5sums"
)

// MaintainerScript is one of the four executable hooks dpkg runs during the
// package lifecycle. Any other name in the Scripts option is rejected at
// validation time, so after Validate the key set is closed.
//
// Reference: https://www.debian.org/doc/debian-policy/ch-maintainerscripts.html
type MaintainerScript string

const (
	ScriptPreinst  MaintainerScript = "preinst"
	ScriptPostinst MaintainerScript = "postinst"
	ScriptPrerm    MaintainerScript = "prerm"
	ScriptPostrm   MaintainerScript = "postrm"
)

// maintainerScripts is the closed set of recognized script names, in the
// order they are written to the control archive.
var maintainerScripts = []MaintainerScript{ScriptPreinst, ScriptPostinst, ScriptPrerm, ScriptPostrm}

// PackageFile represents a standard member of the .deb archive (ar format).
type PackageFile string

const (
	PkgDebianBinary PackageFile = "debian-binary"
	PkgControlTarGz PackageFile = "control.tar.gz"
	PkgDataTar      PackageFile = "data.tar"

	// PkgGpgOrigin is the detached origin signature member appended by
	// debsigs-style signing. Not part of the fixed three-member layout;
	// always written last.
	PkgGpgOrigin PackageFile = "_gpgorigin"
)

// debianBinaryVersion is the content of the format-version marker, the
// mandatory first member of the archive.
//
// Reference: https://manpages.debian.org/unstable/dpkg-dev/deb.5.en.html#FORMAT
const debianBinaryVersion = "2.0\n"

// Compression selects the codec for the data.tar payload.
// The control payload is always gzip, which every dpkg understands.
type Compression string

const (
	CompressXz    Compression = "xz"
	CompressGzip  Compression = "gzip"
	CompressBzip2 Compression = "bzip2"
	CompressLzma  Compression = "lzma"
	CompressZstd  Compression = "zstd"
	CompressNone  Compression = "none"
)

// extension returns the data.tar member suffix for the codec.
func (c Compression) extension() string {
	switch c {
	case CompressXz:
		return ".xz"
	case CompressGzip:
		return ".gz"
	case CompressBzip2:
		return ".bz2"
	case CompressLzma:
		return ".lzma"
	case CompressZstd:
		return ".zst"
	}
	return ""
}

// privilegedBinaries lists base names that must be installed setuid root.
// Chromium's sandbox helper refuses to start unless it is mode 4755 root:root.
var privilegedBinaries = map[string]bool{
	"chrome-sandbox": true,
}
