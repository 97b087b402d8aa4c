// Package deb builds Debian binary packages (.deb) from an application
// directory and a declarative option set.
//
// # Design Philosophy
//
// The package implements the whole assembly pipeline in pure Go, without
// shelling out to 'dpkg-deb' or 'fakeroot': option validation, version
// normalization, filesystem staging with deterministic permission bits,
// control metadata synthesis, and final ar/tar container assembly. External
// tools are only ever consulted after the fact (lintian, as a pass/fail
// oracle).
//
// # Features
//
//   - Validate and normalize packaging options eagerly, before any
//     filesystem mutation.
//   - Rewrite semantic pre-release versions into Debian '~' versions so they
//     sort before their release.
//   - Stage the application tree under an isolated working root with
//     policy-compliant ownership and modes, including setuid sandbox
//     helpers.
//   - Generate control file, maintainer scripts, md5sums, changelog,
//     copyright, desktop entry, MIME registration, icons and lintian
//     overrides.
//   - Assemble data.tar compressed with xz, gzip, bzip2, lzma, zstd or left
//     uncompressed, joined with a gzip control.tar into the final archive.
//   - Produce byte-identical output for identical inputs: archive
//     timestamps are pinned and every directory walk is sorted.
package deb
