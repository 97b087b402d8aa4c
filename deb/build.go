package deb

import (
	"fmt"
	"os"
	"path/filepath"
)

// builder carries the state of one package build: the normalized options,
// the resolved Debian version, and the staged working root.
type builder struct {
	opts    Options
	version string
	root    string
}

// Build runs the whole assembly pipeline: validate and normalize opts, gate
// on the process umask, stage srcDir into an isolated working root, generate
// the control metadata, and assemble the final archive in destDir.
//
// On success it returns the path of the produced .deb, named
// <name>_<version>_<architecture>.deb. On failure it returns one of the
// typed errors (*ValidationError, *EnvironmentError, *IOError) and leaves no
// partial file in destDir. The working root is removed on every exit path.
func Build(opts Options, srcDir, destDir string) (string, error) {
	norm, err := opts.Validate()
	if err != nil {
		return "", err
	}

	// The umask is captured exactly once, before any filesystem mutation.
	if err := checkUmask(captureUmask(), os.Stderr); err != nil {
		return "", err
	}

	work, err := os.MkdirTemp("", norm.Name+"-deb-")
	if err != nil {
		return "", &IOError{Op: "mkdir", Path: os.TempDir(), Err: err}
	}
	defer os.RemoveAll(work)

	b := &builder{opts: norm, version: fullVersion(norm), root: work}

	if err := b.stageApp(srcDir); err != nil {
		return "", err
	}
	if err := b.stageMetadata(); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_%s_%s.deb", norm.Name, b.version, norm.Architecture)
	out := filepath.Join(destDir, filename)

	// Assemble into a hidden temp file and rename, so an aborted build
	// never leaves a partial .deb at the destination.
	tmp, err := os.CreateTemp(destDir, "."+filename+".")
	if err != nil {
		return "", &IOError{Op: "create", Path: destDir, Err: err}
	}
	if _, err := b.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", &IOError{Op: "close", Path: tmp.Name(), Err: err}
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", &IOError{Op: "chmod", Path: tmp.Name(), Err: err}
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		os.Remove(tmp.Name())
		return "", &IOError{Op: "rename", Path: out, Err: err}
	}
	return out, nil
}
