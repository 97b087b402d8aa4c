package deb

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// appDir is the install prefix of the application payload inside the
// working root.
func (b *builder) appDir() string {
	return filepath.Join(b.root, "usr", "lib", b.opts.Name)
}

// stageApp copies the built application tree from srcDir into the working
// root under usr/lib/<name>, normalizes permission bits, and links the
// executable from usr/bin. The source tree is never modified.
func (b *builder) stageApp(srcDir string) error {
	appDir := b.appDir()
	if err := copyTree(srcDir, appDir); err != nil {
		return err
	}
	if err := b.normalizeTree(appDir); err != nil {
		return err
	}

	// The executable must exist at the prefix root before it is linked,
	// otherwise the package would ship a dangling /usr/bin symlink.
	binSrc := filepath.Join(appDir, b.opts.Bin)
	if _, err := os.Stat(binSrc); err != nil {
		return &IOError{Op: "stat", Path: binSrc, Err: err}
	}

	binDir := filepath.Join(b.root, "usr", "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: binDir, Err: err}
	}
	link := filepath.Join(binDir, b.opts.Bin)
	target := filepath.Join("..", "lib", b.opts.Name, b.opts.Bin)
	if err := os.Symlink(target, link); err != nil {
		return &IOError{Op: "symlink", Path: link, Err: err}
	}
	return nil
}

// copyTree copies every file, directory and symlink under src to dst.
// Destination paths are disjoint per entry, so the copy needs no
// synchronization; it is kept sequential because each package tree is small
// relative to process startup.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &IOError{Op: "walk", Path: path, Err: err}
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return &IOError{Op: "walk", Path: path, Err: err}
		}
		dest := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return &IOError{Op: "mkdir", Path: dest, Err: err}
			}
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return &IOError{Op: "readlink", Path: path, Err: err}
			}
			if err := os.Symlink(target, dest); err != nil {
				return &IOError{Op: "symlink", Path: dest, Err: err}
			}
		default:
			if err := copyFile(path, dest); err != nil {
				return err
			}
		}
		return nil
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &IOError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return &IOError{Op: "stat", Path: src, Err: err}
	}
	mode := os.FileMode(0o644)
	if info.Mode()&0o111 != 0 {
		mode = 0o755
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return &IOError{Op: "create", Path: dst, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &IOError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &IOError{Op: "close", Path: dst, Err: err}
	}
	return nil
}

// normalizeTree walks the staged application and forces policy-compliant
// modes: directories 0755, regular files 0644, executables 0755, and known
// privileged helpers 4755. The package executable is always executable even
// if the source tree lost its bits.
func (b *builder) normalizeTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &IOError{Op: "walk", Path: path, Err: err}
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		mode := os.FileMode(0o644)
		switch {
		case d.IsDir():
			mode = 0o755
		case privilegedBinaries[d.Name()]:
			mode = 0o755 | os.ModeSetuid
		case d.Name() == b.opts.Bin:
			mode = 0o755
		default:
			info, err := d.Info()
			if err != nil {
				return &IOError{Op: "stat", Path: path, Err: err}
			}
			if info.Mode()&0o111 != 0 {
				mode = 0o755
			}
		}
		if err := os.Chmod(path, mode); err != nil {
			return &IOError{Op: "chmod", Path: path, Err: err}
		}
		return nil
	})
}

// SetDirectoryPermissions recursively applies mode to every directory and
// file beneath root. Symlinks are skipped (their permission bits are
// meaningless on Linux). The operation is idempotent: applying it twice
// yields the same resulting bits.
func SetDirectoryPermissions(root string, mode os.FileMode) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &IOError{Op: "walk", Path: path, Err: err}
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if err := os.Chmod(path, mode); err != nil {
			return &IOError{Op: "chmod", Path: path, Err: err}
		}
		return nil
	})
}
