package deb

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStageAppLayout(t *testing.T) {
	src := writeAppTree(t)
	b := &builder{opts: mustValidate(t, validOptions()), root: t.TempDir()}
	if err := b.stageApp(src); err != nil {
		t.Fatalf("stageApp failed: %v", err)
	}

	app := filepath.Join(b.root, "usr", "lib", "footool")
	if _, err := os.Stat(filepath.Join(app, "resources", "app.asar")); err != nil {
		t.Errorf("resource not staged: %v", err)
	}

	link := filepath.Join(b.root, "usr", "bin", "footool")
	target, err := os.Readlink(link)
	if err != nil {
		t.Fatalf("bin symlink missing: %v", err)
	}
	if target != filepath.Join("..", "lib", "footool", "footool") {
		t.Errorf("bin symlink target = %q", target)
	}
}

func TestStageAppModes(t *testing.T) {
	src := writeAppTree(t)
	// Drop the exec bit on the main binary; staging must restore it.
	if err := os.Chmod(filepath.Join(src, "footool"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := &builder{opts: mustValidate(t, validOptions()), root: t.TempDir()}
	if err := b.stageApp(src); err != nil {
		t.Fatalf("stageApp failed: %v", err)
	}
	app := filepath.Join(b.root, "usr", "lib", "footool")

	cases := map[string]os.FileMode{
		"footool":            0o755,
		"chrome-sandbox":     0o755 | os.ModeSetuid,
		"resources/app.asar": 0o644,
		"LICENSE":            0o644,
	}
	for rel, want := range cases {
		info, err := os.Stat(filepath.Join(app, rel))
		if err != nil {
			t.Fatalf("stat %s: %v", rel, err)
		}
		if got := info.Mode(); got != want {
			t.Errorf("%s mode = %v, want %v", rel, got, want)
		}
	}
}

func TestStageAppMissingExecutable(t *testing.T) {
	o := validOptions()
	o.Bin = "no-such-binary"
	b := &builder{opts: mustValidate(t, o), root: t.TempDir()}

	err := b.stageApp(writeAppTree(t))
	if err == nil {
		t.Fatal("expected error for executable missing from the source tree")
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "no-such-binary") {
		t.Errorf("error does not name the missing executable: %v", err)
	}

	// No dangling symlink may be left in the staged tree.
	if _, err := os.Lstat(filepath.Join(b.root, "usr", "bin", "no-such-binary")); err == nil {
		t.Error("dangling /usr/bin symlink was staged")
	}
}

func TestStageAppLeavesSourceUntouched(t *testing.T) {
	src := writeAppTree(t)
	if err := os.Chmod(filepath.Join(src, "resources", "app.asar"), 0o600); err != nil {
		t.Fatal(err)
	}

	b := &builder{opts: mustValidate(t, validOptions()), root: t.TempDir()}
	if err := b.stageApp(src); err != nil {
		t.Fatalf("stageApp failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(src, "resources", "app.asar"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("source file mode changed to %v", info.Mode().Perm())
	}
}

func TestSetDirectoryPermissions(t *testing.T) {
	root := writeAppTree(t)

	check := func() {
		t.Helper()
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if info.Mode().Perm() != 0o755 {
				t.Errorf("%s mode = %v, want 0755", path, info.Mode().Perm())
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	if err := SetDirectoryPermissions(root, 0o755); err != nil {
		t.Fatalf("SetDirectoryPermissions failed: %v", err)
	}
	check()

	// Idempotence: a second application yields the same bits.
	if err := SetDirectoryPermissions(root, 0o755); err != nil {
		t.Fatalf("second SetDirectoryPermissions failed: %v", err)
	}
	check()
}

func mustValidate(t *testing.T, o Options) Options {
	t.Helper()
	norm, err := o.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	return norm
}
