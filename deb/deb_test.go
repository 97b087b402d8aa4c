package deb

// Shared test fixtures: a small fake application tree and helpers to read
// produced archives back.

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

func unixEpoch() time.Time { return time.Unix(0, 0).UTC() }

// writeAppTree lays out a minimal built application: the main executable, a
// resource file, a nested directory and the Chromium sandbox helper.
func writeAppTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	write := func(rel, body string, mode os.FileMode) {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(body), mode); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	write("footool", "#!/bin/sh\necho footool\n", 0o755)
	write("chrome-sandbox", "sandbox helper\n", 0o755)
	write("resources/app.asar", "payload\n", 0o644)
	write("LICENSE", "license text\n", 0o644)
	return dir
}

// newTestBuilder stages the fixture tree and returns a builder ready to
// assemble, together with a cleanup-registered working root.
func newTestBuilder(t *testing.T, opts Options) *builder {
	t.Helper()
	norm, err := opts.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	b := &builder{opts: norm, version: fullVersion(norm), root: t.TempDir()}
	if err := b.stageApp(writeAppTree(t)); err != nil {
		t.Fatalf("stageApp failed: %v", err)
	}
	if err := b.stageMetadata(); err != nil {
		t.Fatalf("stageMetadata failed: %v", err)
	}
	return b
}

// writeScript writes a maintainer script fixture and returns its path.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// debMember extracts a named member from an assembled archive.
func debMember(t *testing.T, debBytes []byte, name string) []byte {
	t.Helper()
	arR := ar.NewReader(bytes.NewReader(debBytes))
	for {
		hdr, err := arR.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading ar header: %v", err)
		}
		if hdr.Name == name {
			body, err := io.ReadAll(arR)
			if err != nil {
				t.Fatalf("reading member %s: %v", name, err)
			}
			return body
		}
	}
	t.Fatalf("member %s not found", name)
	return nil
}

// debMemberNames lists the archive members in container order.
func debMemberNames(t *testing.T, debBytes []byte) []string {
	t.Helper()
	var names []string
	arR := ar.NewReader(bytes.NewReader(debBytes))
	for {
		hdr, err := arR.Next()
		if err == io.EOF {
			return names
		}
		if err != nil {
			t.Fatalf("reading ar header: %v", err)
		}
		names = append(names, hdr.Name)
	}
}

// openDataTar decompresses a data.tar member according to its suffix.
func openDataTar(t *testing.T, name string, body []byte) *tar.Reader {
	t.Helper()
	r := bytes.NewReader(body)
	switch {
	case strings.HasSuffix(name, ".xz"):
		xzr, err := xz.NewReader(r)
		if err != nil {
			t.Fatalf("opening xz stream: %v", err)
		}
		return tar.NewReader(xzr)
	case strings.HasSuffix(name, ".gz"):
		gzr, err := gzip.NewReader(r)
		if err != nil {
			t.Fatalf("opening gzip stream: %v", err)
		}
		return tar.NewReader(gzr)
	case strings.HasSuffix(name, ".bz2"):
		return tar.NewReader(bzip2.NewReader(r))
	case strings.HasSuffix(name, ".lzma"):
		lr, err := lzma.NewReader(r)
		if err != nil {
			t.Fatalf("opening lzma stream: %v", err)
		}
		return tar.NewReader(lr)
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			t.Fatalf("opening zstd stream: %v", err)
		}
		return tar.NewReader(zr)
	}
	return tar.NewReader(r)
}

// dataHeaders collects every tar header of the data payload keyed by name.
func dataHeaders(t *testing.T, debBytes []byte) map[string]*tar.Header {
	t.Helper()
	names := debMemberNames(t, debBytes)
	var dataName string
	for _, n := range names {
		if strings.HasPrefix(n, string(PkgDataTar)) {
			dataName = n
		}
	}
	if dataName == "" {
		t.Fatalf("no data.tar member in %v", names)
	}
	tr := openDataTar(t, dataName, debMember(t, debBytes, dataName))
	headers := make(map[string]*tar.Header)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return headers
		}
		if err != nil {
			t.Fatalf("reading data tar: %v", err)
		}
		headers[hdr.Name] = hdr
	}
}

// controlArea extracts the control.tar.gz entries keyed by file name.
func controlArea(t *testing.T, debBytes []byte) map[string]string {
	t.Helper()
	gzr, err := gzip.NewReader(bytes.NewReader(debMember(t, debBytes, string(PkgControlTarGz))))
	if err != nil {
		t.Fatalf("opening control.tar.gz: %v", err)
	}
	defer gzr.Close()
	tr := tar.NewReader(gzr)

	entries := make(map[string]string)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return entries
		}
		if err != nil {
			t.Fatalf("reading control tar: %v", err)
		}
		body, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("reading %s: %v", hdr.Name, err)
		}
		entries[strings.TrimPrefix(hdr.Name, "./")] = string(body)
	}
}
