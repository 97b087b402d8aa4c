package deb

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// newCompressor wraps w with the configured codec. Every codec is used as a
// pure byte-stream transformer; zstd is pinned to a single encoder stream so
// output does not depend on host concurrency.
func newCompressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressGzip:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case CompressXz:
		return xz.NewWriter(w)
	case CompressLzma:
		return lzma.NewWriter(w)
	case CompressBzip2:
		return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	case CompressZstd:
		return zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
	case CompressNone:
		return nopWriteCloser{w}, nil
	}
	return nil, fmt.Errorf("unsupported compression %q", c)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// tarHeader builds an archive entry with ownership forced to root:root and
// the modification time pinned to the build timestamp. name is the
// ./-prefixed archive path.
func (b *builder) tarHeader(name string, size, mode int64, typeflag byte) *tar.Header {
	return &tar.Header{
		Typeflag: typeflag,
		Name:     name,
		Size:     size,
		Mode:     mode,
		Uid:      0,
		Gid:      0,
		Uname:    "root",
		Gname:    "root",
		ModTime:  b.opts.Timestamp,
		Format:   tar.FormatGNU,
	}
}

// buildDataArchive tars the staged tree into w through the configured codec.
// It returns the MD5 checksum of every regular file keyed by archive path,
// and the summed payload size feeding Installed-Size. The walk is lexical,
// so identical trees produce identical archives.
func (b *builder) buildDataArchive(w io.Writer) (map[string]string, int64, error) {
	comp, err := newCompressor(w, b.opts.Compression)
	if err != nil {
		return nil, 0, err
	}
	tw := tar.NewWriter(comp)

	md5Map := make(map[string]string)
	var installedSize int64

	walkErr := filepath.WalkDir(b.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &IOError{Op: "walk", Path: path, Err: err}
		}
		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return &IOError{Op: "walk", Path: path, Err: err}
		}
		name := "./"
		if rel != "." {
			name += filepath.ToSlash(rel)
		}

		switch {
		case d.IsDir():
			if !strings.HasSuffix(name, "/") {
				name += "/"
			}
			hdr := b.tarHeader(name, 0, 0o755, tar.TypeDir)
			if err := tw.WriteHeader(hdr); err != nil {
				return &IOError{Op: "tar", Path: name, Err: err}
			}
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return &IOError{Op: "readlink", Path: path, Err: err}
			}
			hdr := b.tarHeader(name, 0, 0o777, tar.TypeSymlink)
			hdr.Linkname = filepath.ToSlash(target)
			if err := tw.WriteHeader(hdr); err != nil {
				return &IOError{Op: "tar", Path: name, Err: err}
			}
		default:
			content, err := os.ReadFile(path)
			if err != nil {
				return &IOError{Op: "read", Path: path, Err: err}
			}
			sum := md5.Sum(content)
			md5Map[strings.TrimPrefix(name, "./")] = hex.EncodeToString(sum[:])
			installedSize += int64(len(content))

			hdr := b.tarHeader(name, int64(len(content)), b.entryMode(path, d), tar.TypeReg)
			if err := tw.WriteHeader(hdr); err != nil {
				return &IOError{Op: "tar", Path: name, Err: err}
			}
			if _, err := tw.Write(content); err != nil {
				return &IOError{Op: "tar", Path: name, Err: err}
			}
		}
		return nil
	})
	if walkErr != nil {
		return nil, 0, walkErr
	}

	if err := tw.Close(); err != nil {
		return nil, 0, &IOError{Op: "tar", Path: b.root, Err: err}
	}
	if err := comp.Close(); err != nil {
		return nil, 0, &IOError{Op: "compress", Path: b.root, Err: err}
	}
	return md5Map, installedSize, nil
}

// entryMode decides the archive mode of a regular file. Privileged sandbox
// helpers are recorded setuid root regardless of their on-disk bits; other
// files keep the staged 0755/0644 split.
func (b *builder) entryMode(path string, d fs.DirEntry) int64 {
	if privilegedBinaries[d.Name()] {
		return 0o4755
	}
	if info, err := d.Info(); err == nil && info.Mode()&0o111 != 0 {
		return 0o755
	}
	return 0o644
}

// buildControlArchive writes control.tar.gz: the control file, md5sums, and
// the configured maintainer scripts under their canonical names, mode 0755.
func (b *builder) buildControlArchive(w io.Writer, md5Map map[string]string, installedSize int64) error {
	gw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(gw)

	writeEntry := func(name string, content []byte, mode int64) error {
		hdr := b.tarHeader("./"+name, int64(len(content)), mode, tar.TypeReg)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err := tw.Write(content)
		return err
	}

	if err := writeEntry(string(FileControl), []byte(b.generateControlFile(installedSize)), 0o644); err != nil {
		return fmt.Errorf("writing control: %w", err)
	}
	if err := writeEntry(string(FileMd5sums), []byte(generateMd5sums(md5Map)), 0o644); err != nil {
		return fmt.Errorf("writing md5sums: %w", err)
	}

	for _, script := range maintainerScripts {
		src, ok := b.opts.Scripts[script]
		if !ok {
			continue
		}
		body, err := readScript(src)
		if err != nil {
			return err
		}
		if err := writeEntry(string(script), body, 0o755); err != nil {
			return fmt.Errorf("writing %s: %w", script, err)
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gw.Close()
}

// generateMd5sums renders the md5sums control file, sorted by path.
func generateMd5sums(md5Map map[string]string) string {
	paths := make([]string, 0, len(md5Map))
	for path := range md5Map {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var sb strings.Builder
	for _, path := range paths {
		fmt.Fprintf(&sb, "%s  %s\n", md5Map[path], path)
	}
	return sb.String()
}

// WriteTo assembles the final .deb container into w: format-version marker,
// gzip control payload, compressed data payload, in that fixed order,
// followed by the optional origin signature. It satisfies io.WriterTo.
func (b *builder) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	// Data first: the control archive needs the md5 sums and payload size.
	dataBuf := new(bytes.Buffer)
	md5Map, installedSize, err := b.buildDataArchive(dataBuf)
	if err != nil {
		return cw.n, fmt.Errorf("building data archive: %w", err)
	}

	controlBuf := new(bytes.Buffer)
	if err := b.buildControlArchive(controlBuf, md5Map, installedSize); err != nil {
		return cw.n, fmt.Errorf("building control archive: %w", err)
	}

	marker := []byte(debianBinaryVersion)
	dataName := string(PkgDataTar) + b.opts.Compression.extension()

	arW := ar.NewWriter(cw)
	if err := arW.WriteGlobalHeader(); err != nil {
		return cw.n, fmt.Errorf("writing ar global header: %w", err)
	}
	if err := b.addBufferToAr(arW, string(PkgDebianBinary), marker); err != nil {
		return cw.n, fmt.Errorf("writing %s: %w", PkgDebianBinary, err)
	}
	if err := b.addBufferToAr(arW, string(PkgControlTarGz), controlBuf.Bytes()); err != nil {
		return cw.n, fmt.Errorf("writing %s: %w", PkgControlTarGz, err)
	}
	if err := b.addBufferToAr(arW, dataName, dataBuf.Bytes()); err != nil {
		return cw.n, fmt.Errorf("writing %s: %w", dataName, err)
	}

	if b.opts.SignKey != "" {
		sig, err := signMembers(b.opts.SignKey, marker, controlBuf.Bytes(), dataBuf.Bytes())
		if err != nil {
			return cw.n, fmt.Errorf("signing package: %w", err)
		}
		if err := b.addBufferToAr(arW, string(PkgGpgOrigin), sig); err != nil {
			return cw.n, fmt.Errorf("writing %s: %w", PkgGpgOrigin, err)
		}
	}

	return cw.n, nil
}

// countingWriter wraps an io.Writer and counts the bytes written.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// addBufferToAr writes a named byte slice as a member of the AR archive,
// mode 0644 root:root, timestamp pinned to the build timestamp.
func (b *builder) addBufferToAr(w *ar.Writer, name string, body []byte) error {
	header := &ar.Header{
		Name:    name,
		Size:    int64(len(body)),
		Mode:    0o644,
		ModTime: b.opts.Timestamp,
	}
	if err := w.WriteHeader(header); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}
