package deb

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// describe resolves the synopsis and extended body of the package
// description. Description is the synopsis, ProductDescription the body;
// when only one is configured it serves both roles (the synopsis is then its
// first line).
func describe(o Options) (synopsis, body string) {
	text := o.Description
	if o.ProductDescription != "" {
		if text == "" {
			text = o.ProductDescription
		} else {
			text = text + "\n" + o.ProductDescription
		}
	}
	lines := strings.SplitN(text, "\n", 2)
	if len(lines) == 1 {
		return lines[0], ""
	}
	return lines[0], lines[1]
}

// generateControlFile renders the 'control' file with fields in canonical
// order. installedBytes is the summed size of the staged payload; the
// Installed-Size field is in kilobytes, rounded up.
func (b *builder) generateControlFile(installedBytes int64) string {
	var sb strings.Builder

	writeField := func(field ControlField, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%s: %s\n", field, value)
		}
	}
	writeRel := func(field ControlField, items []string) {
		if len(items) > 0 {
			writeField(field, strings.Join(items, ", "))
		}
	}

	o := b.opts
	writeField(FieldPackage, o.Name)
	writeField(FieldVersion, b.version)
	writeField(FieldArchitecture, o.Architecture)
	writeField(FieldMaintainer, o.Maintainer)
	writeField(FieldInstalledSize, fmt.Sprintf("%d", (installedBytes+1023)/1024))
	writeRel(FieldDepends, o.Depends)
	writeRel(FieldRecommends, o.Recommends)
	writeRel(FieldSuggests, o.Suggests)
	writeRel(FieldEnhances, o.Enhances)
	writeRel(FieldPreDepends, o.PreDepends)
	writeField(FieldSection, o.Section)
	writeField(FieldPriority, o.Priority)
	writeField(FieldHomepage, o.Homepage)

	// Description folding: continuation lines are indented by exactly one
	// space, blank lines become a lone dot.
	//
	// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#s-f-description
	synopsis, body := describe(o)
	writeField(FieldDescription, synopsis)
	if body != "" {
		for _, line := range strings.Split(body, "\n") {
			if strings.TrimSpace(line) == "" {
				sb.WriteString(" .\n")
			} else if strings.HasPrefix(line, " ") {
				sb.WriteString(line + "\n")
			} else {
				sb.WriteString(" " + line + "\n")
			}
		}
	}

	return sb.String()
}

// readScript loads a configured maintainer script body. A missing source
// file aborts the build.
func readScript(path string) ([]byte, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return body, nil
}

// stageMetadata generates the data-area metadata files directly into the
// staged tree: changelog, copyright, lintian overrides, desktop entry, MIME
// registration and icons. Everything here ends up in data.tar, not in the
// control archive, which is where lintian expects it.
func (b *builder) stageMetadata() error {
	if err := b.stageDocs(); err != nil {
		return err
	}
	if len(b.opts.LintianOverrides) > 0 {
		content := strings.Join(b.opts.LintianOverrides, "\n") + "\n"
		path := filepath.Join(b.root, "usr", "share", "lintian", "overrides", b.opts.Name)
		if err := stageFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	if len(b.opts.Categories) > 0 || len(b.opts.MimeType) > 0 {
		path := filepath.Join(b.root, "usr", "share", "applications", b.opts.Name+".desktop")
		if err := stageFile(path, []byte(b.desktopEntry()), 0o644); err != nil {
			return err
		}
	}
	if len(b.opts.MimeType) > 0 {
		path := filepath.Join(b.root, "usr", "share", "mime", "packages", b.opts.Name+".xml")
		if err := stageFile(path, []byte(b.mimeRegistration()), 0o644); err != nil {
			return err
		}
	}
	return b.stageIcons()
}

// stageDocs writes the Debian changelog and copyright under
// usr/share/doc/<name>.
func (b *builder) stageDocs() error {
	docDir := filepath.Join(b.root, "usr", "share", "doc", b.opts.Name)

	var gz strings.Builder
	gw, err := gzip.NewWriterLevel(&gz, gzip.BestCompression)
	if err != nil {
		return &IOError{Op: "gzip", Path: docDir, Err: err}
	}
	if _, err := gw.Write([]byte(b.changelog())); err != nil {
		return &IOError{Op: "gzip", Path: docDir, Err: err}
	}
	if err := gw.Close(); err != nil {
		return &IOError{Op: "gzip", Path: docDir, Err: err}
	}
	if err := stageFile(filepath.Join(docDir, "changelog.Debian.gz"), []byte(gz.String()), 0o644); err != nil {
		return err
	}
	return stageFile(filepath.Join(docDir, "copyright"), []byte(b.copyright()), 0o644)
}

// changelog renders a minimal single-stanza Debian changelog.
//
// Reference: https://www.debian.org/doc/debian-policy/ch-source.html#debian-changelog-debian-changelog
func (b *builder) changelog() string {
	date := b.opts.Timestamp.Format("Mon, 02 Jan 2006 15:04:05 -0700")
	return fmt.Sprintf("%s (%s) unstable; urgency=medium\n\n  * Upstream release %s.\n\n -- %s  %s\n",
		b.opts.Name, b.version, b.opts.Version, b.opts.Maintainer, date)
}

// copyright renders a machine-readable copyright file.
//
// Reference: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/
func (b *builder) copyright() string {
	var sb strings.Builder
	sb.WriteString("Format: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/\n")
	fmt.Fprintf(&sb, "Upstream-Name: %s\n", b.opts.Name)
	if b.opts.Homepage != "" {
		fmt.Fprintf(&sb, "Source: %s\n", b.opts.Homepage)
	}
	sb.WriteString("\nFiles: *\n")
	fmt.Fprintf(&sb, "Copyright: %d %s\n", b.opts.Timestamp.Year(), b.opts.Maintainer)
	sb.WriteString("License: see the application's license terms\n")
	return sb.String()
}

// desktopEntry renders the freedesktop launcher for the application.
//
// Reference: https://specifications.freedesktop.org/desktop-entry-spec/latest/
func (b *builder) desktopEntry() string {
	o := b.opts
	synopsis, _ := describe(o)

	var sb strings.Builder
	sb.WriteString("[Desktop Entry]\n")
	fmt.Fprintf(&sb, "Name=%s\n", o.ProductName)
	if o.GenericName != "" {
		fmt.Fprintf(&sb, "GenericName=%s\n", o.GenericName)
	}
	fmt.Fprintf(&sb, "Comment=%s\n", synopsis)
	if len(o.MimeType) > 0 {
		fmt.Fprintf(&sb, "Exec=%s %%U\n", o.Bin)
	} else {
		fmt.Fprintf(&sb, "Exec=%s\n", o.Bin)
	}
	fmt.Fprintf(&sb, "Icon=%s\n", o.Name)
	sb.WriteString("Type=Application\n")
	sb.WriteString("Terminal=false\n")
	if len(o.Categories) > 0 {
		fmt.Fprintf(&sb, "Categories=%s;\n", strings.Join(o.Categories, ";"))
	}
	if len(o.MimeType) > 0 {
		fmt.Fprintf(&sb, "MimeType=%s;\n", strings.Join(o.MimeType, ";"))
	}
	return sb.String()
}

// mimeRegistration renders the shared-mime-info registration for the MIME
// types the application handles.
func (b *builder) mimeRegistration() string {
	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString("<mime-info xmlns=\"http://www.freedesktop.org/standards/shared-mime-info\">\n")
	for _, mt := range b.opts.MimeType {
		fmt.Fprintf(&sb, "  <mime-type type=\"%s\">\n", mt)
		fmt.Fprintf(&sb, "    <comment>%s document</comment>\n", b.opts.ProductName)
		sb.WriteString("  </mime-type>\n")
	}
	sb.WriteString("</mime-info>\n")
	return sb.String()
}

// stageIcons copies configured icons into the hicolor theme, keyed by size
// label. The "scalable" label maps to an SVG; raster labels keep the source
// extension.
func (b *builder) stageIcons() error {
	for size, src := range b.opts.Icon {
		ext := filepath.Ext(src)
		if size == "scalable" {
			ext = ".svg"
		} else if ext == "" {
			ext = ".png"
		}
		body, err := os.ReadFile(src)
		if err != nil {
			return &IOError{Op: "read", Path: src, Err: err}
		}
		dest := filepath.Join(b.root, "usr", "share", "icons", "hicolor", size, "apps", b.opts.Name+ext)
		if err := stageFile(dest, body, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// stageFile writes a generated file into the staged tree, creating parent
// directories as needed.
func stageFile(path string, body []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	if err := os.WriteFile(path, body, mode); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
