package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/flyyuan/electron-installer-debian/deb"
	"go.yaml.in/yaml/v3"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: electron-installer-debian <command> [flags]")
		fmt.Println("Commands: build, lint")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		buildPackage(os.Args[2:])
	case "lint":
		lintPackage(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func buildPackage(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	srcDir := fs.String("src", "", "Directory containing the built application")
	outDir := fs.String("out", "dist", "Output directory for the .deb file")
	confPath := fs.String("config", "installer.yaml", "Path to the packaging recipe")
	lint := fs.Bool("lint", false, "Run lintian on the produced package")
	fs.Parse(args)

	if *srcDir == "" {
		fmt.Println("Fatal: -src is required")
		os.Exit(1)
	}

	opts, err := decodeRecipe(*confPath)
	if err != nil {
		fmt.Printf("Fatal: Could not read or parse recipe %s: %v\n", *confPath, err)
		os.Exit(1)
	}
	// The signing key never lives in the recipe file.
	opts.SignKey = os.Getenv("GPG_PRIVATE_KEY")

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Printf("Fatal: Could not create output directory %s: %v\n", *outDir, err)
		os.Exit(1)
	}

	out, err := deb.Build(opts, *srcDir, *outDir)
	if err != nil {
		fmt.Printf("Fatal: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created %s\n", out)

	if *lint {
		reportLintian(out)
	}
}

func lintPackage(args []string) {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: electron-installer-debian lint <package.deb>")
		os.Exit(1)
	}
	reportLintian(fs.Arg(0))
}

func reportLintian(debPath string) {
	res, err := deb.RunLintian(debPath)
	if err != nil {
		var tooling *deb.ToolingError
		if errors.As(err, &tooling) {
			fmt.Printf("Fatal: %s is not installed; install it to validate the package\n", tooling.Tool)
		} else {
			fmt.Printf("Fatal: %v\n", err)
		}
		os.Exit(1)
	}
	if res.Clean() {
		fmt.Println("lintian: no unexpected warnings")
		return
	}
	fmt.Printf("lintian reported %d unexpected warning(s):\n", len(res.Warnings))
	for _, w := range res.Warnings {
		fmt.Println("  " + w)
	}
	os.Exit(1)
}

// decodeRecipe reads the YAML packaging recipe and maps it onto deb.Options.
func decodeRecipe(path string) (deb.Options, error) {
	// Internal DTOs for YAML deserialization.
	type yamlRecipe struct {
		Name               string            `yaml:"name"`
		Version            string            `yaml:"version"`
		Revision           string            `yaml:"revision"`
		Architecture       string            `yaml:"arch"`
		Maintainer         string            `yaml:"maintainer"`
		Homepage           string            `yaml:"homepage"`
		Description        string            `yaml:"description"`
		ProductDescription string            `yaml:"product_description"`
		ProductName        string            `yaml:"product_name"`
		GenericName        string            `yaml:"generic_name"`
		Bin                string            `yaml:"bin"`
		Section            string            `yaml:"section"`
		Priority           string            `yaml:"priority"`
		Depends            []string          `yaml:"depends"`
		Recommends         []string          `yaml:"recommends"`
		Suggests           []string          `yaml:"suggests"`
		Enhances           []string          `yaml:"enhances"`
		PreDepends         []string          `yaml:"pre_depends"`
		Categories         []string          `yaml:"categories"`
		MimeType           []string          `yaml:"mime_type"`
		Icon               map[string]string `yaml:"icon"`
		Scripts            map[string]string `yaml:"scripts"`
		LintianOverrides   []string          `yaml:"lintian_overrides"`
		Compression        string            `yaml:"compression"`
		Timestamp          string            `yaml:"timestamp"`
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return deb.Options{}, err
	}
	var dto yamlRecipe
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return deb.Options{}, err
	}

	// Map DTO to business object.
	opts := deb.Options{
		Name:               dto.Name,
		Version:            dto.Version,
		Revision:           dto.Revision,
		Architecture:       dto.Architecture,
		Maintainer:         dto.Maintainer,
		Homepage:           dto.Homepage,
		Description:        dto.Description,
		ProductDescription: dto.ProductDescription,
		ProductName:        dto.ProductName,
		GenericName:        dto.GenericName,
		Bin:                dto.Bin,
		Section:            dto.Section,
		Priority:           dto.Priority,
		Depends:            dto.Depends,
		Recommends:         dto.Recommends,
		Suggests:           dto.Suggests,
		Enhances:           dto.Enhances,
		PreDepends:         dto.PreDepends,
		Categories:         dto.Categories,
		MimeType:           dto.MimeType,
		Icon:               dto.Icon,
		LintianOverrides:   dto.LintianOverrides,
		Compression:        deb.Compression(dto.Compression),
	}
	if len(dto.Scripts) > 0 {
		opts.Scripts = make(map[deb.MaintainerScript]string, len(dto.Scripts))
		for name, scriptPath := range dto.Scripts {
			opts.Scripts[deb.MaintainerScript(name)] = scriptPath
		}
	}
	if dto.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, dto.Timestamp)
		if err != nil {
			return deb.Options{}, fmt.Errorf("invalid timestamp %q: %w", dto.Timestamp, err)
		}
		opts.Timestamp = ts
	}
	return opts, nil
}
