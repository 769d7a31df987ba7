package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Package marker files. A directory holding either one is a package.
const (
	PackageMarker     = "__init__.py"
	StubPackageMarker = "__init__.pyi"
)

// ErrNoPackage is returned when the source directory contains no package.
var ErrNoPackage = errors.New("no package found")

// Package is the top-level package found under a source directory.
type Package struct {
	Name   string // directory name, also the importable name
	Dir    string // absolute path to the package directory
	SrcDir string // absolute path to the source directory
}

// FindPackage returns the first directory under srcDir that contains a
// package marker file. Entries are examined in lexical order.
func FindPackage(srcDir string) (*Package, error) {
	absSrc, err := filepath.Abs(srcDir)
	if err != nil {
		return nil, fmt.Errorf("resolving source path: %w", err)
	}

	entries, err := os.ReadDir(absSrc)
	if err != nil {
		return nil, fmt.Errorf("reading source directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(absSrc, entry.Name())
		if fileExists(filepath.Join(dir, PackageMarker)) || fileExists(filepath.Join(dir, StubPackageMarker)) {
			return &Package{Name: entry.Name(), Dir: dir, SrcDir: absSrc}, nil
		}
	}

	return nil, fmt.Errorf("%w in %s", ErrNoPackage, absSrc)
}

// FindStubs walks root and returns every file with the given extension
// (for example ".pyi"), in lexical walk order.
func FindStubs(root, ext string) ([]string, error) {
	var stubs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}

		if d.IsDir() && path != root && skipDir(d.Name()) {
			return fs.SkipDir
		}

		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ext) {
			stubs = append(stubs, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", root, err)
	}

	return stubs, nil
}

// skipDir reports whether a directory never holds package sources.
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "__pycache__" || name == "node_modules"
}

// fileExists checks if a path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
