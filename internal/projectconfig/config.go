// Package projectconfig provides the ProjectConfig struct and loader for
// .pyidoc.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pyidoc/pyidoc/internal/utils"
	"github.com/pyidoc/pyidoc/internal/validation"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the project configuration file.
const FileName = ".pyidoc.yaml"

// Default values for project configuration. These are the single source of
// truth: New() references them and no other code should duplicate them.
const (
	DefaultSourceDir  = "src"
	DefaultScratchDir = "doctests_temp"

	DefaultStubExtension = ".pyi"
	DefaultTestPrefix    = "test_"
)

// maxSearchDepth bounds how far Load walks up looking for FileName.
const maxSearchDepth = 10

// PathsConfig holds the source and scratch directories.
type PathsConfig struct {
	Source  string `yaml:"source,omitempty"`
	Scratch string `yaml:"scratch,omitempty"`
}

// StubsConfig holds declaration file settings.
type StubsConfig struct {
	Extension  string `yaml:"extension,omitempty"`
	TestPrefix string `yaml:"test_prefix,omitempty"`
}

// PhasesConfig switches the two testing phases on or off.
type PhasesConfig struct {
	Doctests *bool `yaml:"doctests,omitempty"`
	Stubs    *bool `yaml:"stubs,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .pyidoc.yaml.
type ProjectConfig struct {
	Paths PathsConfig `yaml:"paths,omitempty"`
	// Python is the interpreter to run. Empty means python3, then python.
	Python  string       `yaml:"python,omitempty"`
	Stubs   StubsConfig  `yaml:"stubs,omitempty"`
	Docs    []string     `yaml:"docs,omitempty"`
	Phases  PhasesConfig `yaml:"phases,omitempty"`
	Verbose *bool        `yaml:"verbose,omitempty"`

	// Path is the file the configuration was loaded from, empty for defaults.
	Path string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Source:  DefaultSourceDir,
			Scratch: DefaultScratchDir,
		},
		Stubs: StubsConfig{
			Extension:  DefaultStubExtension,
			TestPrefix: DefaultTestPrefix,
		},
		Phases: PhasesConfig{
			Doctests: utils.Ptr(true),
			Stubs:    utils.Ptr(true),
		},
		Verbose: utils.Ptr(false),
	}
}

// Load finds .pyidoc.yaml by walking up from startDir (max 10 levels),
// validates and unmarshals it, and fills in missing fields with defaults.
// Relative paths in the file are resolved against the file's directory.
// If no config file is found, returns defaults with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	if errs := validation.ValidateConfigBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid %s:\n  %s", path, strings.Join(errs, "\n  "))
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	fileCfg.Paths.Source = utils.ResolvePath(fileCfg.Paths.Source, baseDir)
	fileCfg.Paths.Scratch = utils.ResolvePath(fileCfg.Paths.Scratch, baseDir)
	fileCfg.Docs = utils.ResolvePaths(fileCfg.Docs, baseDir)

	// Merge file values onto defaults.
	mergeConfig(cfg, &fileCfg)
	cfg.Path = path
	return cfg, nil
}

// findConfigFile walks up from dir looking for .pyidoc.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) (string, []byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < maxSearchDepth; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Source != "" {
		dst.Paths.Source = src.Paths.Source
	}
	if src.Paths.Scratch != "" {
		dst.Paths.Scratch = src.Paths.Scratch
	}

	if src.Python != "" {
		dst.Python = src.Python
	}

	// Stubs
	if src.Stubs.Extension != "" {
		dst.Stubs.Extension = src.Stubs.Extension
	}
	if src.Stubs.TestPrefix != "" {
		dst.Stubs.TestPrefix = src.Stubs.TestPrefix
	}

	if len(src.Docs) > 0 {
		dst.Docs = src.Docs
	}

	// Phases
	if src.Phases.Doctests != nil {
		dst.Phases.Doctests = src.Phases.Doctests
	}
	if src.Phases.Stubs != nil {
		dst.Phases.Stubs = src.Phases.Stubs
	}

	if src.Verbose != nil {
		dst.Verbose = src.Verbose
	}
}
