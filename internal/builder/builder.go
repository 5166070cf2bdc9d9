package builder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/qobs-build/imgmake/internal/builder/gen"
	"github.com/qobs-build/imgmake/internal/msg"
)

type Builder struct {
	cfg       *Config
	basedir   string
	env       ConfigEnv
	overrides []string
}

// NewBuilderInDirectory loads Imgmake.toml from path, or the default target list when there is none
func NewBuilderInDirectory(path string) (*Builder, error) {
	var err error
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", path)
	}

	env := NewConfigEnv(path)
	cfg, err := ParseConfigFromFile(filepath.Join(path, ConfigFilename), env)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	return &Builder{cfg: cfg, basedir: path, env: env}, nil
}

func (b *Builder) Dir() string     { return b.basedir }
func (b *Builder) Config() *Config { return b.cfg }

// SetTargets replaces the configured names and disables discovery
func (b *Builder) SetTargets(names []string) error {
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			return err
		}
	}
	b.overrides = slices.Clone(names)
	return nil
}

// Targets returns the configured names followed by the discovered ones
func (b *Builder) Targets() ([]string, error) {
	if b.overrides != nil {
		return slices.Clone(b.overrides), nil
	}

	names := slices.Clone(b.cfg.Targets.Names)
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			msg.Warn("target %q is listed more than once in %s", name, ConfigFilename)
		}
		seen[name] = true
	}

	discovered, err := discoverTargets(b.basedir, b.cfg.Targets.Discover)
	if err != nil {
		return nil, err
	}
	for _, name := range discovered {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	return names, nil
}

// Render returns the generated build file and its default file name
func (b *Builder) Render(kind string) (text, buildFile string, err error) {
	g, err := gen.New(kind)
	if err != nil {
		return "", "", err
	}

	names, err := b.Targets()
	if err != nil {
		return "", "", err
	}
	for _, name := range names {
		g.AddTarget(name)
	}

	return g.Generate(), g.BuildFile(), nil
}

// OutputPath resolves where the build file goes: output, then project.output, then the generator's default
func (b *Builder) OutputPath(output, buildFile string) string {
	if output == "" {
		output = b.cfg.Project.Output
	}
	if output == "" {
		output = buildFile
	}
	if filepath.IsAbs(output) {
		return filepath.Clean(output)
	}
	return filepath.Join(b.basedir, output)
}

// Generate renders the build file and replaces the file at the output path with it
func (b *Builder) Generate(kind, output string) (string, error) {
	text, buildFile, err := b.Render(kind)
	if err != nil {
		return "", err
	}

	path := b.OutputPath(output, buildFile)
	if err := writeFileAtomic(path, []byte(text), 0o644); err != nil {
		return path, fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
