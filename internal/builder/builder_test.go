package builder

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/qobs-build/imgmake/internal/builder/gen"
	"github.com/qobs-build/imgmake/internal/msg"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func quiet(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldOut, oldNoColor := msg.Out, color.NoColor
	msg.Out, color.NoColor = &buf, true
	t.Cleanup(func() { msg.Out, color.NoColor = oldOut, oldNoColor })
	return &buf
}

func TestDefaultTargets(t *testing.T) {
	b, err := NewBuilderInDirectory(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	names, err := b.Targets()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"ubuntu", "busybox"}) {
		t.Errorf("Targets() = %v", names)
	}
}

func TestGenerateDefault(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBuilderInDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}

	path, err := b.Generate(gen.KindMake, "")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(b.Dir(), "Makefile") {
		t.Errorf("path = %q", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want, err := os.ReadFile(filepath.Join("gen", "testdata", "ubuntu_busybox.Makefile"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Makefile mismatch:\n%s", got)
	}
}

func TestGenerateIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"Makefile": "stale contents that are much longer than the real output would be\n" + strings.Repeat("x", 4096)})

	b, err := NewBuilderInDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	path, err := b.Generate(gen.KindMake, "")
	if err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(path)
	if _, err := b.Generate(gen.KindMake, ""); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(path)

	if !bytes.Equal(first, second) {
		t.Error("second run changed the file")
	}
	if string(first) != gen.Makefile(DefaultTargets) {
		t.Errorf("file was not fully rewritten:\n%s", first)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the Makefile, found %d entries", len(entries))
	}
}

func TestGenerateOutputPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		ConfigFilename: "[project]\noutput = \"images.mk\"\n[targets]\nnames = [\"alpine\"]\n",
	})
	b, err := NewBuilderInDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}

	path, err := b.Generate(gen.KindMake, "")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "images.mk" {
		t.Errorf("config output ignored, wrote %s", path)
	}

	path, err = b.Generate(gen.KindNinja, "out.ninja")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "out.ninja" {
		t.Errorf("explicit output ignored, wrote %s", path)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "build alpine_test.docker: image alpine_dockerfile\n") {
		t.Errorf("unexpected ninja file:\n%s", data)
	}
}

func TestGenerateWriteFailureNamesPath(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("directory permissions are not enforced")
	}
	dir := t.TempDir()
	b, err := NewBuilderInDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}

	locked := filepath.Join(dir, "locked")
	if err := os.Mkdir(locked, 0o555); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(locked, "Makefile")

	_, err = b.Generate(gen.KindMake, target)
	if err == nil {
		t.Fatal("expected a write error")
	}
	if !strings.Contains(err.Error(), target) {
		t.Errorf("error %q does not name %s", err, target)
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Errorf("partial file left behind: %v", statErr)
	}
}

func TestGenerateRenameFailureKeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBuilderInDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "Makefile")
	const old = "build: stale_test.docker\n"
	if err := os.WriteFile(target, []byte(old), 0o644); err != nil {
		t.Fatal(err)
	}

	rename = func(string, string) error { return errors.New("disk full") }
	t.Cleanup(func() { rename = os.Rename })

	_, err = b.Generate(gen.KindMake, target)
	if err == nil {
		t.Fatal("expected a write error")
	}
	if !strings.Contains(err.Error(), target) || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error %q does not name %s and its cause", err, target)
	}
	if got, _ := os.ReadFile(target); string(got) != old {
		t.Errorf("Makefile = %q, want the old content %q", got, old)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}

func TestGenerateFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits only")
	}
	dir := t.TempDir()
	b, err := NewBuilderInDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}

	fresh, err := b.Generate(gen.KindMake, "")
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(fresh)
	if err != nil {
		t.Fatal(err)
	}
	if extra := info.Mode().Perm() &^ 0o644; extra != 0 {
		t.Errorf("new file mode %v has bits outside 0644", info.Mode().Perm())
	}

	private := filepath.Join(dir, "private.mk")
	if err := os.WriteFile(private, []byte("old\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(private, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Generate(gen.KindMake, private); err != nil {
		t.Fatal(err)
	}
	info, err = os.Stat(private)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("existing file mode = %v, want 0600 kept", info.Mode().Perm())
	}
}

func TestGenerateMissingDirectory(t *testing.T) {
	b, err := NewBuilderInDirectory(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(b.Dir(), "nope", "Makefile")
	if _, err := b.Generate(gen.KindMake, target); err == nil || !strings.Contains(err.Error(), target) {
		t.Errorf("err = %v, want one naming %s", err, target)
	}
}

func TestDiscover(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		ConfigFilename:             "[targets]\nnames = [\"ubuntu\"]\ndiscover = [\"**/*_dockerfile\"]\n",
		"ubuntu_dockerfile":        "FROM ubuntu\n",
		"debian_dockerfile":        "FROM debian\n",
		"images/alpine_dockerfile": "FROM alpine\n",
		"images/README.md":         "not a recipe\n",
		"alpine_dockerfile.orig":   "FROM alpine\n",
		"a>b_dockerfile":           "FROM scratch\n",
	})

	b, err := NewBuilderInDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	names, err := b.Targets()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ubuntu", "debian", "images/alpine"}
	if !slices.Equal(names, want) {
		t.Errorf("Targets() = %v, want %v", names, want)
	}
}

func TestDiscoverBadPattern(t *testing.T) {
	if _, err := discoverTargets(t.TempDir(), []string{"[unclosed"}); err == nil {
		t.Error("expected a pattern error")
	}
}

func TestDuplicateTargetsWarn(t *testing.T) {
	out := quiet(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		ConfigFilename: "[targets]\nnames = [\"ubuntu\", \"ubuntu\"]\n",
	})
	b, err := NewBuilderInDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	names, err := b.Targets()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"ubuntu", "ubuntu"}) {
		t.Errorf("Targets() = %v", names)
	}
	if !strings.Contains(out.String(), `warn: target "ubuntu" is listed more than once`) {
		t.Errorf("missing warning, got %q", out.String())
	}
}

func TestSetTargets(t *testing.T) {
	b, err := NewBuilderInDirectory(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := b.SetTargets([]string{"fedora"}); err != nil {
		t.Fatal(err)
	}
	text, _, err := b.Render(gen.KindMake)
	if err != nil {
		t.Fatal(err)
	}
	if text != gen.Makefile([]string{"fedora"}) {
		t.Errorf("Render ignored override:\n%s", text)
	}
	if err := b.SetTargets([]string{"bad name"}); err == nil {
		t.Error("expected validation error")
	}
}

func TestNewBuilderErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"file": ""})
	if _, err := NewBuilderInDirectory(filepath.Join(dir, "file")); err == nil {
		t.Error("expected an error for a regular file")
	}
	if _, err := NewBuilderInDirectory(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected an error for a missing directory")
	}

	writeFiles(t, dir, map[string]string{ConfigFilename: "[targets]\nnames = [\"\"]\n"})
	_, err := NewBuilderInDirectory(dir)
	if err == nil || !strings.Contains(err.Error(), ConfigFilename) {
		t.Errorf("err = %v, want one naming %s", err, ConfigFilename)
	}
}

func TestRenderUnknownGenerator(t *testing.T) {
	b, err := NewBuilderInDirectory(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := b.Render("vs2022"); err == nil {
		t.Error("expected an error")
	}
}
