package builder

import (
	"bytes"
	"os"
	"testing"

	"github.com/qobs-build/imgmake/internal/builder/gen"
)

func TestCheck(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	b, err := NewBuilderInDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}

	res, err := b.Check(gen.KindMake, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != Missing {
		t.Errorf("status = %v, want missing", res.Status)
	}

	path, err := b.Generate(gen.KindMake, "")
	if err != nil {
		t.Fatal(err)
	}
	res, err = b.Check(gen.KindMake, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != UpToDate || len(res.Diffs) != 0 {
		t.Errorf("status = %v with %d diffs, want up to date", res.Status, len(res.Diffs))
	}

	if err := b.SetTargets([]string{"ubuntu"}); err != nil {
		t.Fatal(err)
	}
	res, err = b.Check(gen.KindMake, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != Stale || res.Path != path {
		t.Fatalf("got %v at %s, want stale at %s", res.Status, res.Path, path)
	}

	var buf bytes.Buffer
	if err := res.WriteDiff(&buf); err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		"-build: ubuntu_test.docker busybox_test.docker\n",
		"+build: ubuntu_test.docker\n",
		" ubuntu_test.docker: ubuntu_dockerfile\n",
		"-busybox_test.docker: busybox_dockerfile\n",
		"-\tdocker rmi busybox_test\n",
	} {
		if !bytes.Contains(buf.Bytes(), []byte(line)) {
			t.Errorf("diff is missing %q:\n%s", line, buf.String())
		}
	}
}

func TestCheckUnreadable(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBuilderInDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	// a directory where the Makefile should be
	if err := os.Mkdir(b.OutputPath("", "Makefile"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Check(gen.KindMake, ""); err == nil {
		t.Error("expected a read error")
	}
}

func TestCheckStatusString(t *testing.T) {
	for s, want := range map[CheckStatus]string{UpToDate: "up to date", Stale: "stale", Missing: "missing", 7: "CheckStatus(7)"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
}
