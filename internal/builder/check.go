package builder

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

type CheckStatus int

const (
	UpToDate CheckStatus = iota
	Stale
	Missing
)

func (s CheckStatus) String() string {
	switch s {
	case UpToDate:
		return "up to date"
	case Stale:
		return "stale"
	case Missing:
		return "missing"
	default:
		return fmt.Sprintf("CheckStatus(%d)", int(s))
	}
}

type CheckResult struct {
	Path   string
	Status CheckStatus
	Diffs  []diffmatchpatch.Diff
}

// Check compares the build file on disk against a fresh render
func (b *Builder) Check(kind, output string) (*CheckResult, error) {
	text, buildFile, err := b.Render(kind)
	if err != nil {
		return nil, err
	}

	path := b.OutputPath(output, buildFile)
	res := &CheckResult{Path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		res.Status = Missing
		res.Diffs = lineDiff("", text)
		return res, nil
	} else if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if string(data) == text {
		res.Status = UpToDate
		return res, nil
	}

	res.Status = Stale
	res.Diffs = lineDiff(string(data), text)
	return res, nil
}

func lineDiff(oldText, newText string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	return dmp.DiffCharsToLines(diffs, lines)
}

// WriteDiff prints the changes needed to bring the file on disk up to date, one line per row
func (r *CheckResult) WriteDiff(w io.Writer) error {
	for _, d := range r.Diffs {
		var prefix string
		var paint func(format string, a ...any) string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, paint = "+", color.GreenString
		case diffmatchpatch.DiffDelete:
			prefix, paint = "-", color.RedString
		default:
			prefix, paint = " ", fmt.Sprintf
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			if _, err := fmt.Fprintln(w, paint("%s", prefix+line)); err != nil {
				return err
			}
		}
	}
	return nil
}
