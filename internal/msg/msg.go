package msg

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Out receives every message. Switch it to os.Stderr when stdout carries a build file.
var Out io.Writer = os.Stdout

var (
	mu   sync.Mutex
	exit = os.Exit
)

func emit(label, format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(Out, "%s: %s\n", label, fmt.Sprintf(format, a...))
}

func Error(format string, a ...any) {
	emit(color.HiRedString("error"), format, a...)
}

func Warn(format string, a ...any) {
	emit(color.YellowString("warn"), format, a...)
}

func Fatal(format string, a ...any) {
	emit(color.RedString("fatal"), format, a...)
	exit(1)
}

func Info(format string, a ...any) {
	emit(color.HiGreenString("info"), format, a...)
}

// Status prints a right-aligned green verb, e.g. "   Generated Makefile"
func Status(verb, format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(Out, "%s %s\n", color.HiGreenString("%12s", verb), fmt.Sprintf(format, a...))
}

// IndentWriter prefixes every line written through it with Indent
type IndentWriter struct {
	Indent    string
	W         io.Writer
	didIndent bool
}

func (w *IndentWriter) Write(p []byte) (n int, err error) {
	var buf bytes.Buffer
	for _, c := range p {
		if !w.didIndent {
			buf.WriteString(w.Indent)
			w.didIndent = true
		}
		buf.WriteByte(c)
		if c == '\n' || c == '\r' {
			w.didIndent = false
		}
	}
	if _, err := w.W.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
