package gen

import "strings"

func write(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
}

func writeln(sb *strings.Builder, s ...string) {
	write(sb, s...)
	sb.WriteByte('\n')
}

// writeList writes each item prefixed by a single space
func writeList(sb *strings.Builder, items []string) {
	for _, item := range items {
		write(sb, " ", item)
	}
}
