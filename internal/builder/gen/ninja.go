package gen

import "strings"

// NinjaGen emits a build.ninja equivalent to the Makefile produced by MakeGen
type NinjaGen struct {
	targets targetList
}

func (g *NinjaGen) BuildFile() string { return "build.ninja" }

func (g *NinjaGen) AddTarget(name string) { g.targets.add(name) }

var ninjaPathEscaper = strings.NewReplacer("$", "$$", ":", "$:", " ", "$ ")

func quote(s string) string { return ninjaPathEscaper.Replace(s) }

func quoteAll(items []string) []string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = quote(item)
	}
	return quoted
}

func (g *NinjaGen) Generate() string {
	var sb strings.Builder
	names := g.targets.names()

	writeln(&sb, "ninja_required_version = 1.1")
	writeln(&sb)

	write(&sb,
		`rule image
  command = docker build -t $tag -f $in . && docker save -o $out $tag && docker rmi $tag
  description = IMAGE $out
`)
	writeln(&sb)

	for _, name := range names {
		writeln(&sb, "build ", quote(Artifact(name)), ": image ", quote(Recipe(name)))
		writeln(&sb, "  tag = ", Tag(name))
	}
	if len(names) > 0 {
		writeln(&sb)
	}

	write(&sb, "build ", AggregateTarget, ": phony")
	writeList(&sb, quoteAll(Artifacts(names)))
	writeln(&sb)
	writeln(&sb, "default ", AggregateTarget)

	return sb.String()
}
