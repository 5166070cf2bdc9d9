package gen

import "strings"

// MakeGen emits a Makefile with one rule per target and an aggregate `build` rule
type MakeGen struct {
	targets targetList
}

func (g *MakeGen) BuildFile() string { return "Makefile" }

func (g *MakeGen) AddTarget(name string) { g.targets.add(name) }

func (g *MakeGen) Generate() string { return Makefile(g.targets.names()) }

// Rule returns the rule block for a single target, header plus three tab-indented commands
func Rule(name string) string {
	var sb strings.Builder
	writeRule(&sb, name)
	return sb.String()
}

func writeRule(sb *strings.Builder, name string) {
	writeln(sb, Artifact(name), ": ", Recipe(name))
	for _, cmd := range Commands(name) {
		writeln(sb, "\t", cmd)
	}
}

// Makefile renders the aggregate line, a blank line, and every rule block in input order
func Makefile(names []string) string {
	var sb strings.Builder

	write(&sb, AggregateTarget, ":")
	writeList(&sb, Artifacts(names))
	writeln(&sb)
	writeln(&sb)

	for _, name := range names {
		writeRule(&sb, name)
	}

	return sb.String()
}
