package gen

import (
	"fmt"
	"slices"
	"strings"
)

const (
	KindMake  = "make"
	KindNinja = "ninja"
)

// AggregateTarget is the phony target that depends on every artifact
const AggregateTarget = "build"

// naming and command templates, %[1]s is the target name
const (
	artifactTemplate = "%[1]s_test.docker"
	recipeTemplate   = "%[1]s_dockerfile"
	tagTemplate      = "%[1]s_test"

	buildCommandTemplate  = "docker build -t %[1]s_test -f %[1]s_dockerfile ."
	saveCommandTemplate   = "docker save -o %[1]s_test.docker %[1]s_test"
	removeCommandTemplate = "docker rmi %[1]s_test"
)

var commandTemplates = []string{
	buildCommandTemplate,
	saveCommandTemplate,
	removeCommandTemplate,
}

type Generator interface {
	AddTarget(name string)
	Generate() string
	BuildFile() string
}

// New returns the generator registered under kind
func New(kind string) (Generator, error) {
	switch kind {
	case KindMake:
		return &MakeGen{}, nil
	case KindNinja:
		return &NinjaGen{}, nil
	default:
		return nil, fmt.Errorf("unknown generator %q, known generators: %s", kind, strings.Join(Kinds(), ", "))
	}
}

func Kinds() []string {
	return []string{KindMake, KindNinja}
}

// Artifact returns the image archive produced for name, e.g. `ubuntu_test.docker`
func Artifact(name string) string { return fmt.Sprintf(artifactTemplate, name) }

// Recipe returns the dockerfile consumed for name, e.g. `ubuntu_dockerfile`
func Recipe(name string) string { return fmt.Sprintf(recipeTemplate, name) }

// Tag returns the temporary local image tag for name
func Tag(name string) string { return fmt.Sprintf(tagTemplate, name) }

// Commands returns the shell lines that turn Recipe(name) into Artifact(name), in order
func Commands(name string) []string {
	cmds := make([]string, len(commandTemplates))
	for i, tmpl := range commandTemplates {
		cmds[i] = fmt.Sprintf(tmpl, name)
	}
	return cmds
}

// Artifacts maps names to their artifacts, keeping the order
func Artifacts(names []string) []string {
	artifacts := make([]string, len(names))
	for i, name := range names {
		artifacts[i] = Artifact(name)
	}
	return artifacts
}

// targetList keeps names in insertion order; duplicates are kept as given
type targetList []string

func (l *targetList) add(name string) { *l = append(*l, name) }

func (l targetList) names() []string { return slices.Clone(l) }
