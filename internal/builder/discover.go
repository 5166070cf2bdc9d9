package builder

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/qobs-build/imgmake/internal/msg"
)

const recipeSuffix = "_dockerfile"

// discoverTargets globs recipe files under basedir and returns their target names, sorted
func discoverTargets(basedir string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	fsys := os.DirFS(basedir)
	found := make(map[string]struct{})

	for _, pat := range patterns {
		matches, err := doublestar.Glob(fsys, pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("targets.discover pattern %q: %w", pat, err)
		}
		for _, match := range matches {
			name, ok := strings.CutSuffix(match, recipeSuffix)
			if !ok {
				msg.Warn("ignoring %s: recipe files must end in %s", match, recipeSuffix)
				continue
			}
			if err := ValidateName(name); err != nil {
				msg.Warn("ignoring %s: %v", match, err)
				continue
			}
			found[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
