// imgmake list [dir]
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/qobs-build/imgmake/internal/builder/gen"
	"github.com/qobs-build/imgmake/internal/msg"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatYAML = "yaml"
	formatJSON = "json"
)

var flagFormat EnumValue = NewEnumValue(formatText, map[string]string{
	formatText: "Numbered list (default)",
	formatYAML: "YAML document",
	formatJSON: "JSON array",
})

type listedTarget struct {
	Name     string   `json:"name" yaml:"name"`
	Recipe   string   `json:"recipe" yaml:"recipe"`
	Artifact string   `json:"artifact" yaml:"artifact"`
	Commands []string `json:"commands" yaml:"commands"`
	Present  bool     `json:"present" yaml:"present"` // recipe file exists
}

func writeTargets(w io.Writer, format string, targets []listedTarget) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(targets)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(targets); err != nil {
			return err
		}
		return enc.Close()
	default:
		for i, t := range targets {
			missing := ""
			if !t.Present {
				missing = color.YellowString(" (missing recipe)")
			}
			if _, err := fmt.Fprintf(w, "%d. %s: %s -> %s%s\n", i+1, t.Name, t.Recipe, t.Artifact, missing); err != nil {
				return err
			}
		}
		return nil
	}
}

func doList(cmd *cobra.Command, args []string) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	b, err := loadBuilder(dir)
	if err != nil {
		msg.Fatal("%v", err)
	}
	names, err := b.Targets()
	if err != nil {
		msg.Fatal("%v", err)
	}

	targets := make([]listedTarget, len(names))
	for i, name := range names {
		_, statErr := os.Stat(filepath.Join(b.Dir(), filepath.FromSlash(gen.Recipe(name))))
		targets[i] = listedTarget{
			Name:     name,
			Recipe:   gen.Recipe(name),
			Artifact: gen.Artifact(name),
			Commands: gen.Commands(name),
			Present:  statErr == nil,
		}
	}

	if err := writeTargets(cmd.OutOrStdout(), flagFormat.Value(), targets); err != nil {
		msg.Fatal("%v", err)
	}
	if flagFormat.Value() == formatText && len(targets) == 0 {
		msg.Warn("no targets configured")
	}
}

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the resolved targets",
	Args:  cobra.MaximumNArgs(1),
	Run:   doList,
}

func init() {
	// imgmake list subcommand
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().VarP(&flagFormat, "format", "f", "Output format, one of "+flagFormat.HelpString())
	listCmd.RegisterFlagCompletionFunc("format", flagFormat.CompletionFunc())
	listCmd.Flags().StringSliceVarP(&flagTargets, "target", "t", nil, "Target name, replaces the configured list (repeatable)")
}
