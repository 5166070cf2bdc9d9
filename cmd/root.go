// imgmake [dir...], imgmake generate [dir...]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/qobs-build/imgmake/internal/builder"
	"github.com/qobs-build/imgmake/internal/builder/gen"
	"github.com/qobs-build/imgmake/internal/msg"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	flagOutput    string
	flagStdout    bool
	flagTargets   []string
	flagGenerator EnumValue = NewEnumValue(gen.KindMake, map[string]string{
		gen.KindMake:  "Generates a Makefile (default)",
		gen.KindNinja: "Generates a build.ninja file",
	})
)

// loadBuilder opens the project in dir and applies --target overrides
func loadBuilder(dir string) (*builder.Builder, error) {
	b, err := builder.NewBuilderInDirectory(dir)
	if err != nil {
		return nil, err
	}
	if len(flagTargets) > 0 {
		if err := b.SetTargets(flagTargets); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// displayPath shortens path relative to the working directory when it is inside it
func displayPath(path string) string {
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

func doGenerate(cmd *cobra.Command, args []string) {
	dirs := args
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	if flagStdout {
		// keep stdout clean for the build file
		msg.Out = os.Stderr
		if len(dirs) > 1 {
			msg.Fatal("--stdout takes a single directory, got %d", len(dirs))
		}
		b, err := loadBuilder(dirs[0])
		if err != nil {
			msg.Fatal("%v", err)
		}
		text, _, err := b.Render(flagGenerator.Value())
		if err != nil {
			msg.Fatal("%v", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return
	}

	if len(dirs) > 1 && filepath.IsAbs(flagOutput) {
		msg.Fatal("--output %s is absolute, every directory would overwrite it", flagOutput)
	}

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for _, dir := range dirs {
		eg.Go(func() error {
			b, err := loadBuilder(dir)
			if err != nil {
				return fmt.Errorf("%s: %w", dir, err)
			}
			path, err := b.Generate(flagGenerator.Value(), flagOutput)
			if err != nil {
				return err
			}
			msg.Status("Generated", "%s", displayPath(path))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		msg.Fatal("%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "imgmake [dir...]",
	Short: "Generate build files for container image archives",
	Long: `imgmake writes a Makefile (or build.ninja) with one rule per target.
Each rule builds <name>_dockerfile, saves the image to <name>_test.docker
and removes the local tag. The aggregate "build" target depends on every archive.`,
	Args: cobra.ArbitraryArgs,
	Run:  doGenerate,
}

var generateCmd = &cobra.Command{
	Use:     "generate [dir...]",
	Aliases: []string{"gen"},
	Short:   "Generate the build file",
	Long:    `Generate the build file in every given directory. If no directory is given, uses "."`,
	Args:    cobra.ArbitraryArgs,
	Run:     doGenerate,
}

func init() {
	addBuildFlags(rootCmd)
	rootCmd.Flags().BoolVar(&flagStdout, "stdout", false, "Print the build file instead of writing it")

	// imgmake generate subcommand
	rootCmd.AddCommand(generateCmd)
	addBuildFlags(generateCmd)
	generateCmd.Flags().BoolVar(&flagStdout, "stdout", false, "Print the build file instead of writing it")
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().VarP(&flagGenerator, "gen", "g", "Generator to use, one of "+flagGenerator.HelpString())
	cmd.RegisterFlagCompletionFunc("gen", flagGenerator.CompletionFunc())
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Build file path, relative to the project directory")
	cmd.Flags().StringSliceVarP(&flagTargets, "target", "t", nil, "Target name, replaces the configured list (repeatable)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
