// imgmake init [name], imgmake new <path>
package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/go-git/go-git/v6"
	"github.com/qobs-build/imgmake/internal/builder"
	"github.com/qobs-build/imgmake/internal/builder/gen"
	"github.com/qobs-build/imgmake/internal/msg"
	"github.com/spf13/cobra"
)

func configTemplate(name string) string {
	quoted := make([]string, len(builder.DefaultTargets))
	for i, target := range builder.DefaultTargets {
		quoted[i] = strconv.Quote(target)
	}

	return `[project]
name = ` + strconv.Quote(name) + `

[targets]
names = [` + strings.Join(quoted, ", ") + `]
# pick up every <name>_dockerfile below this directory
# discover = ["**/*_dockerfile"]

# extra targets for a single platform
# [targets.'target_os == "linux"']
# names = ["alpine"]
`
}

// initGitRepo creates a repository in dir unless dir is already inside one
func initGitRepo(dir string) {
	_, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err == nil {
		return
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		msg.Warn("could not inspect git repository in %s: %v", dir, err)
		return
	}

	if _, err := git.PlainInit(dir, false); err != nil {
		msg.Fatal("git init %s: %v", dir, err)
	}
	msg.Status("Initialized", "git repository in %s", filepath.ToSlash(dir))
}

// initIn initializes a project in an existing directory
func initIn(dir, name string, withGit bool) {
	// Imgmake.toml
	writefile(configTemplate(name), dir, builder.ConfigFilename)

	// one recipe per default target
	for _, target := range builder.DefaultTargets {
		writefile(fmt.Sprintf("FROM %s\n", target), dir, gen.Recipe(target))
	}

	// .gitignore
	writefile(`*.docker
`, dir, ".gitignore")

	if withGit {
		initGitRepo(dir)
	}

	programName := getProgramName()
	fmt.Fprintf(msg.Out, "You can now do %s to write the Makefile, then %s to build the images.\n",
		color.HiCyanString(programName+" "+dir), color.HiCyanString("make -C "+dir))
}

var flagNoGit bool

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a new project in the current directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) > 0 {
			name = args[0]
		} else {
			abs, err := filepath.Abs(".")
			if err != nil {
				msg.Fatal("could not get current directory: %v", err)
			}
			name = filepath.Base(abs)
		}
		initIn(".", name, !flagNoGit)
	},
}

var newCmd = &cobra.Command{
	Use:   "new <path>",
	Short: "Create a new project in a new directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mkdir(args[0])
		initIn(args[0], filepath.Base(args[0]), !flagNoGit)
	},
}

func init() {
	// imgmake init subcommand
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&flagNoGit, "no-git", false, "Do not initialize a git repository")

	// imgmake new subcommand
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().BoolVar(&flagNoGit, "no-git", false, "Do not initialize a git repository")
}
