// imgmake check [dir]
package cmd

import (
	"github.com/fatih/color"
	"github.com/qobs-build/imgmake/internal/builder"
	"github.com/qobs-build/imgmake/internal/msg"
	"github.com/spf13/cobra"
)

func doCheck(cmd *cobra.Command, args []string) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	b, err := loadBuilder(dir)
	if err != nil {
		msg.Fatal("%v", err)
	}

	res, err := b.Check(flagGenerator.Value(), flagOutput)
	if err != nil {
		msg.Fatal("%v", err)
	}

	path := displayPath(res.Path)
	if res.Status == builder.UpToDate {
		msg.Info("%s is up to date", path)
		return
	}

	msg.Error("%s is %s", path, res.Status)
	if err := res.WriteDiff(&msg.IndentWriter{Indent: "    ", W: msg.Out}); err != nil {
		msg.Fatal("%v", err)
	}
	msg.Fatal("run %s to regenerate it", color.HiCyanString(getProgramName()+" "+dir))
}

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Fail if the build file is missing or out of date",
	Args:  cobra.MaximumNArgs(1),
	Run:   doCheck,
}

func init() {
	// imgmake check subcommand
	rootCmd.AddCommand(checkCmd)
	addBuildFlags(checkCmd)
}
