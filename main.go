package main

import "github.com/qobs-build/imgmake/cmd"

func main() {
	cmd.Execute()
}
