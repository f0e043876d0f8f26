// The main package for the newsroom executable.
package main

import (
	"github.com/wartahukum/newsroom/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
