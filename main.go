// The main package for the trending-crawler executable.
package main

import (
	"github.com/Dawn-Aurora/github-trending-crawler/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
