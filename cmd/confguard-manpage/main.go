package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/confguard/cmd/confguard"
	"github.com/arthur-debert/confguard/internal/version"
)

// Writes confguard.1 to stdout, or one page per command into the directory
// given as the only argument.
func main() {
	rootCmd := confguard.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "CONFGUARD",
		Section: "1",
		Source:  "confguard " + version.Version,
		Manual:  "confguard manual",
	}

	var err error
	if len(os.Args) > 1 {
		err = doc.GenManTree(rootCmd, header, os.Args[1])
	} else {
		err = doc.GenMan(rootCmd, header, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
