package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/confguard/cmd/confguard"
)

var generators = map[string]struct {
	file string
	gen  func(root *cobra.Command, f *os.File) error
}{
	"bash": {"confguard.bash", func(root *cobra.Command, f *os.File) error { return root.GenBashCompletionV2(f, true) }},
	"zsh":  {"_confguard", func(root *cobra.Command, f *os.File) error { return root.GenZshCompletion(f) }},
	"fish": {"confguard.fish", func(root *cobra.Command, f *os.File) error { return root.GenFishCompletion(f, true) }},
	"powershell": {"confguard.ps1", func(root *cobra.Command, f *os.File) error {
		return root.GenPowerShellCompletionWithDesc(f)
	}},
}

// Release packaging helper: writes the completion script for one shell to
// stdout, or every script into the directory given with -o.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <bash|zsh|fish|powershell> | -o <dir>\n", os.Args[0])
		os.Exit(1)
	}

	rootCmd := confguard.NewRootCmd()

	if os.Args[1] == "-o" && len(os.Args) == 3 {
		if err := writeAll(rootCmd, os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating completions: %v\n", err)
			os.Exit(1)
		}
		return
	}

	g, ok := generators[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Supported shells: bash, zsh, fish, powershell\n")
		os.Exit(1)
	}
	if err := g.gen(rootCmd, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating %s completion: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func writeAll(rootCmd *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for shell, g := range generators {
		f, err := os.Create(filepath.Join(dir, g.file))
		if err != nil {
			return err
		}
		genErr := g.gen(rootCmd, f)
		closeErr := f.Close()
		if genErr != nil {
			return fmt.Errorf("%s: %w", shell, genErr)
		}
		if closeErr != nil {
			return closeErr
		}
	}
	return nil
}
