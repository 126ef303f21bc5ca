package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/confguard/cmd/confguard"
	"github.com/arthur-debert/confguard/pkg/ui"
)

func main() {
	rootCmd := confguard.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		msg := fmt.Sprintf("Error: %v", err)
		if ui.DetectFormat(os.Stderr) == ui.FormatTerminal {
			msg = ui.DefaultStyles().Render("Error", msg)
		}
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
}
