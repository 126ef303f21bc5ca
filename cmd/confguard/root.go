package confguard

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/confguard/internal/version"
	"github.com/arthur-debert/confguard/pkg/config"
	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/logging"
	"github.com/arthur-debert/confguard/pkg/paths"
	"github.com/arthur-debert/confguard/pkg/sops"
	"github.com/arthur-debert/confguard/pkg/ui"
)

// Options carries the collaborators the commands use. Zero values select
// the real filesystem and the sops binary.
type Options struct {
	FS     filesystem.FS
	Runner sops.Runner
}

// app holds per-invocation state shared by all commands
type app struct {
	verbosity int
	baseDir   string

	fs     filesystem.FS
	runner sops.Runner
	cfg    *config.Config
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return NewRootCmdWith(Options{})
}

// NewRootCmdWith creates the root command with injected collaborators
func NewRootCmdWith(opts Options) *cobra.Command {
	a := &app{fs: opts.FS, runner: opts.Runner}
	if a.fs == nil {
		a.fs = filesystem.NewOS()
	}
	if a.runner == nil {
		a.runner = sops.ExecRunner{}
	}

	rootCmd := &cobra.Command{
		Use:     "confguard",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(a.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.baseDir, "base-dir", "", MsgFlagBaseDir)

	rootCmd.AddGroup(&cobra.Group{ID: "guard", Title: "GUARD:"})
	rootCmd.AddGroup(&cobra.Group{ID: "sops", Title: "ENCRYPTION:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.AddCommand(a.newInfoCmd())
	rootCmd.AddCommand(a.newShowCmd())
	rootCmd.AddCommand(a.newGuardCmd())
	rootCmd.AddCommand(a.newUnguardCmd())
	rootCmd.AddCommand(a.newGuardOneCmd())
	rootCmd.AddCommand(a.newRelinkCmd())
	rootCmd.AddCommand(a.newReplaceLinkCmd())
	rootCmd.AddCommand(a.newFixRunConfigCmd())
	rootCmd.AddCommand(a.newInitCmd())
	rootCmd.AddCommand(a.newSopsCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// config loads the configuration once per invocation
func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	overrides := config.Overrides{}
	if a.baseDir != "" {
		dir, err := paths.Abs(a.baseDir)
		if err != nil {
			return nil, err
		}
		overrides.BaseDir = dir
	}
	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	return cfg, nil
}

// printer resolves format against the command's output stream
func printer(cmd *cobra.Command, format ui.Format) *ui.Printer {
	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok {
		format = format.Resolve(f)
	} else if format == ui.FormatAuto {
		format = ui.FormatText
	}
	return ui.NewPrinter(out, format)
}

// projectDir returns the absolute project dir from an optional argument
func projectDir(args []string) (string, error) {
	if len(args) == 0 {
		return paths.Abs(".")
	}
	return paths.Abs(args[0])
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, MsgVersionFormat, version.Version, version.Commit, version.Date)
}
