package confguard

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/confguard/pkg/paths"
	"github.com/arthur-debert/confguard/pkg/sops"
	"github.com/arthur-debert/confguard/pkg/ui"
)

func fmtCreated(path string) string {
	return fmt.Sprintf(MsgCreatedFormat, path)
}

func (a *app) newSopsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sops",
		Short:   MsgSopsShort,
		Long:    MsgSopsLong,
		GroupID: "sops",
	}
	cmd.AddCommand(a.newSopsBatchCmd("enc", MsgSopsEncShort, MsgEncrypting, (*sops.Manager).Encrypt))
	cmd.AddCommand(a.newSopsBatchCmd("dec", MsgSopsDecShort, MsgDecrypting, (*sops.Manager).Decrypt))
	cmd.AddCommand(a.newSopsCleanCmd())
	cmd.AddCommand(a.newSopsInitCmd())
	return cmd
}

// manager builds a sops manager and resolves an optional --dir
func (a *app) manager(dir string) (*sops.Manager, string, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, "", err
	}
	m, err := sops.New(cfg, a.fs, a.runner)
	if err != nil {
		return nil, "", err
	}
	if dir != "" {
		if dir, err = paths.Abs(dir); err != nil {
			return nil, "", err
		}
	}
	return m, dir, nil
}

type batchFunc func(m *sops.Manager, ctx context.Context, dir string) ([]sops.Job, error)

func (a *app) newSopsBatchCmd(use, short, title string, run batchFunc) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, scanDir, err := a.manager(dir)
			if err != nil {
				return err
			}

			p := printer(cmd, ui.FormatAuto)
			progress, stop := p.ProgressBar(cmd.ErrOrStderr(), title)
			m.Progress = progress
			jobs, err := run(m, cmd.Context(), scanDir)
			stop()
			if err != nil {
				return err
			}
			return p.Jobs(use, jobs)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", MsgFlagDir)
	return cmd
}

func (a *app) newSopsCleanCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "clean",
		Short: MsgSopsCleanShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, scanDir, err := a.manager(dir)
			if err != nil {
				return err
			}
			removed, err := m.Clean(scanDir)
			if err != nil {
				return err
			}
			return printer(cmd, ui.FormatAuto).Paths("clean", removed)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", MsgFlagDir)
	return cmd
}

func (a *app) newSopsInitCmd() *cobra.Command {
	var template string
	cmd := &cobra.Command{
		Use:   "init",
		Short: MsgSopsInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if template != "" {
				if template, err = paths.Abs(template); err != nil {
					return err
				}
			}
			path, err := sops.Init(cfg, a.fs, template)
			if err != nil {
				return err
			}
			printer(cmd, ui.FormatAuto).Info(fmtCreated(path))
			return nil
		},
	}
	cmd.Flags().StringVar(&template, "template", "", MsgFlagTemplate)
	return cmd
}
