package confguard

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/guard"
	"github.com/arthur-debert/confguard/pkg/paths"
	"github.com/arthur-debert/confguard/pkg/ui"
)

func (a *app) newShowCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "show [project-dir]",
		Short:   MsgShowShort,
		GroupID: "guard",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ui.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := a.config()
			if err != nil {
				return err
			}
			dir, err := projectDir(args)
			if err != nil {
				return err
			}

			st, err := guard.Inspect(cfg, a.fs, dir)
			if err != nil {
				return err
			}
			return printer(cmd, f).Status(st)
		},
	}
	cmd.Flags().StringVar(&format, "format", "auto", MsgFlagFormat)
	return cmd
}

func (a *app) newGuardCmd() *cobra.Command {
	var absolute bool
	cmd := &cobra.Command{
		Use:     "guard [project-dir]",
		Short:   MsgGuardShort,
		Long:    MsgGuardLong,
		GroupID: "guard",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			log.Info().Str("project", dir).Bool("absolute", absolute).Msg("Guarding project")

			g, err := guard.New(cfg, a.fs, dir)
			if err != nil {
				return err
			}
			res, err := g.Guard(absolute)
			if err != nil {
				return err
			}
			return printer(cmd, ui.FormatAuto).Result(res)
		},
	}
	cmd.Flags().BoolVar(&absolute, "absolute", false, MsgFlagAbsolute)
	return cmd
}

func (a *app) newUnguardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "unguard [project-dir]",
		Short:   MsgUnguardShort,
		Long:    MsgUnguardLong,
		GroupID: "guard",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			dir, err := projectDir(args)
			if err != nil {
				return err
			}

			g, err := guard.FromProject(cfg, a.fs, dir)
			if err != nil {
				return err
			}
			res, err := g.Unguard()
			if err != nil {
				return err
			}
			return printer(cmd, ui.FormatAuto).Result(res)
		},
	}
}

func (a *app) newGuardOneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "guard-one <project-dir> <file>",
		Short:   MsgGuardOneShort,
		GroupID: "guard",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			dir, err := paths.Abs(args[0])
			if err != nil {
				return err
			}
			file, err := paths.Abs(args[1])
			if err != nil {
				return err
			}

			g, err := guard.FromProject(cfg, a.fs, dir)
			if err != nil {
				return err
			}
			res, err := g.GuardOne(file)
			if err != nil {
				return err
			}
			return printer(cmd, ui.FormatAuto).Result(res)
		},
	}
}

func (a *app) newRelinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "relink <stored-file>",
		Short:   MsgRelinkShort,
		Long:    MsgRelinkLong,
		GroupID: "guard",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			stored, err := paths.Abs(args[0])
			if err != nil {
				return err
			}

			p := printer(cmd, ui.FormatAuto)
			res, err := guard.Relink(cfg, a.fs, stored)
			if errors.IsErrorCode(err, errors.ErrLinkExists) || errors.IsErrorCode(err, errors.ErrLinkPointsElsewhere) {
				p.Info(err.Error())
				return nil
			}
			if err != nil {
				return err
			}
			return p.Result(res)
		},
	}
}

func (a *app) newReplaceLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "replace-link <link>",
		Short:   MsgReplaceLinkShort,
		GroupID: "guard",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			linkPath, err := paths.Abs(args[0])
			if err != nil {
				return err
			}
			res, err := guard.ReplaceLink(a.fs, linkPath)
			if err != nil {
				return err
			}
			return printer(cmd, ui.FormatAuto).Result(res)
		},
	}
}

func (a *app) newFixRunConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "fix-run-config [project-dir]",
		Short:   MsgFixRunConfigShort,
		GroupID: "guard",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			dir, err := projectDir(args)
			if err != nil {
				return err
			}

			g, err := guard.FromProject(cfg, a.fs, dir)
			if err != nil {
				return err
			}
			res, err := g.FixRunConfig()
			if err != nil {
				return err
			}
			return printer(cmd, ui.FormatAuto).Result(res)
		},
	}
}

func (a *app) newInitCmd() *cobra.Command {
	var template string
	cmd := &cobra.Command{
		Use:     "init [project-dir]",
		Short:   MsgInitShort,
		GroupID: "guard",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			if template != "" {
				if template, err = paths.Abs(template); err != nil {
					return err
				}
			}

			path, err := guard.Init(cfg, a.fs, dir, template)
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
