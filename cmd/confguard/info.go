package confguard

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/confguard/internal/version"
	"github.com/arthur-debert/confguard/pkg/config"
	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/logging"
	"github.com/arthur-debert/confguard/pkg/ui"
)

// infoEnvVars are reported by info whether set or not
var infoEnvVars = []string{"CONFGUARD_BASE_DIR", "CONFGUARD_VERSION", "XDG_DATA_HOME", "XDG_STATE_HOME"}

type envVar struct {
	Name  string
	Value string
	Set   bool
}

type infoReport struct {
	Version         string
	BaseDir         string
	GuardedDir      string
	ConfigFile      string
	ConfigVersion   int
	Workers         int
	Descriptor      string
	DescriptorState string
	HasDescriptor   bool
	LogFile         string
	Sops            config.SopsConfig
	Env             []envVar
	Guarded         int
}

var infoTmpl = template.Must(template.New("info").Funcs(template.FuncMap{
	"join": func(items []string) string {
		if len(items) == 0 {
			return "(none)"
		}
		return "`" + strings.Join(items, "`, `") + "`"
	},
}).Parse(msgInfoTemplate))

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "info",
		Short:   MsgInfoShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			report, err := buildInfo(cfg, a.fs)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := infoTmpl.Execute(&buf, report); err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to render info")
			}
			p := printer(cmd, ui.FormatAuto)
			fmt.Fprint(p.Out, ui.RenderMarkdown(buf.String(), p.Format, 0))
			return nil
		},
	}
}

func buildInfo(cfg *config.Config, fsys filesystem.FS) (*infoReport, error) {
	layout := cfg.Layout()
	report := &infoReport{
		Version:         version.Version,
		BaseDir:         cfg.BaseDir,
		GuardedDir:      layout.GuardedDir(),
		ConfigFile:      cfg.ConfigFile,
		ConfigVersion:   cfg.Version,
		Workers:         cfg.Workers,
		Descriptor:      layout.ConfigPath(),
		DescriptorState: MsgDescriptorNotFound,
		LogFile:         logging.LogFilePath(),
		Sops:            cfg.Sops,
	}

	if info, err := fsys.Stat(report.Descriptor); err == nil {
		report.HasDescriptor = true
		report.DescriptorState = fmt.Sprintf(MsgDescriptorFound, info.Size())
	}

	for _, name := range infoEnvVars {
		value, set := os.LookupEnv(name)
		report.Env = append(report.Env, envVar{Name: name, Value: value, Set: set})
	}

	entries, err := fsys.ReadDir(report.GuardedDir)
	if err != nil && !filesystem.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", report.GuardedDir)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			report.Guarded++
		}
	}
	return report, nil
}
