package sops

import (
	"github.com/arthur-debert/confguard/pkg/config"
	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/logging"
)

// Init writes the store's confguard.toml, copying templatePath when given
// and otherwise rendering the current encryption settings.
func Init(cfg *config.Config, fsys filesystem.FS, templatePath string) (string, error) {
	logger := logging.GetLogger("sops.init")
	layout := cfg.Layout()
	dest := layout.ConfigPath()

	if filesystem.Exists(fsys, dest) {
		return "", errors.Newf(errors.ErrAlreadyExists, "%s already exists", dest).WithDetail("path", dest)
	}

	var content []byte
	if templatePath != "" {
		data, err := fsys.ReadFile(templatePath)
		if err != nil {
			if filesystem.IsNotExist(err) {
				return "", errors.Newf(errors.ErrNotFound, "template %s not found", templatePath)
			}
			return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read template %s", templatePath)
		}
		content = data
	} else {
		rendered, err := config.GenerateDescriptor(cfg.Sops, false)
		if err != nil {
			return "", err
		}
		content = []byte(rendered)
	}

	if err := fsys.MkdirAll(layout.BaseDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot create %s", layout.BaseDir)
	}
	if err := fsys.WriteFile(dest, content, 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot write %s", dest)
	}
	logger.Info().Str("path", dest).Bool("from_template", templatePath != "").Msg("Wrote encryption descriptor")
	return dest, nil
}
