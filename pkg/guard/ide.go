package guard

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/confguard/pkg/config"
	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/logging"
	"github.com/arthur-debert/confguard/pkg/paths"
	"github.com/arthur-debert/confguard/pkg/templates"
)

// RunConfigName is the name the IDE shows for the generated run configuration
const RunConfigName = "confguard env"

// CreateEnvironments writes an environment stub for every known environment
// that does not exist yet. It returns the files it created.
func (g *Guard) CreateEnvironments() ([]string, error) {
	dir := g.cfg.Layout().EnvironmentsDir(g.Sentinel)
	if err := g.fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot create %s", dir)
	}

	var created []string
	for _, env := range paths.Environments {
		path := filepath.Join(dir, env+".env")
		if filesystem.Exists(g.fs, path) {
			continue
		}
		content := fmt.Sprintf("export RUN_ENV=%q\n", env)
		if err := g.fs.WriteFile(path, []byte(content), 0644); err != nil {
			return created, errors.Wrapf(err, errors.ErrFileAccess, "cannot write %s", path)
		}
		created = append(created, path)
	}
	return created, nil
}

// FixRunConfig regenerates the IDE run script and run configuration of a
// guarded project.
func (g *Guard) FixRunConfig() (*Result, error) {
	logger := logging.GetLogger("guard")
	written, err := g.writeRunConfig(nil)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("project", g.SourceDir).Msg("Regenerated run configuration")

	res := g.result("fix-run-config")
	res.Created = written
	return res, nil
}

// writeRunConfig writes the run script and run configuration. When st is
// given, each write registers an undo restoring the previous state.
func (g *Guard) writeRunConfig(st *stages) ([]string, error) {
	sopsPath, err := paths.RelativeToHome(g.TargetDir)
	if err != nil {
		return nil, err
	}
	script, err := templates.RunScript(templates.RunScriptData{
		Project:  filepath.Base(g.SourceDir),
		SopsPath: sopsPath,
	})
	if err != nil {
		return nil, err
	}
	xml, err := templates.RunConfigurationXML(RunConfigName, filepath.Join(paths.RunConfigurationsDir, paths.RunScriptName))
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(g.SourceDir, paths.RunConfigurationsDir)
	if st != nil {
		// Undo removes only directories this call creates. Outermost is
		// registered first so it is removed last.
		var missing []string
		for d := dir; d != g.SourceDir && !filesystem.Exists(g.fs, d); d = filepath.Dir(d) {
			missing = append(missing, d)
		}
		for i := len(missing) - 1; i >= 0; i-- {
			created := missing[i]
			st.add(func() error {
				if err := g.fs.Remove(created); err != nil && !filesystem.IsNotExist(err) {
					return err
				}
				return nil
			})
		}
	}
	if err := g.fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot create %s", dir)
	}

	files := []struct {
		path    string
		content string
		mode    fs.FileMode
	}{
		{paths.RunScriptPath(g.SourceDir), script, 0755},
		{paths.RunConfigPath(g.SourceDir), xml, 0644},
	}

	var written []string
	for _, f := range files {
		if st != nil {
			st.add(g.restorer(f.path))
		}
		if err := g.fs.WriteFile(f.path, []byte(f.content), 0644); err != nil {
			return written, errors.Wrapf(err, errors.ErrFileAccess, "cannot write %s", f.path)
		}
		// WriteFile keeps the mode of an existing file
		if err := g.fs.Chmod(f.path, f.mode); err != nil {
			return written, errors.Wrapf(err, errors.ErrFileAccess, "cannot chmod %s", f.path)
		}
		written = append(written, f.path)
	}
	return written, nil
}

// restorer captures path's current state and returns an undo that brings it
// back: previous content when it existed, removal otherwise.
func (g *Guard) restorer(path string) func() error {
	previous, err := g.fs.ReadFile(path)
	if err != nil {
		return func() error {
			if !filesystem.Exists(g.fs, path) {
				return nil
			}
			return g.fs.Remove(path)
		}
	}
	info, statErr := g.fs.Stat(path)
	return func() error {
		if statErr != nil {
			return g.fs.WriteFile(path, previous, 0644)
		}
		if err := g.fs.WriteFile(path, previous, info.Mode().Perm()); err != nil {
			return err
		}
		return g.fs.Chmod(path, info.Mode().Perm())
	}
}

// Init writes a starter config file into projectDir. templatePath selects a
// custom template; empty uses the bundled one.
func Init(cfg *config.Config, fsys filesystem.FS, projectDir, templatePath string) (string, error) {
	logger := logging.GetLogger("guard")

	dir, err := paths.Canonical(projectDir)
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, cfg.ConfigFile)
	if filesystem.Exists(fsys, target) {
		return "", errors.Newf(errors.ErrAlreadyExists, "%s already exists", target)
	}

	content := templates.Envrc()
	if templatePath != "" {
		abs, err := paths.Abs(templatePath)
		if err != nil {
			return "", err
		}
		data, err := fsys.ReadFile(abs)
		if err != nil {
			if filesystem.IsNotExist(err) {
				return "", errors.Newf(errors.ErrNotFound, "template does not exist: %s", abs)
			}
			return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read template %s", abs)
		}
		content = string(data)
	}

	if err := fsys.WriteFile(target, []byte(content), 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot write %s", target)
	}
	logger.Info().Str("path", target).Msg("Created config file")
	return target, nil
}
