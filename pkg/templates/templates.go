// Package templates holds the files confguard generates: the starter config
// file, the IDE run script and the IDE run configuration.
package templates

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/beevik/etree"
)

//go:embed embedded/dot.envrc
var envrcTemplate string

//go:embed embedded/rsenv.sh
var runScriptTemplate string

var runScript = template.Must(template.New("rsenv.sh").Parse(runScriptTemplate))

// RunScriptData fills the IDE run script
type RunScriptData struct {
	Project string
	// SopsPath is the sentinel directory relative to $HOME
	SopsPath string
}

// Envrc returns the starter config file written by init
func Envrc() string {
	return envrcTemplate
}

// RunScript renders the IDE run script
func RunScript(data RunScriptData) (string, error) {
	var buf bytes.Buffer
	if err := runScript.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render run script")
	}
	return buf.String(), nil
}

// RunConfigurationXML builds a JetBrains shell run configuration named name
// that executes scriptPath (relative to the project dir) in the project dir.
func RunConfigurationXML(name, scriptPath string) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	component := doc.CreateElement("component")
	component.CreateAttr("name", "ProjectRunConfigurationManager")

	cfg := component.CreateElement("configuration")
	cfg.CreateAttr("default", "false")
	cfg.CreateAttr("name", name)
	cfg.CreateAttr("type", "ShConfigurationType")

	options := [][2]string{
		{"SCRIPT_TEXT", ""},
		{"INDEPENDENT_SCRIPT_PATH", "true"},
		{"SCRIPT_PATH", "$PROJECT_DIR$/" + scriptPath},
		{"SCRIPT_OPTIONS", ""},
		{"INDEPENDENT_SCRIPT_WORKING_DIRECTORY", "true"},
		{"SCRIPT_WORKING_DIRECTORY", "$PROJECT_DIR$"},
		{"INDEPENDENT_INTERPRETER_PATH", "true"},
		{"INTERPRETER_PATH", "/bin/bash"},
		{"INTERPRETER_OPTIONS", ""},
		{"EXECUTE_IN_TERMINAL", "false"},
		{"EXECUTE_SCRIPT_FILE", "true"},
	}
	for _, opt := range options {
		el := cfg.CreateElement("option")
		el.CreateAttr("name", opt[0])
		el.CreateAttr("value", opt[1])
	}
	cfg.CreateElement("envs")
	cfg.CreateElement("method").CreateAttr("v", "2")

	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render run configuration")
	}
	return out, nil
}

// RunConfigurationScript returns the SCRIPT_PATH option of a run
// configuration document, or "" when it has none.
func RunConfigurationScript(content string) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(content); err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "invalid run configuration")
	}
	el := doc.FindElement("//configuration/option[@name='SCRIPT_PATH']")
	if el == nil {
		return "", nil
	}
	return el.SelectAttrValue("value", ""), nil
}
