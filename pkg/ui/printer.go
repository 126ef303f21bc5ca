package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/guard"
	"github.com/arthur-debert/confguard/pkg/sops"
)

// Printer writes command output in one resolved format
type Printer struct {
	Out    io.Writer
	Format Format
	styles Styles
}

// NewPrinter returns a printer for format. FormatAuto must be resolved by
// the caller.
func NewPrinter(out io.Writer, format Format) *Printer {
	p := &Printer{Out: out, Format: format}
	if format == FormatTerminal {
		p.styles = DefaultStyles()
	} else {
		p.styles = Styles{}
	}
	return p
}

// Structured writes v as JSON or YAML
func (p *Printer) Structured(v interface{}) error {
	switch p.Format {
	case FormatJSON:
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode JSON")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(p.Out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode YAML")
		}
		return enc.Close()
	default:
		return errors.Newf(errors.ErrInvalidInput, "%s is not a structured format", p.Format)
	}
	return nil
}

func (p *Printer) field(label, value, style string) {
	if value == "" {
		return
	}
	fmt.Fprintf(p.Out, "%s %s\n", p.styles.Render("Label", label+":"), p.styles.Render(style, value))
}

// StateBadge renders a project state, colored on terminals
func (p *Printer) StateBadge(state guard.State) string {
	text := " " + strings.ToUpper(string(state)) + " "
	if p.Format != FormatTerminal {
		return string(state)
	}
	switch state {
	case guard.StateGuarded:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite).Sprint(text)
	case guard.StateUnguarded:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Sprint(text)
	case guard.StateBrokenLink, guard.StateForeignLink:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold).Sprint(text)
	default:
		return pterm.NewStyle(pterm.FgGray).Sprint(text)
	}
}

// Status prints the state of a project
func (p *Printer) Status(st *guard.Status) error {
	if p.Format.Structured() {
		return p.Structured(st)
	}
	fmt.Fprintf(p.Out, "%s %s\n", p.styles.Render("Label", "State:"), p.StateBadge(st.State))
	p.field("Project", st.SourceDir, "Path")
	p.field("Config", st.ConfigPath, "Path")
	p.field("Link", st.LinkTarget, "Path")
	p.field("Sentinel", st.Sentinel, "Sentinel")
	p.field("Store", st.TargetDir, "Path")
	if st.State == guard.StateGuarded {
		p.field("Relative", fmt.Sprintf("%t", st.Relative), "")
		p.field("Version", fmt.Sprintf("%d", st.Version), "")
		p.field("Guarded at", st.Timestamp, "Muted")
		p.field("Run script", st.RunScript, "Path")
	}
	return nil
}

// Result prints what an operation changed
func (p *Printer) Result(res *guard.Result) error {
	if p.Format.Structured() {
		return p.Structured(res)
	}
	fmt.Fprintln(p.Out, p.styles.Render("Success", res.Operation+" done"))
	p.field("Project", res.SourceDir, "Path")
	p.field("Sentinel", res.Sentinel, "Sentinel")
	p.field("Path", res.Path, "Path")
	p.field("Stored at", res.StoredPath, "Path")
	p.list("Created", res.Created, "")
	p.list("Restored", res.Restored, "")
	p.list("Skipped", res.Skipped, "Warning")
	return nil
}

func (p *Printer) list(label string, items []string, style string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(p.Out, p.styles.Render("Label", label+":"))
	for _, item := range items {
		fmt.Fprintf(p.Out, "  %s\n", p.styles.Render(style, item))
	}
}

// Jobs prints the files an encryption batch handled
func (p *Printer) Jobs(operation string, jobs []sops.Job) error {
	if p.Format.Structured() {
		return p.Structured(map[string]interface{}{"operation": operation, "jobs": jobs})
	}
	if len(jobs) == 0 {
		fmt.Fprintln(p.Out, p.styles.Render("Muted", "no files matched"))
		return nil
	}
	fmt.Fprintln(p.Out, p.styles.Render("Success", fmt.Sprintf("%s: %d file(s)", operation, len(jobs))))
	for _, job := range jobs {
		fmt.Fprintf(p.Out, "  %s -> %s\n", job.Input, p.styles.Render("Path", job.Output))
	}
	return nil
}

// Paths prints a titled list of paths
func (p *Printer) Paths(title string, items []string) error {
	if p.Format.Structured() {
		return p.Structured(map[string]interface{}{"operation": title, "paths": items})
	}
	fmt.Fprintln(p.Out, p.styles.Render("Success", fmt.Sprintf("%s: %d file(s)", title, len(items))))
	for _, item := range items {
		fmt.Fprintf(p.Out, "  %s\n", p.styles.Render("Path", item))
	}
	return nil
}

// Info prints an informational message
func (p *Printer) Info(msg string) {
	if p.Format.Structured() {
		_ = p.Structured(map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(p.Out, p.styles.Render("Info", msg))
}

// ProgressBar returns a progress callback drawing a pterm bar on w, started
// on the first finished job, and a func stopping it. Non terminal formats get
// a nil callback, which disables progress reporting.
func (p *Printer) ProgressBar(w io.Writer, title string) (sops.Progress, func()) {
	if p.Format != FormatTerminal {
		return nil, func() {}
	}
	var bar *pterm.ProgressbarPrinter
	progress := func(done, total int, job sops.Job, err error) {
		if bar == nil {
			started, startErr := pterm.DefaultProgressbar.
				WithTotal(total).
				WithTitle(title).
				WithWriter(w).
				Start()
			if startErr != nil {
				return
			}
			bar = started
		}
		bar.Increment()
	}
	stop := func() {
		if bar != nil {
			_, _ = bar.Stop()
		}
	}
	return progress, stop
}
