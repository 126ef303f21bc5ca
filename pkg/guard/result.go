package guard

// Result reports what an operation changed
type Result struct {
	Operation  string   `json:"operation" yaml:"operation"`
	SourceDir  string   `json:"source_dir" yaml:"source_dir"`
	Sentinel   string   `json:"sentinel,omitempty" yaml:"sentinel,omitempty"`
	TargetDir  string   `json:"target_dir,omitempty" yaml:"target_dir,omitempty"`
	Path       string   `json:"path,omitempty" yaml:"path,omitempty"`
	StoredPath string   `json:"stored_path,omitempty" yaml:"stored_path,omitempty"`
	Relative   bool     `json:"relative" yaml:"relative"`
	Created    []string `json:"created,omitempty" yaml:"created,omitempty"`
	Restored   []string `json:"restored,omitempty" yaml:"restored,omitempty"`
	Skipped    []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

func (g *Guard) result(operation string) *Result {
	return &Result{
		Operation:  operation,
		SourceDir:  g.SourceDir,
		Sentinel:   g.Sentinel,
		TargetDir:  g.TargetDir,
		Path:       g.ConfigPath(),
		StoredPath: g.StoredPath(),
		Relative:   g.Relative,
	}
}
