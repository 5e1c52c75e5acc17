// Package integrity verifies a preview project on disk and restores
// what it can: missing scaffold files, lost manifest dependencies, a
// scene whose structure or default export broke.
package integrity

import (
	"fmt"
	"sort"
	"strings"

	"framewright/internal/convert"
	"framewright/internal/manifest"
	"framewright/internal/projfs"
	"framewright/internal/scaffold"
)

type Severity string

const (
	// SeverityError marks findings that stop the preview from running.
	SeverityError Severity = "error"
	// SeverityWarning marks degraded but runnable state.
	SeverityWarning Severity = "warning"
)

// Finding is one problem located during a check.
type Finding struct {
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Message  string   `json:"message"`
}

// Report is the outcome of one project sweep.
type Report struct {
	Dir      string    `json:"dir"`
	Findings []Finding `json:"findings,omitempty"`
}

// Healthy reports whether no error-severity findings remain.
func (r Report) Healthy() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return false
		}
	}
	return true
}

func (r *Report) add(sev Severity, file, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Severity: sev,
		File:     file,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Check sweeps the project under root without modifying anything.
func Check(root *projfs.Root) Report {
	rep := Report{Dir: root.Dir()}

	for _, name := range scaffold.Files() {
		info, err := root.Stat(name)
		if err != nil {
			rep.add(SeverityError, name, "file missing")
			continue
		}
		if info.Size() == 0 {
			rep.add(SeverityError, name, "file empty")
		}
	}

	checkManifest(root, &rep)
	checkScene(root, &rep)
	return rep
}

func checkManifest(root *projfs.Root, rep *Report) {
	if !root.Exists("package.json") {
		return // already reported as missing
	}
	path, err := root.Abs("package.json")
	if err != nil {
		rep.add(SeverityError, "package.json", "unresolvable path: %v", err)
		return
	}
	m, err := manifest.Load(path)
	if err != nil {
		rep.add(SeverityError, "package.json", "unparseable: %v", err)
		return
	}
	missing := missingBaseline(m)
	for _, dep := range missing {
		rep.add(SeverityWarning, "package.json", "dependency %s missing", dep)
	}
}

func missingBaseline(m *manifest.File) []string {
	var missing []string
	for dep := range scaffold.BaselineDependencies() {
		if !m.HasDependency(dep) {
			missing = append(missing, dep)
		}
	}
	sort.Strings(missing)
	return missing
}

func checkScene(root *projfs.Root, rep *Report) {
	b, err := root.ReadFile(scaffold.ScenePath)
	if err != nil || len(strings.TrimSpace(string(b))) == 0 {
		return // missing/empty already reported
	}
	src := string(b)

	parens, braces, err := convert.DelimiterBalance(src)
	if err != nil {
		rep.add(SeverityError, scaffold.ScenePath, "unscannable: %v", err)
		return
	}
	if parens != 0 || braces != 0 {
		rep.add(SeverityError, scaffold.ScenePath, "unbalanced delimiters (%+d parens, %+d braces)", parens, braces)
	}
	if !convert.HasDefaultExport(src) {
		rep.add(SeverityError, scaffold.ScenePath, "no default export")
	}
}

// Result pairs the pre- and post-repair sweeps with the actions taken.
type Result struct {
	Before  Report   `json:"before"`
	After   Report   `json:"after"`
	Actions []string `json:"actions,omitempty"`
}

// Repair fixes what Check found, best effort: missing files are
// re-scaffolded from spec, baseline dependencies restored, and a
// broken scene re-run through the converter's structural repairs. An
// existing scene file is never replaced wholesale.
func Repair(root *projfs.Root, spec scaffold.Spec) (Result, error) {
	res := Result{Before: Check(root)}

	for _, f := range res.Before.Findings {
		switch {
		case f.Message == "file missing" || f.Message == "file empty":
			if err := scaffold.WriteFile(root, f.File, spec); err != nil {
				return res, fmt.Errorf("integrity: restore %s: %w", f.File, err)
			}
			res.Actions = append(res.Actions, "restored "+f.File)
		case f.File == "package.json" && strings.HasPrefix(f.Message, "unparseable"):
			if err := scaffold.WriteFile(root, "package.json", spec); err != nil {
				return res, fmt.Errorf("integrity: rewrite manifest: %w", err)
			}
			res.Actions = append(res.Actions, "rewrote package.json")
		}
	}

	if acted, err := repairDependencies(root); err != nil {
		return res, err
	} else if len(acted) > 0 {
		res.Actions = append(res.Actions, acted...)
	}

	if acted, err := repairScene(root); err != nil {
		return res, err
	} else if len(acted) > 0 {
		res.Actions = append(res.Actions, acted...)
	}

	res.After = Check(root)
	return res, nil
}

func repairDependencies(root *projfs.Root) ([]string, error) {
	path, err := root.Abs("package.json")
	if err != nil {
		return nil, err
	}
	m, err := manifest.Load(path)
	if err != nil {
		return nil, nil // unparseable manifests were rewritten above or stay broken
	}
	missing := missingBaseline(m)
	if len(missing) == 0 {
		return nil, nil
	}
	pins := scaffold.BaselineDependencies()
	for _, dep := range missing {
		m.AddDependency(dep, pins[dep])
	}
	if err := m.Save(); err != nil {
		return nil, fmt.Errorf("integrity: save manifest: %w", err)
	}
	actions := make([]string, 0, len(missing))
	for _, dep := range missing {
		actions = append(actions, "pinned "+dep)
	}
	return actions, nil
}

func repairScene(root *projfs.Root) ([]string, error) {
	b, err := root.ReadFile(scaffold.ScenePath)
	if err != nil || len(strings.TrimSpace(string(b))) == 0 {
		return nil, nil
	}
	src := string(b)

	parens, braces, err := convert.DelimiterBalance(src)
	if err != nil {
		return nil, nil // unscannable scenes are reported, not rewritten
	}

	var actions []string
	if parens != 0 || braces != 0 {
		// The converter's structural pass appends the missing closers
		// and is idempotent on already-converted scenes.
		res, err := convert.Convert(src)
		if err != nil {
			return nil, nil
		}
		src = res.Code
		actions = append(actions, "rebalanced scene delimiters")
	} else if !convert.HasDefaultExport(src) {
		repaired, changed, err := convert.RepairExports(src)
		if err != nil || !changed {
			return actions, nil
		}
		src = repaired
		actions = append(actions, "restored scene default export")
	}

	if len(actions) == 0 {
		return nil, nil
	}
	if err := root.WriteFile(scaffold.ScenePath, []byte(src)); err != nil {
		return nil, fmt.Errorf("integrity: write scene: %w", err)
	}
	return actions, nil
}
