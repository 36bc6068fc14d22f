package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/alnah/go-ifmerge/internal/config"
	"github.com/alnah/go-ifmerge/internal/fileutil"
	"github.com/alnah/go-ifmerge/internal/hints"
)

// defaultInterfacesPath is the file inspected when doctor gets no argument.
const defaultInterfacesPath = "/etc/network/interfaces"

// errDoctorFailed makes runDoctor exit non-zero without a second message.
var errDoctorFailed = errors.New("doctor found errors")

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Config   configInfo `json:"config"`
	File     fileInfo   `json:"file"`
	Markers  markerInfo `json:"markers"`
	Env      envInfo    `json:"environment"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// configInfo describes the config in effect.
type configInfo struct {
	Source string `json:"source"` // path, or "defaults"
	Strict bool   `json:"strict"`
}

// fileInfo holds checks on the inspected file.
type fileInfo struct {
	Path     string `json:"path"`
	Readable bool   `json:"readable"`
	Writable bool   `json:"writable"`
}

// markerInfo holds what a merge would find in the file.
type markerInfo struct {
	Blocks   int      `json:"blocks"`
	Orphans  int      `json:"orphans"`
	Anchored bool     `json:"anchored"`
	Issues   []string `json:"issues,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Container bool   `json:"container"`
	Root      bool   `json:"root"`
}

// runDoctor handles the doctor command: ifmerge doctor [file] [--json].
func runDoctor(_ context.Context, args []string, env *Environment) error {
	flags, positional, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: doctor takes at most one file, got %d", ErrUsage, len(positional))
	}
	path := defaultInterfacesPath
	if len(positional) == 1 {
		path = positional[0]
	}

	result := inspect(path, flags.common.config)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return errDoctorFailed
	}
	return nil
}

// inspect runs every check on path.
func inspect(path, configName string) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		File:   fileInfo{Path: path},
		Env: envInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			Container: hints.IsInContainer(),
			Root:      hints.IsRoot(),
		},
	}

	cfg, source, err := loadConfig(configName, &Environment{Stdout: io.Discard, Stderr: io.Discard})
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		cfg = config.DefaultConfig()
	}
	result.Config = configInfo{Source: source, Strict: cfg.Strict}
	if source == "" {
		result.Config.Source = "defaults"
	}

	checkFile(result, cfg)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkFile reads the file, dry-runs a lenient merge with an empty
// fragment and probes write access to its directory.
func checkFile(result *doctorResult, cfg *config.Config) {
	path := result.File.Path

	content, err := fileutil.ReadText(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read %s: %v", path, err))
		return
	}
	result.File.Readable = true

	lenient := *cfg
	lenient.Strict = false
	merger, err := newMerger(&lenient, nil)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	res, err := merger.Merge(content, "")
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	result.Markers = markerInfo{
		Blocks:   res.BlocksRemoved,
		Orphans:  res.OrphansDropped,
		Anchored: res.Anchored,
	}
	for _, issue := range res.Issues {
		result.Markers.Issues = append(result.Markers.Issues, issue.Error())
	}

	switch {
	case res.BlocksRemoved > 1:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d managed blocks found, the next merge keeps one", res.BlocksRemoved))
	case res.BlocksRemoved == 0:
		result.Warnings = append(result.Warnings, "no managed block yet, the first merge adds it")
	}
	if res.OrphansDropped > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d OVS stanza(s) outside the markers will be removed", res.OrphansDropped))
	}
	if !res.Anchored {
		result.Warnings = append(result.Warnings, "anchor line not found, the block will be appended")
	}
	if len(res.Issues) > 0 {
		msg := fmt.Sprintf("%d malformed marker(s)", len(res.Issues))
		if cfg.Strict {
			result.Errors = append(result.Errors, msg+", strict merges will fail")
		} else {
			result.Warnings = append(result.Warnings, msg+", the next merge repairs them")
		}
	}

	result.File.Writable = dirWritable(filepath.Dir(path))
	if !result.File.Writable {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("cannot write in %s%s", filepath.Dir(path), hints.ForPermission(path)))
	}
}

// dirWritable reports whether a temp file can be created in dir, which is
// what the atomic writer needs.
func dirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".ifmerge-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "ifmerge doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.Source)
	fmt.Fprintf(w, "  [OK] Strict: %t\n", r.Config.Strict)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "File")
	if r.File.Readable {
		fmt.Fprintf(w, "  [OK] Readable: %s\n", r.File.Path)
		fmt.Fprintf(w, "  [OK] Managed blocks: %d\n", r.Markers.Blocks)
		fmt.Fprintf(w, "  [OK] Orphan stanzas: %d\n", r.Markers.Orphans)
		fmt.Fprintf(w, "  [OK] Anchor found: %t\n", r.Markers.Anchored)
		for _, issue := range r.Markers.Issues {
			fmt.Fprintf(w, "  [WARN] %s\n", issue)
		}
		if r.File.Writable {
			fmt.Fprintln(w, "  [OK] Directory: writable")
		}
	} else {
		fmt.Fprintf(w, "  [ERROR] Not readable: %s\n", r.File.Path)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to merge")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
