package benders

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Artifact kinds removed after a successful run.
const (
	KindLog = "log"
	KindMPS = "mps"
	KindLP  = "lp"
)

// intermediateExtensions maps removable problem file extensions to their kind.
var intermediateExtensions = map[string]string{
	".mps": KindMPS,
	".lp":  KindLP,
}

// RemovedFile is one artifact deleted by Clean.
type RemovedFile struct {
	Path string
	Kind string
	Size int64
}

// CleanReport lists what Clean removed.
type CleanReport struct {
	Removed []RemovedFile
	Failed  []string // paths that existed but could not be removed
}

// Bytes returns the total size of removed files of the given kind ("" = all).
func (r CleanReport) Bytes(kind string) int64 {
	var n int64
	for _, f := range r.Removed {
		if kind == "" || f.Kind == kind {
			n += f.Size
		}
	}
	return n
}

// Count returns the number of removed files of the given kind ("" = all).
func (r CleanReport) Count(kind string) int {
	n := 0
	for _, f := range r.Removed {
		if kind == "" || f.Kind == kind {
			n++
		}
	}
	return n
}

// SolverLogNames returns the log file names a solver writes next to
// options.txt: "<name>Log" and "<name>.log", where name is the executable's
// base name without a ".exe" suffix.
func SolverLogNames(executable string) []string {
	base := filepath.Base(executable)
	if strings.EqualFold(filepath.Ext(base), ".exe") {
		base = base[:len(base)-len(filepath.Ext(base))]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return nil
	}
	return []string{base + "Log", base + ".log"}
}

// Clean removes the solver logs of executable from lpDir and, unless keepMps
// is set, every .mps and .lp file directly inside lpDir. Files that are
// already gone are ignored; other failures are logged and reported, never
// returned.
func Clean(lpDir, executable string, keepMps bool, logger *slog.Logger) CleanReport {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var report CleanReport

	for _, name := range SolverLogNames(executable) {
		removeArtifact(filepath.Join(lpDir, name), KindLog, &report, logger)
	}

	if keepMps {
		logger.Debug("cleanup_keep_mps", "dir", lpDir)
		return report
	}

	entries, err := os.ReadDir(lpDir)
	if err != nil {
		logger.Warn("cleanup_read_dir_failed", "dir", lpDir, "error", err)
		return report
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		kind, ok := intermediateExtensions[filepath.Ext(e.Name())]
		if !ok {
			continue
		}
		removeArtifact(filepath.Join(lpDir, e.Name()), kind, &report, logger)
	}

	return report
}

// removeArtifact deletes one regular file and records the outcome.
func removeArtifact(path, kind string, report *CleanReport, logger *slog.Logger) {
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("cleanup_stat_failed", "path", path, "error", err)
			report.Failed = append(report.Failed, path)
		}
		return
	}
	if info.IsDir() {
		return
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		logger.Warn("cleanup_remove_failed", "path", path, "error", err)
		report.Failed = append(report.Failed, path)
		return
	}

	logger.Debug("artifact_removed", "path", path, "kind", kind, "size", info.Size())
	report.Removed = append(report.Removed, RemovedFile{Path: path, Kind: kind, Size: info.Size()})
}
