package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/benders"
)

func newStudy(t *testing.T, withLp bool) string {
	t.Helper()
	dataDir := t.TempDir()
	dir := filepath.Join(dataDir, "output", "20240101-0000eco")
	if withLp {
		dir = filepath.Join(dir, benders.LpDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	return dataDir
}

func requireMPIPlatform(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" && runtime.GOOS != "windows" {
		t.Skip("no MPI launcher on " + runtime.GOOS)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	testCases := []struct {
		name string
		args func(t *testing.T) []string
		want int
	}{
		{"version", func(*testing.T) []string { return []string{"--version"} }, 0},
		{"help", func(*testing.T) []string { return []string{"-h"} }, 0},
		{"unknown_flag", func(*testing.T) []string { return []string{"--step", "full"} }, 1},
		{"missing_data_dir", func(*testing.T) []string { return nil }, 1},
		{"bad_method", func(t *testing.T) []string { return []string{"-i", newStudy(t, true), "-m", "frontal"} }, 1},
		{"bad_np", func(t *testing.T) []string { return []string{"-i", newStudy(t, true), "-n", "0"} }, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := run(tc.args(t)); got != tc.want {
				t.Errorf("run = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRun_PrintCmd(t *testing.T) {
	requireMPIPlatform(t)

	if got := run([]string{"-i", newStudy(t, true), "-m", "mpibenders", "-n", "3", "--print-cmd"}); got != 0 {
		t.Errorf("run = %d, want 0", got)
	}
}

func TestRun_PrintCmdMissingLp(t *testing.T) {
	requireMPIPlatform(t)

	if got := run([]string{"-i", newStudy(t, false), "--print-cmd"}); got != 2 {
		t.Errorf("run = %d, want 2 (rejected before spawning)", got)
	}
}

func TestRun_NoSimulation(t *testing.T) {
	dataDir := t.TempDir()
	if got := run([]string{"-i", dataDir, "--skip-preflight"}); got != 2 {
		t.Errorf("run = %d, want 2", got)
	}
}
