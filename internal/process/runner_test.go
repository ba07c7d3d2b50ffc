package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRun_ExitCodes(t *testing.T) {
	skipOnWindows(t)
	testCases := []struct {
		name     string
		script   string
		expected int
	}{
		{"clean", "exit 0", 0},
		{"error", "exit 1", 1},
		{"custom", "exit 42", 42},
		{"sigkill", "kill -9 $$", 137},
		{"sigterm", "kill -15 $$", 143},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Run(context.Background(), Spec{Args: []string{"sh", "-c", tc.script}})
			if res.ExitCode != tc.expected {
				t.Errorf("ExitCode = %d, want %d", res.ExitCode, tc.expected)
			}
			if (res.Err == nil) != (tc.expected == 0) {
				t.Errorf("Err = %v for exit code %d", res.Err, res.ExitCode)
			}
		})
	}
}

func TestRun_WorkingDirectory(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	before, _ := os.Getwd()

	var out bytes.Buffer
	res := Run(context.Background(), Spec{Args: []string{"pwd"}, Dir: dir, Stdout: &out})
	if res.Err != nil {
		t.Fatalf("Run: %v", res.Err)
	}

	got, _ := filepath.EvalSymlinks(strings.TrimSpace(out.String()))
	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("child cwd = %q, want %q", got, want)
	}

	after, _ := os.Getwd()
	if before != after {
		t.Errorf("parent cwd changed from %q to %q", before, after)
	}
}

func TestRun_Stderr(t *testing.T) {
	skipOnWindows(t)
	var stderr bytes.Buffer
	res := Run(context.Background(), Spec{Args: []string{"sh", "-c", "echo oops >&2"}, Stderr: &stderr})
	if res.ExitCode != 0 {
		t.Fatalf("ExitCode = %d", res.ExitCode)
	}
	if !strings.Contains(stderr.String(), "oops") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if res.PID <= 0 {
		t.Errorf("PID = %d, want > 0", res.PID)
	}
	if res.Duration() < 0 {
		t.Errorf("Duration() = %v", res.Duration())
	}
}

func TestRun_StartFailure(t *testing.T) {
	res := Run(context.Background(), Spec{Args: []string{filepath.Join(t.TempDir(), "missing")}})
	if res.Err == nil {
		t.Fatal("expected start error")
	}
	if res.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", res.ExitCode)
	}
	if res.PID != 0 {
		t.Errorf("PID = %d, want 0", res.PID)
	}
}

func TestRun_EmptyCommand(t *testing.T) {
	res := Run(context.Background(), Spec{})
	if res.Err == nil || res.ExitCode == 0 {
		t.Errorf("empty command result = %+v", res)
	}
}

func TestExtractExitCode(t *testing.T) {
	if ExtractExitCode(nil) != 0 {
		t.Error("nil error should be exit code 0")
	}
	if ExtractExitCode(errors.New("boom")) != 1 {
		t.Error("unknown error should be exit code 1")
	}
}

func TestResult_DurationZeroWithoutStart(t *testing.T) {
	r := Result{EndTime: time.Now()}
	if r.Duration() != 0 {
		t.Errorf("Duration() = %v, want 0", r.Duration())
	}
}

func TestRun_CancelSendsSIGTERM(t *testing.T) {
	skipOnWindows(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := Run(ctx, Spec{Args: []string{"sh", "-c", "exec sleep 30"}, StopTimeout: 5 * time.Second})

	if res.ExitCode != 143 {
		t.Errorf("ExitCode = %d, want 143 (SIGTERM)", res.ExitCode)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("process should stop on SIGTERM, not wait for the kill")
	}
}

func TestRun_CancelKillsAfterTimeout(t *testing.T) {
	skipOnWindows(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	res := Run(ctx, Spec{
		Args:        []string{"sh", "-c", "trap '' TERM; while :; do sleep 0.1; done"},
		StopTimeout: 300 * time.Millisecond,
	})

	if res.Err == nil {
		t.Error("a killed process should report an error")
	}
	if res.Duration() > 10*time.Second {
		t.Errorf("Duration = %v, process should be killed after the stop timeout", res.Duration())
	}
}
