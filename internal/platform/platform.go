// Package platform resolves the MPI launcher for the host operating system.
package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// ErrUnsupportedPlatform is returned when no MPI launcher is known for the host.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Family is the operating system family a launcher was resolved for.
type Family int

const (
	// FamilyWindows uses MS-MPI's mpiexec.
	FamilyWindows Family = iota

	// FamilyLinux uses Open MPI / MPICH's mpirun.
	FamilyLinux
)

// String returns a human-readable name for the family.
func (f Family) String() string {
	switch f {
	case FamilyWindows:
		return "windows"
	case FamilyLinux:
		return "linux"
	default:
		return "unknown"
	}
}

// Launcher describes how to start an MPI job on this platform.
type Launcher struct {
	Family     Family
	Executable string // "mpiexec" or "mpirun"
	CountFlag  string // process count flag, "-n" or "-np"
}

// Resolve classifies a platform identifier (a GOOS value such as "linux" or
// "windows") and returns its MPI launcher.
func Resolve(goos string) (Launcher, error) {
	id := strings.ToLower(strings.TrimSpace(goos))
	switch {
	case strings.HasPrefix(id, "windows"), strings.HasPrefix(id, "win32"):
		return Launcher{Family: FamilyWindows, Executable: "mpiexec", CountFlag: "-n"}, nil
	case strings.HasPrefix(id, "linux"):
		return Launcher{Family: FamilyLinux, Executable: "mpirun", CountFlag: "-np"}, nil
	default:
		return Launcher{}, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, goos)
	}
}

var (
	currentOnce     sync.Once
	currentLauncher Launcher
	currentErr      error
)

// Current resolves the launcher for runtime.GOOS. The result is computed once.
func Current() (Launcher, error) {
	currentOnce.Do(func() {
		currentLauncher, currentErr = Resolve(runtime.GOOS)
	})
	return currentLauncher, currentErr
}
