// Package platform detects the host facts exposed to snippet default templates.
package platform

import (
	"log/slog"
	"maps"
	"os"
	"os/user"
	"runtime"
	"strings"
)

// Supported operating system identifiers.
const (
	// OSLinux represents Linux and other unix-like systems
	OSLinux = "linux"
	// OSWindows represents Windows operating systems
	OSWindows = "windows"
)

// Platform holds detected platform information.
type Platform struct {
	EnvVars    map[string]string
	OS         string
	Hostname   string
	User       string
	HasDisplay bool
}

// Detect detects the current platform characteristics.
func Detect() *Platform {
	p := &Platform{
		OS:       detectOS(),
		Hostname: detectHostname(),
		User:     detectUser(),
		EnvVars:  make(map[string]string),
	}

	p.HasDisplay = detectDisplay(p.OS)

	return p
}

// CanUseClipboard reports whether a system clipboard is likely reachable.
// On Linux the clipboard helpers need a running display server.
func (p *Platform) CanUseClipboard() bool {
	return p.HasDisplay
}

func detectHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		slog.Debug("unable to detect hostname",
			slog.String("error", err.Error()),
			slog.String("fallback", "empty"))
		return ""
	}

	return hostname
}

func detectUser() string {
	u, err := user.Current()
	if err != nil {
		slog.Debug("unable to detect current user",
			slog.String("error", err.Error()),
			slog.String("fallback", "empty"))
		return ""
	}

	return u.Username
}

func detectOS() string {
	if runtime.GOOS == "windows" {
		return OSWindows
	}

	// Also check OS environment variable (for cross-platform scripts)
	osEnv := os.Getenv("OS")
	if strings.Contains(strings.ToLower(osEnv), "windows") {
		return OSWindows
	}

	return OSLinux
}

// detectDisplay checks whether a display server is available.
// On Linux, it checks for DISPLAY (X11) or WAYLAND_DISPLAY (Wayland).
// On Windows, it always returns true.
func detectDisplay(osType string) bool {
	if osType == OSWindows {
		return true
	}

	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// WithOS returns a copy of the Platform with the OS field overridden.
func (p *Platform) WithOS(osType string) *Platform {
	newP := *p
	newP.OS = osType
	newP.EnvVars = maps.Clone(p.EnvVars)

	return &newP
}

// WithHostname returns a copy of the Platform with the Hostname field overridden.
func (p *Platform) WithHostname(hostname string) *Platform {
	newP := *p
	newP.Hostname = hostname
	newP.EnvVars = maps.Clone(p.EnvVars)

	return &newP
}

// WithUser returns a copy of the Platform with the User field overridden.
func (p *Platform) WithUser(username string) *Platform {
	newP := *p
	newP.User = username
	newP.EnvVars = maps.Clone(p.EnvVars)

	return &newP
}
