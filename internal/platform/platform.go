package platform

import (
	"runtime"

	"codefendpanel/internal/plugin"
)

// Class is the platform family the host was built for.
type Class int

const (
	// Desktop is any desktop OS other than macOS
	Desktop Class = iota
	// MacOS keeps native window decorations
	MacOS
	// Mobile targets create their window in the platform shell
	Mobile
)

// String returns the class name used in logs and the os plugin
func (c Class) String() string {
	switch c {
	case MacOS:
		return "macos"
	case Mobile:
		return "mobile"
	default:
		return "desktop"
	}
}

// IsDesktop reports whether the host owns window creation on this class
func (c Class) IsDesktop() bool {
	return c != Mobile
}

// ClassFor maps a GOOS value to its platform class
func ClassFor(goos string) Class {
	switch goos {
	case "darwin":
		return MacOS
	case "android", "ios":
		return Mobile
	default:
		return Desktop
	}
}

// Detect resolves the class of the running binary
func Detect() Class {
	return ClassFor(runtime.GOOS)
}

// Info describes the running platform
type Info struct {
	OS    string `json:"os"`
	Arch  string `json:"arch"`
	Class string `json:"class"`
	// Target is the "<os>-<arch>" key used by update manifests
	Target string `json:"target"`
}

// Current returns platform information for the running binary
func Current() Info {
	return InfoFor(runtime.GOOS, runtime.GOARCH)
}

// InfoFor builds platform information for the given GOOS/GOARCH pair
func InfoFor(goos, goarch string) Info {
	return Info{
		OS:     goos,
		Arch:   goarch,
		Class:  ClassFor(goos).String(),
		Target: goos + "-" + manifestArch(goarch),
	}
}

// manifestArch converts GOARCH to the arch names used in release manifests
func manifestArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	case "arm":
		return "armv7"
	default:
		return goarch
	}
}

// Service exposes platform information to the UI
type Service struct {
	info Info
}

// NewService creates the os plugin service
func NewService() *Service {
	return &Service{info: Current()}
}

// Plugin registers the service as the "os" plugin
func Plugin(s *Service) plugin.Plugin {
	return plugin.Plugin{Name: "os", Service: s}
}

// Platform returns the OS name
func (s *Service) Platform() string {
	return s.info.OS
}

// Arch returns the CPU architecture
func (s *Service) Arch() string {
	return s.info.Arch
}

// Family returns "unix" or "windows"
func (s *Service) Family() string {
	if s.info.OS == "windows" {
		return "windows"
	}
	return "unix"
}

// Info returns the full platform description
func (s *Service) Info() Info {
	return s.info
}
