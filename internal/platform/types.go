// Package platform detects the host operating system and CPU architecture
// and normalizes them into the identifiers CMake release manifests use.
// On Linux it additionally detects the distribution via gopsutil so the
// caller can warn when the host's libc is unlikely to run the official
// glibc-linked binaries.
package platform

import "context"

// Manifest OS identifiers.
const (
	OSLinux   = "linux"
	OSMacOS   = "macos"
	OSWindows = "windows"
)

// Linux distribution family constants used by the libc advisory.
const (
	FamilyDebian  = "debian"
	FamilyRHEL    = "rhel"
	FamilyFedora  = "fedora"
	FamilySUSE    = "suse"
	FamilyArch    = "arch"
	FamilyAlpine  = "alpine"
	FamilyGentoo  = "gentoo"
	FamilyUnknown = "unknown"
)

// Info describes the host platform in both Go runtime terms and release
// manifest terms. It is detected once at invocation time and passed through
// the pipeline explicitly.
type Info struct {
	OS   string // GOOS: "linux", "darwin", "windows"
	Arch string // GOARCH: "amd64", "arm64", ...

	ManifestOS     string   // manifest identifier: "linux", "macos", "windows"
	ManifestArches []string // accepted manifest architecture identifiers

	// Linux distribution details; empty on other OSes or when
	// detection fails.
	Distro  string // distro ID, e.g. "ubuntu", "alpine"
	Family  string // canonical family, e.g. "debian", "alpine"
	Version string // distro version, e.g. "22.04"
}

// UsesMusl reports whether the host very likely runs musl libc instead of
// glibc. Official Linux release binaries are glibc-linked.
func (i *Info) UsesMusl() bool {
	return i.OS == "linux" && i.Family == FamilyAlpine
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
