package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector against the actual host.
type RealDetector struct{}

// NewDetector creates a platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect inspects the running host once. OS and architecture come from the
// Go runtime and are normalized into manifest identifiers; on Linux,
// gopsutil supplies distribution details for the libc advisory.
//
// Distribution detection failing is not fatal: the pipeline only needs
// OS/arch, and the advisory is best effort. An OS or architecture with no
// official release packages at all is fatal here, before any transfer.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info, err := newInfo(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return nil, err
	}

	if info.OS == "linux" {
		distro, family, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			// Best effort: OS/arch alone is enough for selection.
			return info, nil
		}
		if distro = normalizePlatform(distro); distro != "" {
			info.Distro = distro
			info.Family = mapFamily(family)
			info.Version = normalizePlatform(version)
		}
	}

	return info, nil
}

// newInfo builds an Info from explicit GOOS/GOARCH values. Split out from
// Detect so tests can exercise the normalization for hosts they are not
// running on.
func newInfo(goos, goarch string) (*Info, error) {
	osID, err := manifestOS(goos)
	if err != nil {
		return nil, err
	}
	arches, err := manifestArches(goos, goarch)
	if err != nil {
		return nil, err
	}
	return &Info{
		OS:             goos,
		Arch:           goarch,
		ManifestOS:     osID,
		ManifestArches: arches,
	}, nil
}
