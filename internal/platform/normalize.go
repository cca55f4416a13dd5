package platform

import (
	"fmt"
	"strings"
)

// familyMap normalizes distribution names reported by gopsutil to
// canonical family names.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian,
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
	"gentoo":   FamilyGentoo,
}

// manifestOS maps a GOOS value to the identifier release manifests use.
func manifestOS(goos string) (string, error) {
	switch goos {
	case "linux":
		return OSLinux, nil
	case "darwin":
		return OSMacOS, nil
	case "windows":
		return OSWindows, nil
	default:
		return "", fmt.Errorf("no official release packages for OS %q", goos)
	}
}

// manifestArches maps a GOOS/GOARCH pair to the manifest architecture
// identifiers the host can run, most specific first. macOS releases ship a
// single universal package; 64-bit Windows can also run the 32-bit package.
func manifestArches(goos, goarch string) ([]string, error) {
	switch goos {
	case "darwin":
		switch goarch {
		case "amd64":
			return []string{"universal", "x86_64"}, nil
		case "arm64":
			return []string{"universal", "arm64"}, nil
		}
	case "linux":
		switch goarch {
		case "amd64":
			return []string{"x86_64"}, nil
		case "arm64":
			return []string{"aarch64"}, nil
		case "386":
			return []string{"i386"}, nil
		}
	case "windows":
		switch goarch {
		case "amd64":
			return []string{"x86_64", "i386"}, nil
		case "arm64":
			return []string{"arm64"}, nil
		case "386":
			return []string{"i386"}, nil
		}
	}
	return nil, fmt.Errorf("no official release packages for %s/%s", goos, goarch)
}

// normalizePlatform lowercases and trims distro identifiers for consistent
// matching.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps a distribution family string to a canonical family name.
func mapFamily(family string) string {
	if canonical, ok := familyMap[normalizePlatform(family)]; ok {
		return canonical
	}
	return FamilyUnknown
}
