package release

import "fmt"

// Channel identifies a distribution channel for official release packages.
type Channel string

const (
	// ChannelGitHub serves release assets from the GitHub releases of
	// Kitware/CMake. Asset URLs are keyed by the full version.
	ChannelGitHub Channel = "github"

	// ChannelKitware serves release assets from cmake.org/files. Asset
	// URLs are keyed by the MAJOR.MINOR feature line only.
	ChannelKitware Channel = "kitware"
)

// Production endpoints. Tests and mirror users override them on Source.
const (
	defaultGitHubAPIBase      = "https://api.github.com"
	defaultGitHubDownloadBase = "https://github.com/Kitware/CMake/releases/download"
	defaultKitwareFilesBase   = "https://cmake.org/files"
)

// manifestName is the versioned manifest file name. The "files-v1" suffix
// pins the major schema version: a future files-v2 layout lives under a
// different name and is never requested by this code.
func manifestName(version string) string {
	return fmt.Sprintf("cmake-%s-files-v1.json", version)
}

// ParseChannel maps a --repo argument to a Channel.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelGitHub, ChannelKitware:
		return Channel(s), nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnsupportedRepo, s, ChannelGitHub, ChannelKitware)
	}
}

// Source resolves URLs for one distribution channel. The base URLs are
// exported so tests and mirrors can point at a different host.
type Source struct {
	Channel Channel

	// APIBase is the GitHub API root (github channel only).
	APIBase string

	// DownloadBase is the root under which per-release directories live.
	DownloadBase string
}

// NewSource returns a Source with the channel's production endpoints.
func NewSource(c Channel) *Source {
	s := &Source{Channel: c}
	switch c {
	case ChannelKitware:
		s.DownloadBase = defaultKitwareFilesBase
	default:
		s.APIBase = defaultGitHubAPIBase
		s.DownloadBase = defaultGitHubDownloadBase
	}
	return s
}

// ReleaseDir returns the URL of the directory holding every file of one
// release. The two channels shape this differently: GitHub keys by the full
// version tag, Kitware by the feature line.
func (s *Source) ReleaseDir(v Version) string {
	if s.Channel == ChannelKitware {
		return fmt.Sprintf("%s/v%s", s.DownloadBase, v.FeatureLine())
	}
	return fmt.Sprintf("%s/v%s", s.DownloadBase, v.String())
}

// ManifestURL returns the URL of the files-v1 manifest for a release.
func (s *Source) ManifestURL(v Version) string {
	return fmt.Sprintf("%s/%s", s.ReleaseDir(v), manifestName(v.String()))
}

// FileURL returns the URL of a named file within a release.
func (s *Source) FileURL(v Version, name string) string {
	return fmt.Sprintf("%s/%s", s.ReleaseDir(v), name)
}

// latestManifestURL returns the Kitware channel's own "latest" pointer: a
// manifest published under a fixed name that always describes the newest
// release.
func (s *Source) latestManifestURL() string {
	return fmt.Sprintf("%s/LatestRelease/%s", s.DownloadBase, manifestName("latest"))
}

// releasesURL returns the GitHub API endpoint listing published releases.
func (s *Source) releasesURL() string {
	return fmt.Sprintf("%s/repos/Kitware/CMake/releases?per_page=100", s.APIBase)
}
