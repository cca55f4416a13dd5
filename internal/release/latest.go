package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

// githubRelease is the subset of the GitHub releases API response the
// resolver consumes.
type githubRelease struct {
	TagName string `json:"tag_name"`
	Draft   bool   `json:"draft"`
}

// ResolveLatest determines the newest published release for the channel.
//
// The github channel lists published releases and takes the maximum under
// the Version order, so a lingering 3.21.0-rc2 never beats 3.21.0. The
// kitware channel delegates to its own fixed "latest" pointer and the
// resolver does not second-guess it; the manifest fetched from that pointer
// is returned alongside the version so the fetch stage can reuse it.
func (s *Source) ResolveLatest(ctx context.Context, d *Downloader, logger Logger) (Version, *Manifest, error) {
	if logger == nil {
		logger = defaultLogger()
	}

	if s.Channel == ChannelKitware {
		url := s.latestManifestURL()
		logger.Debug("resolving latest from channel pointer", "url", url)
		data, err := d.FetchBytes(ctx, url, nil)
		if err != nil {
			return Version{}, nil, err
		}
		m, err := ParseManifest(data)
		if err != nil {
			return Version{}, nil, err
		}
		v, err := m.ResolvedVersion()
		if err != nil {
			return Version{}, nil, err
		}
		return v, m, nil
	}

	url := s.releasesURL()
	logger.Debug("resolving latest from release list", "url", url)

	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	if token := githubToken(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	data, err := d.FetchBytes(ctx, url, header)
	if err != nil {
		return Version{}, nil, err
	}

	var releases []githubRelease
	if err := json.Unmarshal(data, &releases); err != nil {
		return Version{}, nil, fmt.Errorf("%w: release list: %v\nresponse tail:\n%s",
			ErrFetch, err, responseTail(data, parseErrorTailLines))
	}

	var best Version
	found := false
	for _, r := range releases {
		if r.Draft {
			continue
		}
		tag := r.TagName
		if len(tag) > 0 && tag[0] == 'v' {
			tag = tag[1:]
		}
		v, err := ParseVersion(tag)
		if err != nil {
			// Tags that are not plain release versions are not
			// candidates for "latest".
			logger.Debug("skipping unparsable release tag", "tag", r.TagName)
			continue
		}
		if !found || v.Compare(best) > 0 {
			best = v
			found = true
		}
	}

	if !found {
		return Version{}, nil, fmt.Errorf("%w: release list contains no usable versions", ErrFetch)
	}

	logger.Debug("resolved latest release", "version", best.String())
	return best, nil, nil
}

// githubToken returns an API token from the conventional CI environment
// variables, if one is set. Unauthenticated requests work but are rate
// limited much more aggressively.
func githubToken() string {
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t
	}
	return os.Getenv("GH_TOKEN")
}
