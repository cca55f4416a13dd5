package release

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseErrorTailLines bounds how much of an unparsable response is surfaced.
// API error bodies are short HTML or JSON blobs, so the tail is the useful
// part for diagnostics.
const parseErrorTailLines = 13

// classArchive tags the downloadable archive asset. Other classes
// (installers, source archives) are never selected by this tool.
const classArchive = "archive"

// Manifest is a parsed files-v1 release manifest. It is immutable once
// fetched and scoped to a single invocation.
type Manifest struct {
	Version   ManifestVersion `json:"version"`
	Files     []Artifact      `json:"files"`
	HashFiles []HashFile      `json:"hashFiles"`
}

// ManifestVersion is the manifest's own statement of which release it
// describes.
type ManifestVersion struct {
	Major  int    `json:"major"`
	Minor  int    `json:"minor"`
	Patch  int    `json:"patch"`
	Suffix string `json:"suffix"`
	String string `json:"string"`
}

// Artifact describes one downloadable release asset.
type Artifact struct {
	OS           []string `json:"os"`
	Architecture []string `json:"architecture"`
	Class        string   `json:"class"`
	Name         string   `json:"name"`
	Deprecated   string   `json:"deprecated"`
}

// HashFile describes a hash-list file and the detached signatures
// published over it.
type HashFile struct {
	Algorithm  []string `json:"algorithm"`
	Name       string   `json:"name"`
	Signature  []string `json:"signature"`
	Deprecated string   `json:"deprecated"`
}

// ParseManifest parses and validates a files-v1 manifest document. On
// failure the last few lines of the raw document are included in the error
// so the caller can see what the server actually returned.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v\nresponse tail:\n%s", ErrManifestParse, err, responseTail(data, parseErrorTailLines))
	}

	// A document that decodes but lacks the files-v1 structure is rejected
	// rather than half-used. This also catches incompatible future schema
	// revisions served under an unexpected name.
	if m.Version.String == "" || m.Version.Major <= 0 {
		return nil, fmt.Errorf("%w: missing or incoherent version object\nresponse tail:\n%s", ErrManifestParse, responseTail(data, parseErrorTailLines))
	}
	if len(m.Files) == 0 {
		return nil, fmt.Errorf("%w: manifest lists no files", ErrManifestParse)
	}

	return &m, nil
}

// ResolvedVersion returns the release version the manifest describes,
// assembled from the manifest's version object.
func (m *Manifest) ResolvedVersion() (Version, error) {
	v, err := ParseVersion(m.Version.String)
	if err != nil {
		return Version{}, fmt.Errorf("%w: manifest version %q: %v", ErrManifestParse, m.Version.String, err)
	}
	return v, nil
}

// SelectHashFile returns the first hash-file entry whose algorithm set
// contains SHA-256. The manifest may list other algorithms; only SHA-256 is
// consumed here.
func (m *Manifest) SelectHashFile() (*HashFile, error) {
	for i := range m.HashFiles {
		hf := &m.HashFiles[i]
		for _, alg := range hf.Algorithm {
			if strings.EqualFold(alg, "sha256") {
				return hf, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: release %s", ErrNoHashFile, m.Version.String)
}

// SelectArtifact returns the first archive-class entry matching the host
// OS identifier and any of the accepted host architectures. An empty result
// is fatal: the release has no package for this platform.
//
// The files-v1 schema does not promise that at most one entry qualifies.
// When several do, the first in manifest order wins and the rest are named
// at debug level, mirroring how the manifest publisher orders entries.
func (m *Manifest) SelectArtifact(osID string, arches []string, logger Logger) (*Artifact, error) {
	if logger == nil {
		logger = defaultLogger()
	}

	var selected *Artifact
	for i := range m.Files {
		f := &m.Files[i]
		if f.Class != classArchive {
			continue
		}
		if !containsFold(f.OS, osID) || !intersectsFold(f.Architecture, arches) {
			continue
		}
		if selected == nil {
			selected = f
			continue
		}
		logger.Debug("ignoring additional matching artifact", "name", f.Name, "selected", selected.Name)
	}

	if selected == nil {
		return nil, fmt.Errorf("%w: no %s archive for os=%s arch=%s in release %s",
			ErrUnsupportedPlatform, classArchive, osID, strings.Join(arches, "|"), m.Version.String)
	}
	return selected, nil
}

func containsFold(set []string, want string) bool {
	for _, s := range set {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

func intersectsFold(set, wanted []string) bool {
	for _, w := range wanted {
		if containsFold(set, w) {
			return true
		}
	}
	return false
}

// responseTail returns the last n lines of a raw response body.
func responseTail(data []byte, n int) string {
	text := strings.TrimRight(string(data), "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
