package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Crascit/get-cmake/internal/platform"
)

// VersionLatest requests resolution of the newest published release.
const VersionLatest = "latest"

// Options configures one pipeline invocation. All state the stages need is
// carried here explicitly; nothing is re-read from the ambient environment
// mid-run.
type Options struct {
	// Version is an explicit MAJOR.MINOR.PATCH[-rcN] string or
	// VersionLatest (the default when empty).
	Version string

	// Channel selects the distribution channel. Ignored when Source is
	// set.
	Channel Channel

	// Source overrides the channel endpoints; used by tests and mirrors.
	Source *Source

	// OutputDir receives every produced file: manifest downloads land
	// next to the extracted tree. Created if absent.
	OutputDir string

	// KeyDir optionally names a directory of trusted armored public
	// keys. Empty means the user's default keyring.
	KeyDir string

	// Platform is the detected host platform.
	Platform *platform.Info

	// Progress enables a transfer progress meter on stderr.
	Progress bool

	// Logger receives diagnostics. Nil means silent.
	Logger Logger
}

// Result reports what a successful run produced.
type Result struct {
	// Version is the concrete release that was installed.
	Version Version

	// Artifact is the file name of the verified archive.
	Artifact string

	// Reused reports that an existing checksum-valid archive was used
	// instead of downloading.
	Reused bool

	// PathDir is the absolute directory to add to the executable search
	// path.
	PathDir string
}

// Pipeline runs the six stages in order:
// resolve -> fetch manifest -> verify trust -> select -> check -> unpack.
type Pipeline struct {
	opts   Options
	source *Source
	want   Version // zero when resolving latest
	latest bool
	dl     *Downloader
	logger Logger
}

// NewPipeline validates the request and builds a pipeline. An invalid
// version argument fails here, before any network activity.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Platform == nil {
		return nil, fmt.Errorf("platform info is required")
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if opts.Logger == nil {
		opts.Logger = defaultLogger()
	}

	source := opts.Source
	if source == nil {
		source = NewSource(opts.Channel)
	}
	switch source.Channel {
	case ChannelGitHub, ChannelKitware:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRepo, string(source.Channel))
	}

	p := &Pipeline{
		opts:   opts,
		source: source,
		dl:     NewDownloader(opts.Progress, opts.Logger),
		logger: opts.Logger,
	}

	if opts.Version == "" || opts.Version == VersionLatest {
		p.latest = true
		return p, nil
	}

	v, err := ParseVersion(opts.Version)
	if err != nil {
		return nil, err
	}
	p.want = v
	return p, nil
}

// Run executes the pipeline. Every produced file (manifest, hash list,
// signatures, archive, ephemeral keyring, extracted tree) lands under the
// output directory.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	version, manifest, err := p.resolve(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Info("resolved release", "version", version.String(), "channel", string(p.source.Channel))

	if manifest == nil {
		if manifest, err = p.fetchManifest(ctx, version); err != nil {
			return nil, err
		}
	}

	records, err := p.verifyTrust(ctx, version, manifest)
	if err != nil {
		return nil, err
	}

	artifact, err := p.selectArtifact(manifest)
	if err != nil {
		return nil, err
	}

	archivePath, reused, err := p.ensureArtifact(ctx, version, artifact, records)
	if err != nil {
		return nil, err
	}

	if err := ExtractArchive(archivePath, p.opts.OutputDir); err != nil {
		return nil, err
	}

	pathDir := filepath.Join(p.opts.OutputDir, BinDir(p.opts.Platform.ManifestOS))
	p.logger.Info("extracted release", "archive", artifact.Name, "output", p.opts.OutputDir)

	return &Result{
		Version:  version,
		Artifact: artifact.Name,
		Reused:   reused,
		PathDir:  pathDir,
	}, nil
}

// resolve produces the concrete version. The kitware latest pointer hands
// back the manifest it was read from, sparing a second fetch.
func (p *Pipeline) resolve(ctx context.Context) (Version, *Manifest, error) {
	if !p.latest {
		return p.want, nil, nil
	}
	return p.source.ResolveLatest(ctx, p.dl, p.logger)
}

func (p *Pipeline) fetchManifest(ctx context.Context, v Version) (*Manifest, error) {
	url := p.source.ManifestURL(v)
	p.logger.Debug("fetching release manifest", "url", url)

	data, err := p.dl.FetchBytes(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// verifyTrust downloads the hash list and its signatures and accepts the
// hash list only once one signature verifies. Trust is established per
// invocation keyring, never inferred from previously seen content.
func (p *Pipeline) verifyTrust(ctx context.Context, v Version, m *Manifest) (HashRecords, error) {
	hf, err := m.SelectHashFile()
	if err != nil {
		return nil, err
	}
	if hf.Deprecated != "" {
		p.logger.Warn("hash file is deprecated", "name", hf.Name, "notice", hf.Deprecated)
	}

	keys, err := LoadTrustedKeys(p.opts.KeyDir, p.opts.OutputDir, p.logger)
	if err != nil {
		return nil, err
	}

	hashPath := filepath.Join(p.opts.OutputDir, hf.Name)
	if err := p.dl.DownloadFile(ctx, p.source.FileURL(v, hf.Name), hashPath); err != nil {
		return nil, err
	}

	sigPaths := make([]string, 0, len(hf.Signature))
	for _, sigName := range hf.Signature {
		sigPath := filepath.Join(p.opts.OutputDir, sigName)
		if err := p.dl.DownloadFile(ctx, p.source.FileURL(v, sigName), sigPath); err != nil {
			return nil, err
		}
		sigPaths = append(sigPaths, sigPath)
	}

	verifier := NewVerifier(keys, p.logger)
	sigPath, err := verifier.VerifyAny(hashPath, sigPaths)
	if err != nil {
		return nil, err
	}
	p.logger.Info("hash file trusted", "name", hf.Name, "signature", filepath.Base(sigPath))

	return ParseHashRecords(hashPath)
}

func (p *Pipeline) selectArtifact(m *Manifest) (*Artifact, error) {
	artifact, err := m.SelectArtifact(p.opts.Platform.ManifestOS, p.opts.Platform.ManifestArches, p.logger)
	if err != nil {
		return nil, err
	}
	if artifact.Deprecated != "" {
		p.logger.Warn("selected artifact is deprecated", "name", artifact.Name, "notice", artifact.Deprecated)
	}
	p.logger.Debug("selected artifact", "name", artifact.Name)
	return artifact, nil
}

// ensureArtifact makes a checksum-valid archive present in the output
// directory. An existing file with a matching digest is reused without any
// transfer; anything else is (re)downloaded and checked once. A mismatch
// after download is fatal with no automatic retry.
func (p *Pipeline) ensureArtifact(ctx context.Context, v Version, artifact *Artifact, records HashRecords) (string, bool, error) {
	archivePath := filepath.Join(p.opts.OutputDir, artifact.Name)

	if info, err := os.Stat(archivePath); err == nil && info.Mode().IsRegular() {
		if err := records.Check(archivePath); err == nil {
			p.logger.Info("reusing existing archive", "name", artifact.Name)
			return archivePath, true, nil
		}
		p.logger.Warn("existing archive does not match trusted digest, re-downloading", "name", artifact.Name)
	}

	if err := p.dl.DownloadFile(ctx, p.source.FileURL(v, artifact.Name), archivePath); err != nil {
		return "", false, err
	}

	if err := records.Check(archivePath); err != nil {
		return "", false, err
	}
	p.logger.Info("archive checksum verified", "name", artifact.Name)

	return archivePath, false, nil
}
