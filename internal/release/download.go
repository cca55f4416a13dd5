package release

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// transferTimeout is the fixed upper bound for a single transfer.
	// There is no retry: a transfer that fails or times out fails the
	// whole invocation.
	transferTimeout = 300 * time.Second

	// maxDocumentSize caps small-document fetches (manifests, release
	// lists, hash lists, signatures).
	maxDocumentSize = 8 << 20

	userAgent = "get-cmake/1.0"
)

// Downloader performs synchronous HTTP GETs. Each call is a single attempt
// with a fixed timeout.
type Downloader struct {
	client   *http.Client
	progress bool
	logger   Logger
}

// NewDownloader creates a downloader. Progress output, when enabled, goes
// to stderr and never affects whether a transfer counts as succeeded.
func NewDownloader(progress bool, logger Logger) *Downloader {
	if logger == nil {
		logger = defaultLogger()
	}
	return &Downloader{
		client: &http.Client{
			Timeout: transferTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		progress: progress,
		logger:   logger,
	}
}

// FetchBytes retrieves a small document into memory. Extra headers (API
// accept types, auth tokens) may be nil.
func (d *Downloader) FetchBytes(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrFetch, url, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d\nresponse tail:\n%s",
			ErrFetch, url, resp.StatusCode, responseTail(body, parseErrorTailLines))
	}

	return body, nil
}

// DownloadFile downloads a URL to destPath. The transfer lands in a
// temporary sibling file first and is renamed into place only on success,
// so destPath never holds a partial body.
func (d *Downloader) DownloadFile(ctx context.Context, url, destPath string) error {
	d.logger.Debug("downloading", "url", url, "dest", destPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("%w: create dest dir: %v", ErrFetch, err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrFetch, err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	var body io.Reader = resp.Body
	if d.progress {
		meter := newProgressMeter(filepath.Base(destPath), resp.ContentLength)
		body = io.TeeReader(resp.Body, meter)
		defer meter.finish()
	}

	if _, err := io.Copy(tmpFile, body); err != nil {
		return fmt.Errorf("%w: %s: copy response body: %v", ErrFetch, url, err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", ErrFetch, err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("%w: rename temp file: %v", ErrFetch, err)
	}

	cleanupNeeded = false
	return nil
}

// progressMeter writes a transfer meter to stderr. With an unknown content
// length it reports bytes instead of a percentage.
type progressMeter struct {
	name    string
	total   int64
	written int64
	lastPct int
}

func newProgressMeter(name string, total int64) *progressMeter {
	return &progressMeter{name: name, total: total, lastPct: -1}
}

func (p *progressMeter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total > 0 {
		pct := int(p.written * 100 / p.total)
		if pct != p.lastPct {
			p.lastPct = pct
			fmt.Fprintf(os.Stderr, "\r%s: %3d%%", p.name, pct)
		}
	} else {
		fmt.Fprintf(os.Stderr, "\r%s: %d bytes", p.name, p.written)
	}
	return len(b), nil
}

func (p *progressMeter) finish() {
	fmt.Fprintln(os.Stderr)
}
