package release

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ExtractArchive unpacks a verified .tar.gz archive into destDir, stripping
// exactly one leading path component from every entry. Release archives
// wrap their payload in a "cmake-<version>-<platform>/" root directory; the
// caller's output directory takes its place, so "cmake-3.20.0/bin/cmake"
// lands at "<destDir>/bin/cmake".
func ExtractArchive(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("%w: open archive: %v", ErrExtraction, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExtraction, archivePath, err)
	}
	defer gz.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("%w: create output directory: %v", ErrExtraction, err)
	}

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: read tar header: %v", ErrExtraction, err)
		}

		name, ok := stripComponent(header.Name)
		if !ok {
			// The archive's root directory itself, or a stray
			// top-level entry; nothing to write.
			continue
		}

		target := filepath.Join(destDir, filepath.FromSlash(name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("%w: entry escapes output directory: %s", ErrExtraction, header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("%w: create directory %s: %v", ErrExtraction, target, err)
			}

		case tar.TypeReg:
			if err := writeFileEntry(target, tr, header.Mode); err != nil {
				return err
			}

		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("%w: create parent dir for %s: %v", ErrExtraction, target, err)
			}
			os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("%w: create symlink %s: %v", ErrExtraction, target, err)
			}

		default:
			// Device nodes and other exotic types are not part of
			// release archives; skip rather than fail.
			continue
		}
	}

	return nil
}

func writeFileEntry(target string, r io.Reader, mode int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("%w: create parent dir for %s: %v", ErrExtraction, target, err)
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(mode))
	if err != nil {
		return fmt.Errorf("%w: create file %s: %v", ErrExtraction, target, err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("%w: write file %s: %v", ErrExtraction, target, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close file %s: %v", ErrExtraction, target, err)
	}
	return nil
}

// stripComponent removes the first path component of a slash-separated tar
// entry name. It returns false when nothing remains after stripping.
func stripComponent(name string) (string, bool) {
	name = path.Clean(strings.TrimPrefix(name, "./"))
	if name == "." || name == "/" {
		return "", false
	}
	parts := strings.SplitN(name, "/", 2)
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// BinDir returns the path fragment under the output directory that holds
// the executables and belongs on PATH. macOS releases ship an application
// bundle, so the executables sit deeper in the tree.
func BinDir(manifestOS string) string {
	if strings.EqualFold(manifestOS, "macos") {
		return filepath.Join("CMake.app", "Contents", "bin")
	}
	return "bin"
}
