package release

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseHashRecords(t *testing.T) {
	dir := t.TempDir()
	hashFile := writeArtifact(t, dir, "sums.txt", strings.Join([]string{
		"aaaa  cmake-3.20.0-linux-x86_64.tar.gz",
		"bbbb  subdir/cmake-3.20.0-macos-universal.tar.gz",
		"",
		"malformed-line",
	}, "\n"))

	records, err := ParseHashRecords(hashFile)
	if err != nil {
		t.Fatalf("ParseHashRecords error: %v", err)
	}

	if d, ok := records.DigestFor("cmake-3.20.0-linux-x86_64.tar.gz"); !ok || d != "aaaa" {
		t.Errorf("linux digest = %q, %v", d, ok)
	}
	// Entries carrying a path are keyed by base name.
	if d, ok := records.DigestFor("cmake-3.20.0-macos-universal.tar.gz"); !ok || d != "bbbb" {
		t.Errorf("macos digest = %q, %v", d, ok)
	}
	if _, ok := records.DigestFor("unknown.tar.gz"); ok {
		t.Error("unexpected digest for unknown file")
	}
}

func TestParseHashRecordsEmpty(t *testing.T) {
	dir := t.TempDir()
	hashFile := writeArtifact(t, dir, "sums.txt", "\n\n")

	if _, err := ParseHashRecords(hashFile); err == nil {
		t.Error("expected error for hash file with no records")
	}
}

func TestHashRecordsCheck(t *testing.T) {
	dir := t.TempDir()
	content := "artifact payload"
	artifact := writeArtifact(t, dir, "pkg.tar.gz", content)

	records := HashRecords{"pkg.tar.gz": sha256Hex([]byte(content))}
	if err := records.Check(artifact); err != nil {
		t.Errorf("Check error for valid file: %v", err)
	}

	// Digest comparison is case-insensitive.
	records["pkg.tar.gz"] = strings.ToUpper(records["pkg.tar.gz"])
	if err := records.Check(artifact); err != nil {
		t.Errorf("Check error for uppercase digest: %v", err)
	}
}

func TestHashRecordsCheckMismatch(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "pkg.tar.gz", "actual content")

	records := HashRecords{"pkg.tar.gz": sha256Hex([]byte("different content"))}
	if err := records.Check(artifact); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("error = %v, want ErrChecksumMismatch", err)
	}
}

func TestHashRecordsCheckUnknownFile(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "pkg.tar.gz", "content")

	records := HashRecords{"other.tar.gz": sha256Hex([]byte("content"))}
	if err := records.Check(artifact); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("error = %v, want ErrChecksumMismatch", err)
	}
}
