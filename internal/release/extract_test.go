package release

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractArchiveStripsOneComponent(t *testing.T) {
	archive := makeTarGz(t, map[string]string{
		"cmake-3.20.0/":                 "",
		"cmake-3.20.0/bin/":             "",
		"cmake-3.20.0/bin/cmake":        "cmake binary",
		"cmake-3.20.0/bin/ctest":        "ctest binary",
		"cmake-3.20.0/share/doc/README": "docs",
	})

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "cmake.tar.gz")
	if err := os.WriteFile(archivePath, archive, 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	if err := ExtractArchive(archivePath, outDir); err != nil {
		t.Fatalf("ExtractArchive error: %v", err)
	}

	// "cmake-3.20.0/bin/cmake" must land at "<out>/bin/cmake".
	got, err := os.ReadFile(filepath.Join(outDir, "bin", "cmake"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(got) != "cmake binary" {
		t.Errorf("content = %q", got)
	}

	if _, err := os.ReadFile(filepath.Join(outDir, "share", "doc", "README")); err != nil {
		t.Errorf("nested file not extracted: %v", err)
	}

	// The archive's root directory itself must not reappear.
	if _, err := os.Stat(filepath.Join(outDir, "cmake-3.20.0")); !os.IsNotExist(err) {
		t.Error("archive root directory was not stripped")
	}
}

func TestExtractArchivePreservesExecutableBit(t *testing.T) {
	archive := makeTarGz(t, map[string]string{
		"cmake-3.20.0/bin/cmake": "binary",
	})

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "cmake.tar.gz")
	if err := os.WriteFile(archivePath, archive, 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	if err := ExtractArchive(archivePath, outDir); err != nil {
		t.Fatalf("ExtractArchive error: %v", err)
	}

	info, err := os.Stat(filepath.Join(outDir, "bin", "cmake"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Error("extracted binary is not executable")
	}
}

func TestExtractArchiveRejectsTraversal(t *testing.T) {
	archive := makeTarGz(t, map[string]string{
		"cmake-3.20.0/../../../../evil": "payload",
	})

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.tar.gz")
	if err := os.WriteFile(archivePath, archive, 0o644); err != nil {
		t.Fatal(err)
	}

	err := ExtractArchive(archivePath, filepath.Join(dir, "out"))
	if !errors.Is(err, ErrExtraction) {
		t.Errorf("error = %v, want ErrExtraction", err)
	}
}

func TestExtractArchiveNotGzip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "junk.tar.gz")
	if err := os.WriteFile(archivePath, []byte("plain text, not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := ExtractArchive(archivePath, filepath.Join(dir, "out"))
	if !errors.Is(err, ErrExtraction) {
		t.Errorf("error = %v, want ErrExtraction", err)
	}
}

func TestStripComponent(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{name: "cmake-3.20.0/bin/cmake", want: "bin/cmake", wantOK: true},
		{name: "./cmake-3.20.0/bin/cmake", want: "bin/cmake", wantOK: true},
		{name: "cmake-3.20.0/README", want: "README", wantOK: true},
		{name: "cmake-3.20.0/", wantOK: false},
		{name: "cmake-3.20.0", wantOK: false},
		{name: ".", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := stripComponent(tt.name)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("stripComponent(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBinDir(t *testing.T) {
	if got := BinDir("linux"); got != "bin" {
		t.Errorf("BinDir(linux) = %q", got)
	}
	if got := BinDir("windows"); got != "bin" {
		t.Errorf("BinDir(windows) = %q", got)
	}
	// macOS ships an application bundle; the executables sit deeper.
	want := filepath.Join("CMake.app", "Contents", "bin")
	if got := BinDir("macos"); got != want {
		t.Errorf("BinDir(macos) = %q, want %q", got, want)
	}
}
