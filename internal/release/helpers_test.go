package release

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

// generateSigningKey creates a fresh signing key for a test and returns the
// entity together with its armored public key.
func generateSigningKey(t *testing.T, name string) (*openpgp.Entity, []byte) {
	t.Helper()

	entity, err := openpgp.NewEntity(name, "test signing key", name+"@example.invalid", nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor public key: %v", err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatalf("serialize public key: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close armor: %v", err)
	}

	return entity, buf.Bytes()
}

// detachSign produces an armored detached signature over data.
func detachSign(t *testing.T, signer *openpgp.Entity, data []byte) []byte {
	t.Helper()

	var sig bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&sig, signer, bytes.NewReader(data), nil); err != nil {
		t.Fatalf("detach sign: %v", err)
	}
	return sig.Bytes()
}

// writeKeyDir writes armored public keys into a fresh trusted-key
// directory and returns its path.
func writeKeyDir(t *testing.T, keys ...[]byte) string {
	t.Helper()

	dir := t.TempDir()
	for i, key := range keys {
		path := filepath.Join(dir, fmt.Sprintf("signer%d.asc", i))
		if err := os.WriteFile(path, key, 0o644); err != nil {
			t.Fatalf("write key file: %v", err)
		}
	}
	return dir
}

// makeTarGz builds a gzipped tar archive from entry name to file content.
// Entries whose name ends in "/" become directories.
func makeTarGz(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for name, content := range entries {
		if name[len(name)-1] == '/' {
			if err := tw.WriteHeader(&tar.Header{
				Name:     name,
				Typeflag: tar.TypeDir,
				Mode:     0o755,
			}); err != nil {
				t.Fatalf("write dir header: %v", err)
			}
			continue
		}
		if err := tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o755,
			Size:     int64(len(content)),
		}); err != nil {
			t.Fatalf("write file header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write file body: %v", err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
