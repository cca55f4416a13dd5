package release

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // maintained fork of x/crypto/openpgp
)

// ephemeralKeyringName is the transient keyring file assembled under the
// output directory when a trusted-key directory is supplied. It lives for
// one invocation and is not shared between concurrent runs.
const ephemeralKeyringName = "pubring.gpg"

// TrustedKeys is the set of public keys an invocation is willing to accept
// hash-file signatures from. It is built once and never mutated afterwards.
type TrustedKeys struct {
	entities openpgp.EntityList
	source   string
}

// LoadTrustedKeys assembles the verification keyring.
//
// When keyDir names a directory with at least one regular file, every file
// in it is read as a PGP public key (armored or binary) and the assembled
// set is also written to an ephemeral keyring file under outputDir. An
// unreadable key file is an error: silently dropping a key the caller asked
// to trust would change which signatures verify.
//
// Otherwise the user's default keyring is used ($GNUPGHOME/pubring.gpg,
// falling back to ~/.gnupg/pubring.gpg). A missing default keyring yields
// an empty key set; verification against it fails with ErrUntrustedSignature
// rather than failing here.
func LoadTrustedKeys(keyDir, outputDir string, logger Logger) (*TrustedKeys, error) {
	if logger == nil {
		logger = defaultLogger()
	}

	if keyDir != "" {
		names, err := keyFileNames(keyDir)
		if err != nil {
			return nil, err
		}
		if len(names) > 0 {
			return loadKeyDir(keyDir, names, outputDir, logger)
		}
		logger.Warn("trusted-key directory is empty, falling back to default keyring", "dir", keyDir)
	}

	return loadDefaultKeyring(logger)
}

// Empty reports whether the set holds no keys at all.
func (t *TrustedKeys) Empty() bool {
	return len(t.entities) == 0
}

// Source describes where the keys came from, for diagnostics.
func (t *TrustedKeys) Source() string {
	return t.source
}

func keyFileNames(keyDir string) ([]string, error) {
	entries, err := os.ReadDir(keyDir)
	if err != nil {
		return nil, fmt.Errorf("read trusted-key directory %s: %w", keyDir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func loadKeyDir(keyDir string, names []string, outputDir string, logger Logger) (*TrustedKeys, error) {
	var entities openpgp.EntityList
	for _, name := range names {
		path := filepath.Join(keyDir, name)
		keys, err := readKeyFile(path)
		if err != nil {
			return nil, fmt.Errorf("trusted key %s: %w", path, err)
		}
		entities = append(entities, keys...)
	}

	logger.Debug("assembled keyring from trusted-key directory", "dir", keyDir, "keys", len(entities))

	if err := writeEphemeralKeyring(entities, outputDir); err != nil {
		return nil, err
	}

	return &TrustedKeys{entities: entities, source: keyDir}, nil
}

func loadDefaultKeyring(logger Logger) (*TrustedKeys, error) {
	path := defaultKeyringPath()
	if path == "" {
		logger.Warn("no default keyring location available")
		return &TrustedKeys{source: "none"}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("default keyring not found", "path", path)
			return &TrustedKeys{source: "none"}, nil
		}
		return nil, fmt.Errorf("open default keyring %s: %w", path, err)
	}
	defer f.Close()

	entities, err := openpgp.ReadKeyRing(f)
	if err != nil {
		return nil, fmt.Errorf("read default keyring %s: %w", path, err)
	}

	logger.Debug("loaded default keyring", "path", path, "keys", len(entities))
	return &TrustedKeys{entities: entities, source: path}, nil
}

// readKeyFile reads one public key file, armored first, then binary.
func readKeyFile(path string) (openpgp.EntityList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	keys, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		if _, seekErr := f.Seek(0, 0); seekErr != nil {
			return nil, seekErr
		}
		keys, err = openpgp.ReadKeyRing(f)
		if err != nil {
			return nil, fmt.Errorf("not a PGP public key: %w", err)
		}
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("file contains no keys")
	}
	return keys, nil
}

// writeEphemeralKeyring serializes the assembled keys to a transient
// keyring file under the output directory. A second invocation writing the
// same path concurrently is an acknowledged hazard, not a supported mode.
func writeEphemeralKeyring(entities openpgp.EntityList, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(outputDir, ephemeralKeyringName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create ephemeral keyring: %w", err)
	}
	defer f.Close()

	for _, e := range entities {
		if err := e.Serialize(f); err != nil {
			return fmt.Errorf("write ephemeral keyring: %w", err)
		}
	}
	return nil
}

func defaultKeyringPath() string {
	if dir := os.Getenv("GNUPGHOME"); dir != "" {
		return filepath.Join(dir, "pubring.gpg")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gnupg", "pubring.gpg")
}
