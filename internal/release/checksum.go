package release

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// HashRecords maps artifact file names to expected SHA-256 digests, parsed
// from a hash-list file after it has been trusted. Lookups tolerate entries
// that carry a leading path.
type HashRecords map[string]string

// ParseHashRecords reads a hash-list file of "<digest>  <name>" lines.
// Lines with fewer than two fields are skipped.
func ParseHashRecords(path string) (HashRecords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hash file: %w", err)
	}
	defer f.Close()

	records := make(HashRecords)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		records[filepath.Base(fields[1])] = fields[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan hash file: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("hash file %s contains no records", path)
	}
	return records, nil
}

// DigestFor returns the expected digest for a file name.
func (r HashRecords) DigestFor(name string) (string, bool) {
	digest, ok := r[filepath.Base(name)]
	return digest, ok
}

// Check compares the SHA-256 digest of the file at path against the record
// for its base name. A name missing from the records is a checksum failure:
// a trusted hash list that does not vouch for the file vouches for nothing.
func (r HashRecords) Check(path string) error {
	name := filepath.Base(path)
	expected, ok := r.DigestFor(name)
	if !ok {
		return fmt.Errorf("%w: no digest recorded for %s", ErrChecksumMismatch, name)
	}

	actual, err := fileSHA256(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrChecksumMismatch, name, err)
	}

	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("%w: %s:\n  actual:   %s\n  expected: %s", ErrChecksumMismatch, name, actual, expected)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
