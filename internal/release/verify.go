package release

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // maintained fork of x/crypto/openpgp
)

// Verifier checks detached PGP signatures against a trusted key set.
type Verifier struct {
	keys   *TrustedKeys
	logger Logger
}

// NewVerifier creates a verifier over the given key set.
func NewVerifier(keys *TrustedKeys, logger Logger) *Verifier {
	if logger == nil {
		logger = defaultLogger()
	}
	return &Verifier{keys: keys, logger: logger}
}

// signatureAttempt records the outcome of verifying one signature file, so
// the iteration over candidates carries explicit results instead of a
// side-effecting sentinel flag.
type signatureAttempt struct {
	name string
	err  error
}

// VerifyAny verifies signedPath against each signature file in order and
// accepts on the first one that checks out, skipping the rest. If every
// candidate fails, the combined outcomes are reported under
// ErrUntrustedSignature. That failure is not retryable: it means none of
// the release's signing keys are in the invocation's keyring.
func (v *Verifier) VerifyAny(signedPath string, sigPaths []string) (string, error) {
	if len(sigPaths) == 0 {
		return "", fmt.Errorf("%w: no signature files to verify %s against", ErrUntrustedSignature, signedPath)
	}

	attempts := make([]signatureAttempt, 0, len(sigPaths))
	for _, sigPath := range sigPaths {
		err := v.checkDetached(signedPath, sigPath)
		if err == nil {
			v.logger.Debug("signature verified", "signature", sigPath)
			return sigPath, nil
		}
		v.logger.Debug("signature did not verify", "signature", sigPath, "error", err)
		attempts = append(attempts, signatureAttempt{name: sigPath, err: err})
	}

	var b strings.Builder
	for _, a := range attempts {
		fmt.Fprintf(&b, "\n  %s: %v", a.name, a.err)
	}
	return "", fmt.Errorf("%w: %s (import a trusted key and re-run):%s", ErrUntrustedSignature, signedPath, b.String())
}

// checkDetached verifies one detached signature, armored first, then
// binary.
func (v *Verifier) checkDetached(signedPath, sigPath string) error {
	if v.keys.Empty() {
		return fmt.Errorf("keyring is empty (source: %s)", v.keys.Source())
	}

	signed, err := os.Open(signedPath)
	if err != nil {
		return fmt.Errorf("open signed file: %w", err)
	}
	defer signed.Close()

	sig, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sig.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(v.keys.entities, signed, sig, nil)
	if err != nil {
		if _, seekErr := signed.Seek(0, io.SeekStart); seekErr != nil {
			return seekErr
		}
		if _, seekErr := sig.Seek(0, io.SeekStart); seekErr != nil {
			return seekErr
		}
		_, err = openpgp.CheckDetachedSignature(v.keys.entities, signed, sig, nil)
	}
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}
	return nil
}
