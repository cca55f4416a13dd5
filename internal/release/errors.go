package release

import "errors"

// Failure categories for the pipeline and its invocation surface.
// Every failure is fatal for the invocation; callers match with errors.Is.
var (
	// ErrInvalidVersion indicates a version argument that is not
	// MAJOR.MINOR.PATCH or MAJOR.MINOR.PATCH-rcN.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrTooManyArguments indicates more than one positional argument.
	ErrTooManyArguments = errors.New("too many arguments")

	// ErrUnknownOption indicates an unrecognized command-line option.
	ErrUnknownOption = errors.New("unknown option")

	// ErrUnsupportedRepo indicates an unknown distribution channel name.
	ErrUnsupportedRepo = errors.New("unsupported repo")

	// ErrFetch indicates a failed HTTP transfer (transport error or
	// non-200 status). Transfers are never retried.
	ErrFetch = errors.New("fetch failed")

	// ErrManifestParse indicates the release manifest was not valid
	// files-v1 JSON.
	ErrManifestParse = errors.New("manifest parse failed")

	// ErrNoHashFile indicates the manifest lists no SHA-256 hash file.
	ErrNoHashFile = errors.New("no sha256 hash file in manifest")

	// ErrUntrustedSignature indicates no signature over the hash list
	// verified against the configured keyring. This requires human
	// action (importing a new trusted key), never a retry.
	ErrUntrustedSignature = errors.New("hash file signature not trusted")

	// ErrUnsupportedPlatform indicates no manifest artifact matches the
	// host OS/architecture pair.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrChecksumMismatch indicates the downloaded artifact's SHA-256
	// digest does not match the trusted hash list.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrExtraction indicates the verified archive could not be unpacked.
	ErrExtraction = errors.New("extraction failed")
)
