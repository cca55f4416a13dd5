// Package release implements the download-and-verify pipeline for official
// CMake release packages.
//
// # Trust Model
//
// A release archive is never trusted on its own. The pipeline establishes
// trust in two stages:
//   - The release manifest names a hash-list file and one or more detached
//     PGP signatures over it. The hash list is accepted only once at least
//     one signature verifies against the configured keyring.
//   - The downloaded archive is accepted only if its SHA-256 digest matches
//     the entry for its file name in the now-trusted hash list.
//
// Only after both stages succeed is the archive unpacked.
//
// # Pipeline
//
// The stages run strictly in order, once per invocation:
//
//	Version Resolver -> Manifest Fetcher -> Trust Verifier ->
//	Artifact Selector -> Integrity Checker -> Unpacker
//
// Every failure is fatal; there are no retries and no compensating actions.
// A re-run of the whole pipeline is the recovery path, and an already
// downloaded, checksum-valid archive is reused rather than fetched again.
//
// # Usage
//
//	p, err := release.NewPipeline(release.Options{
//	    Version:   "3.20.0",
//	    Channel:   release.ChannelGitHub,
//	    OutputDir: "cmake",
//	    Platform:  info,
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := p.Run(ctx)
package release
