// Command get-cmake downloads an official CMake release package, verifies
// it via PGP signature and SHA-256 checksum, and unpacks it into a target
// directory. It is intended for CI jobs that need a specific (or the
// latest) CMake without a system package manager.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Crascit/get-cmake/internal/config"
	"github.com/Crascit/get-cmake/internal/platform"
	"github.com/Crascit/get-cmake/internal/release"
)

// Version will be set at build time via -ldflags.
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'get-cmake --help' for usage.\n")
		return 1
	}

	if opts.showHelp {
		printUsage(os.Stdout)
		return 0
	}
	if opts.showVersion {
		fmt.Printf("get-cmake %s\n", Version)
		return 0
	}

	if err := applyConfigDefaults(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := &stderrLogger{verbose: opts.verbose}

	channel, err := release.ParseChannel(opts.repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx := context.Background()

	info, err := platform.NewDetector().Detect(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if info.UsesMusl() {
		logger.Warn("host appears to use musl libc; official Linux binaries are glibc-linked and may not run", "distro", info.Distro)
	}

	pipeline, err := release.NewPipeline(release.Options{
		Version:   opts.version,
		Channel:   channel,
		OutputDir: opts.output,
		KeyDir:    opts.keys,
		Platform:  info,
		Progress:  opts.progress,
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	result, err := pipeline.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("CMake %s unpacked into %s\n", result.Version.String(), opts.output)
	fmt.Printf("Add to PATH: %s\n", result.PathDir)
	return 0
}

// cliOptions is the parsed invocation surface.
type cliOptions struct {
	version     string
	output      string
	keys        string
	repo        string
	configPath  string
	verbose     bool
	progress    bool
	showHelp    bool
	showVersion bool
}

// parseArgs parses the command line. At most one positional argument (the
// release version) is accepted.
func parseArgs(args []string) (*cliOptions, error) {
	opts := &cliOptions{}
	var positionals []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if !strings.HasPrefix(arg, "-") {
			positionals = append(positionals, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")

		// takeValue consumes the option's value from the same
		// argument (--opt=value) or the next one (--opt value).
		takeValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("option %s requires a value", name)
			}
			i++
			return args[i], nil
		}

		var err error
		switch name {
		case "--output", "-o":
			opts.output, err = takeValue()
		case "--keys", "-k":
			opts.keys, err = takeValue()
		case "--repo", "-r":
			opts.repo, err = takeValue()
		case "--config":
			opts.configPath, err = takeValue()
		case "--verbose", "-v":
			opts.verbose = true
		case "--progress":
			opts.progress = true
		case "--help", "-h":
			opts.showHelp = true
		case "--version":
			opts.showVersion = true
		default:
			return nil, fmt.Errorf("%w: %s", release.ErrUnknownOption, arg)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(positionals) > 1 {
		return nil, fmt.Errorf("%w: expected at most one version argument, got %q", release.ErrTooManyArguments, positionals)
	}
	if len(positionals) == 1 {
		opts.version = positionals[0]
	}

	return opts, nil
}

// applyConfigDefaults fills unset options from the config file. Flags given
// on the command line always win.
func applyConfigDefaults(opts *cliOptions) error {
	var cfg *config.File
	var err error
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	if opts.output == "" {
		opts.output = cfg.Output
	}
	if opts.keys == "" {
		opts.keys = cfg.Keys
	}
	if opts.repo == "" {
		opts.repo = cfg.Repo
	}
	opts.verbose = opts.verbose || cfg.Verbose
	opts.progress = opts.progress || cfg.Progress

	// Built-in defaults apply last.
	if opts.output == "" {
		opts.output = "cmake"
	}
	if opts.repo == "" {
		opts.repo = string(release.ChannelGitHub)
	}
	return nil
}

func printUsage(w *os.File) {
	fmt.Fprintf(w, `Usage: get-cmake [options] [version]

Download, verify, and unpack an official CMake release package.

Arguments:
  version              Release to fetch: MAJOR.MINOR.PATCH[-rcN] or "latest"
                       (default "latest")

Options:
  -o, --output DIR     Directory to unpack into (default "cmake")
  -k, --keys DIR       Directory of trusted armored PGP public keys;
                       without it the default keyring is used
  -r, --repo NAME      Distribution channel: "github" (default) or "kitware"
      --config FILE    YAML file with option defaults
  -v, --verbose        Verbose diagnostics
      --progress       Show transfer progress
      --version        Print the get-cmake version
  -h, --help           Show this help

The verified archive is unpacked with its top-level directory stripped, so
the binaries land directly under the output directory.
`)
}

// stderrLogger writes pipeline diagnostics to stderr. Debug output is gated
// by --verbose; nothing logged here changes any outcome.
type stderrLogger struct {
	verbose bool
}

func (l *stderrLogger) Debug(msg string, keysAndValues ...interface{}) {
	if l.verbose {
		l.log("debug", msg, keysAndValues)
	}
}

func (l *stderrLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log("info", msg, keysAndValues)
}

func (l *stderrLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log("warning", msg, keysAndValues)
}

func (l *stderrLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log("error", msg, keysAndValues)
}

func (l *stderrLogger) log(level, msg string, keysAndValues []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", level, msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	fmt.Fprintln(os.Stderr, b.String())
}
