package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"ripple.com/validator-keys/internal/command"
	"ripple.com/validator-keys/internal/config"
	"ripple.com/validator-keys/internal/selftest"
	"ripple.com/validator-keys/model"
	"ripple.com/validator-keys/storage"
	"ripple.com/validator-keys/storage/localfs"
	"ripple.com/validator-keys/validator"
)

const name = "ripple_validator_keys"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	keyFile      string
	configPath   string
	archiveDir   string
	manifestPath string
	verbose      bool
	help         bool
	unittest     bool
	params       []string
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.keyFile, "keyfile", "", "Specify the master key `file`.")
	fs.StringVar(&opts.configPath, "config", "", "Read settings from this YAML `file`.")
	fs.StringVar(&opts.archiveDir, "archive", "", "Record issued manifests under `dir`.")
	fs.StringVar(&opts.manifestPath, "manifest", "", "Read the manifest for verify_manifest from `file` (default stdin).")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log progress to stderr.")
	fs.BoolVar(&opts.help, "help", false, "Display this message.")
	fs.BoolVar(&opts.help, "h", false, "Display this message.")
	fs.BoolVar(&opts.unittest, "unittest", false, "Perform unit tests.")
	fs.BoolVar(&opts.unittest, "u", false, "Perform unit tests.")
	return fs
}

// parseArgs accepts flags before, between and after positional parameters.
func parseArgs(args []string) (*options, *flag.FlagSet, error) {
	opts := &options{}
	fs := newFlagSet(opts)
	for {
		if err := fs.Parse(args); err != nil {
			return nil, nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return opts, fs, nil
		}
		opts.params = append(opts.params, rest[0])
		args = rest[1:]
	}
}

func run(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	opts, fs, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(errOut, "%s: Incorrect command line syntax.\n", name)
		fmt.Fprintln(errOut, "Use '--help' for a list of options.")
		return 1
	}

	if opts.unittest {
		if selftest.Run(out) {
			return 0
		}
		return 1
	}

	if opts.help || len(opts.params) == 0 {
		printUsage(errOut, fs)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if opts.keyFile != "" {
		cfg.KeyFile = opts.keyFile
	}
	if opts.archiveDir != "" {
		cfg.ArchiveDir = config.ExpandHome(opts.archiveDir)
	}

	logger, err := newLogger(cfg, opts.verbose, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	runner := &command.Runner{
		Store:  validator.NewStore(logger),
		Logger: logger,
		Out:    out,
		ErrOut: errOut,
	}
	if cfg.ArchiveDir != "" {
		archive, err := openArchive(cfg)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		runner.Archive = archive
	}

	req := command.Request{Args: opts.params, KeyFile: cfg.KeyFile, Manifest: in}
	if opts.manifestPath != "" {
		f, err := os.Open(opts.manifestPath)
		if err != nil {
			fmt.Fprintf(errOut, "Cannot open manifest file: %s\n", opts.manifestPath)
			return 1
		}
		defer f.Close()
		req.Manifest = f
	}

	if err := runner.Run(req); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

// openArchive opens the archive directory and any mirrors. With mirrors,
// every manifest must reach all of them.
func openArchive(cfg config.Config) (storage.CAS, error) {
	dirs := append([]string{cfg.ArchiveDir}, cfg.ArchiveMirrors...)
	replicas := make([]storage.Replica, 0, len(dirs))
	for _, dir := range dirs {
		cas, err := localfs.New(dir)
		if err != nil {
			return nil, model.WrapError(model.KindFilesystem, model.RuleArchive,
				"Cannot open manifest archive: "+dir, err)
		}
		replicas = append(replicas, storage.Replica{Name: dir, CAS: cas})
	}
	if len(replicas) == 1 {
		return replicas[0].CAS, nil
	}
	return storage.Mirror{Replicas: replicas}, nil
}

func newLogger(cfg config.Config, verbose bool, errOut io.Writer) (*logrus.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger := logrus.New()
	logger.SetOutput(errOut)
	logger.SetLevel(level)
	return logger, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "%s [options] <command>\n", name)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "General Options:")
	fs.VisitAll(func(f *flag.Flag) {
		if len(f.Name) == 1 {
			return
		}
		arg, usage := flag.UnquoteUsage(f)
		left := "--" + f.Name
		if arg != "" {
			left += " " + arg
		}
		fmt.Fprintf(w, "  %-22s %s\n", left, usage)
	})
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "     "+strings.Join(command.Names, "\n     "))
}
