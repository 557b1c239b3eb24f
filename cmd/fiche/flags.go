package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// exportFlags holds the flags that shape a PDF export.
type exportFlags struct {
	output string
	device string
	scale  int
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common     commonFlags
	export     exportFlags
	badges     []string
	styles     []string // knob=value
	sessionDir string
	timeout    string
	noExport   bool
}

// reexportFlags holds flags for the export command.
type reexportFlags struct {
	common     commonFlags
	export     exportFlags
	sessionDir string
}

// parseCmdFlags holds flags for the parse command.
type parseCmdFlags struct {
	common commonFlags
	format string
}

// badgesFlags holds flags for the badges command.
type badgesFlags struct {
	common  commonFlags
	grouped bool
	json    bool
}

// previewFlags holds flags for the preview command.
type previewFlags struct {
	common     commonFlags
	sessionDir string
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common      commonFlags
	addr        string
	maxSessions int
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addExportFlags adds PDF export flags to a FlagSet.
func addExportFlags(fs *flag.FlagSet, f *exportFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVar(&f.device, "device", "", "capture device: auto, mobile, desktop")
	fs.IntVar(&f.scale, "scale", 0, "capture scale 1-4 (0 = from device)")
}

func addSessionDirFlag(fs *flag.FlagSet, dir *string) {
	fs.StringVar(dir, "session-dir", "", "directory holding the stored session")
}

func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseGenerateFlags parses generate command flags and returns positional args.
func parseGenerateFlags(args []string, w io.Writer) (*generateFlags, []string, error) {
	f := &generateFlags{}
	fs := newFlagSet("generate", w, printGenerateUsage)

	addCommonFlags(fs, &f.common)
	addExportFlags(fs, &f.export)
	addSessionDirFlag(fs, &f.sessionDir)
	fs.StringArrayVarP(&f.badges, "badge", "b", nil, "badge to apply (repeatable)")
	fs.StringArrayVarP(&f.styles, "style", "s", nil, "style knob as name=value (repeatable)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "webhook timeout (e.g., 45s, 2m)")
	fs.BoolVar(&f.noExport, "no-export", false, "store the session without exporting")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseExportFlags parses export command flags.
func parseExportFlags(args []string, w io.Writer) (*reexportFlags, []string, error) {
	f := &reexportFlags{}
	fs := newFlagSet("export", w, printExportUsage)

	addCommonFlags(fs, &f.common)
	addExportFlags(fs, &f.export)
	addSessionDirFlag(fs, &f.sessionDir)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseParseFlags parses parse command flags.
func parseParseFlags(args []string, w io.Writer) (*parseCmdFlags, []string, error) {
	f := &parseCmdFlags{}
	fs := newFlagSet("parse", w, printParseUsage)

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.format, "format", "f", "json", "output format: json, yaml")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseBadgesFlags parses badges command flags.
func parseBadgesFlags(args []string, w io.Writer) (*badgesFlags, []string, error) {
	f := &badgesFlags{}
	fs := newFlagSet("badges", w, printBadgesUsage)

	addCommonFlags(fs, &f.common)
	fs.BoolVarP(&f.grouped, "grouped", "g", false, "group into logos, atouts and others")
	fs.BoolVar(&f.json, "json", false, "print JSON")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parsePreviewFlags parses preview command flags.
func parsePreviewFlags(args []string, w io.Writer) (*previewFlags, []string, error) {
	f := &previewFlags{}
	fs := newFlagSet("preview", w, printPreviewUsage)

	addCommonFlags(fs, &f.common)
	addSessionDirFlag(fs, &f.sessionDir)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", w, printServeUsage)

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default from config)")
	fs.IntVar(&f.maxSessions, "max-sessions", 0, "open session cap (0 = default)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
