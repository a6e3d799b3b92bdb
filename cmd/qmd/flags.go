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

// pageFlags holds PDF page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// renderFlags holds flags that shape every conversion.
type renderFlags struct {
	assetPath      string
	math           string // markup, katex
	katexURL       string // KaTeX dist directory
	highlightStyle string
	noHardWraps    bool
	strict         bool
	timeout        string
}

// outputFlags selects what each conversion writes.
type outputFlags struct {
	standalone bool
	pdf        bool
	metadata   bool
	css        string
	linkExt    string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common  commonFlags
	output  string
	workers int
	render  renderFlags
	out     outputFlags
	page    pageFlags
}

// watchFlags holds flags for the watch command.
type watchFlags struct {
	convertFlags
	debounce string
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common  commonFlags
	render  renderFlags
	host    string
	port    int
	root    string
	workers int
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
}

// addRenderFlags adds pipeline flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory (styles, templates, icons)")
	fs.StringVar(&f.math, "math", "", "math renderer: markup, katex")
	fs.StringVar(&f.katexURL, "katex-url", "", "KaTeX dist directory (URL or path)")
	fs.StringVar(&f.highlightStyle, "highlight-style", "", "chroma style for code blocks")
	fs.BoolVar(&f.noHardWraps, "no-hard-wraps", false, "keep single newlines as soft breaks")
	fs.BoolVar(&f.strict, "strict", false, "fail when a math placeholder cannot be restored")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "browser timeout (e.g., 30s, 2m)")
}

// addOutputFlags adds output mode flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVarP(&f.standalone, "standalone", "s", false, "write a complete HTML page")
	fs.BoolVar(&f.pdf, "pdf", false, "print the page to PDF")
	fs.BoolVar(&f.metadata, "metadata", false, "also write front matter as YAML")
	fs.StringVar(&f.css, "css", "", "extra CSS file for standalone pages")
	fs.StringVar(&f.linkExt, "link-ext", "", "replace .qmd in relative links (e.g., .html)")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// bindConvertFlags registers the convert flags on fs.
func bindConvertFlags(fs *flag.FlagSet, f *convertFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addOutputFlags(fs, &f.out)
	addPageFlags(fs, &f.page)
}

// bindWatchFlags registers the watch flags on fs.
func bindWatchFlags(fs *flag.FlagSet, f *watchFlags) {
	bindConvertFlags(fs, &f.convertFlags)
	fs.StringVar(&f.debounce, "debounce", "", "wait after the last change before converting (e.g., 200ms)")
}

// bindServeFlags registers the serve flags on fs.
func bindServeFlags(fs *flag.FlagSet, f *serveFlags) {
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	fs.StringVar(&f.host, "host", "", "listen address")
	fs.IntVar(&f.port, "port", 0, "listen port")
	fs.StringVar(&f.root, "root", "", "directory served under /preview/")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent renders (0 = auto)")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &convertFlags{}
	bindConvertFlags(fs, f)
	fs.Usage = func() { printConvertUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseWatchFlags parses watch command flags and returns positional args.
func parseWatchFlags(args []string, usage io.Writer) (*watchFlags, []string, error) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &watchFlags{}
	bindWatchFlags(fs, f)
	fs.Usage = func() { printWatchUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, usage io.Writer) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &serveFlags{}
	bindServeFlags(fs, f)
	fs.Usage = func() { printServeUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
