package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qmd <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert .qmd documents to HTML or PDF")
	fmt.Fprintln(w, "  watch      Convert documents again whenever they change")
	fmt.Fprintln(w, "  serve      Preview documents over HTTP")
	fmt.Fprintln(w, "  doctor     Check the browser and environment")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "'qmd file.qmd' is short for 'qmd convert file.qmd'.")
	fmt.Fprintln(w, "Run 'qmd help <command>' for details on a specific command.")
}

// printRenderUsage prints the flags shared by every command that renders.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --math <s>            Math renderer: markup (browser typesets), katex (server typesets)")
	fmt.Fprintln(w, "      --katex-url <s>       KaTeX dist directory, URL or path")
	fmt.Fprintln(w, "      --highlight-style <s> Chroma style for code blocks (default: github)")
	fmt.Fprintln(w, "      --no-hard-wraps       Keep single newlines as soft breaks")
	fmt.Fprintln(w, "      --strict              Fail when a math placeholder cannot be restored")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles, templates and icons")
	fmt.Fprintln(w, "  -t, --timeout <d>         Browser timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing and debug logs")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qmd convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert .qmd documents. Without flags each document becomes an HTML fragment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    .qmd file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -s, --standalone          Write a complete HTML page")
	fmt.Fprintln(w, "      --pdf                 Print the page to PDF")
	fmt.Fprintln(w, "      --metadata            Also write front matter as YAML")
	fmt.Fprintln(w, "      --css <path>          Extra CSS for standalone pages")
	fmt.Fprintln(w, "      --link-ext <ext>      Replace .qmd in relative links (e.g., .html)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page (PDF only):")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
	printRenderUsage(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qmd watch <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert every document once, then again each time it is saved.")
	fmt.Fprintln(w, "Accepts every convert flag, plus:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --debounce <d>        Quiet period before converting (default: 200ms)")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qmd serve [root] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve documents under root as standalone pages at /preview/<path>.qmd.")
	fmt.Fprintln(w, "POST raw QMD to /api/render to get {\"html\", \"metadata\"} back.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --host <s>            Listen address (default: 127.0.0.1)")
	fmt.Fprintln(w, "      --port <n>            Listen port (default: 8080)")
	fmt.Fprintln(w, "      --root <dir>          Directory to serve (default: .)")
	fmt.Fprintln(w, "  -w, --workers <n>         Concurrent renders (0 = auto)")
	fmt.Fprintln(w)
	printRenderUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: qmd doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that Chrome, the configuration and the temp directory are usable.")
		fmt.Fprintln(env.Stdout, "Chrome is required for --pdf and for --math katex.")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "      --json                Machine-readable output")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: qmd version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: qmd help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
