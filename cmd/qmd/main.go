package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	qmd "github.com/alnah/go-qmd"
	"github.com/alnah/go-qmd/internal/config"
	"github.com/alnah/go-qmd/internal/fileutil"
	"github.com/alnah/go-qmd/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

// commands maps command names to their entry points.
var commands = map[string]func(context.Context, []string, *Environment) error{
	"convert":    runConvert,
	"watch":      runWatch,
	"serve":      runServe,
	"completion": runCompletion,
}

func main() {
	// Variables already set win over .env values
	_ = godotenv.Load()

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command and maps its error to an exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	name, rest := args[1], args[2:]
	if !isCommand(name) && looksLikeSource(name) {
		name, rest = "convert", args[1:]
	}

	switch name {
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "qmd %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	}

	run, ok := commands[name]
	if !ok {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", name)
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	err := run(ctx, rest, env)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// isCommand reports whether arg names a command.
func isCommand(arg string) bool {
	switch arg {
	case "version", "help", "doctor":
		return true
	}
	_, ok := commands[arg]
	return ok
}

// looksLikeSource reports whether arg is a .qmd path rather than a command.
func looksLikeSource(arg string) bool {
	return !strings.HasPrefix(arg, "-") && fileutil.HasExt(arg, qmd.SourceExt)
}

// flagError marks a flag parsing error as a usage error. Help requests
// pass through unchanged.
func flagError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// hintFor returns an actionable hint for well-known failures.
func hintFor(err error) string {
	switch {
	case errors.Is(err, qmd.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, qmd.ErrPageLoad):
		return hints.ForTimeout()
	case errors.Is(err, qmd.ErrMathRender):
		return hints.ForMathRender()
	case errors.Is(err, config.ErrConfigNotFound):
		var notFound *config.NotFoundError
		if errors.As(err, &notFound) {
			return hints.ForConfigNotFound(notFound.Paths)
		}
		return hints.ForConfigNotFound(nil)
	}
	return ""
}
