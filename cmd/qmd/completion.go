package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags, comma separated
}

// commandDef describes a command for completion.
type commandDef struct {
	Name       string
	Desc       string
	Flags      []flagDef
	TakesFiles bool     // accepts .qmd file arguments
	TakesDir   bool     // accepts a directory argument
	Args       []string // fixed argument values
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"math":        {Values: []string{"markup", "katex"}},
	"page-size":   {Values: []string{"letter", "a4", "legal"}},
	"orientation": {Values: []string{"portrait", "landscape"}},

	"config": {FileGlob: "*.yaml,*.yml"},
	"css":    {FileGlob: "*.css"},

	"output":     {IsDir: true},
	"asset-path": {IsDir: true},
	"katex-url":  {IsDir: true},
	"root":       {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// commandFlags builds a throwaway FlagSet with bind and extracts its flags,
// so completion never drifts from what the parser accepts.
func commandFlags(name string, bind func(*flag.FlagSet)) []flagDef {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	bind(fs)
	return extractFlagsFromFlagSet(fs)
}

// supportedShells lists the completion targets in display order.
var supportedShells = []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:       "convert",
			Desc:       "Convert .qmd documents to HTML or PDF",
			Flags:      commandFlags("convert", func(fs *flag.FlagSet) { bindConvertFlags(fs, &convertFlags{}) }),
			TakesFiles: true,
			TakesDir:   true,
		},
		{
			Name:       "watch",
			Desc:       "Convert documents again whenever they change",
			Flags:      commandFlags("watch", func(fs *flag.FlagSet) { bindWatchFlags(fs, &watchFlags{}) }),
			TakesFiles: true,
			TakesDir:   true,
		},
		{
			Name:     "serve",
			Desc:     "Preview documents over HTTP",
			Flags:    commandFlags("serve", func(fs *flag.FlagSet) { bindServeFlags(fs, &serveFlags{}) }),
			TakesDir: true,
		},
		{
			Name:  "doctor",
			Desc:  "Check the browser and environment",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "machine-readable output"}},
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: supportedShells,
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
			Args: []string{"convert", "watch", "serve", "doctor", "completion", "version"},
		},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	cmds := getCommands()

	var script string
	switch shell {
	case ShellBash:
		script = generateBash(cmds)
	case ShellZsh:
		script = generateZsh(cmds)
	case ShellFish:
		script = generateFish(cmds)
	case ShellPowerShell:
		script = generatePowerShell(cmds)
	default:
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedShell, shell, strings.Join(supportedShells, ", "))
	}

	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(_ context.Context, args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qmd completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(qmd completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(qmd completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    qmd completion fish > ~/.config/fish/completions/qmd.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    qmd completion powershell | Out-String | Invoke-Expression")
}

// ---------------------------------------------------------------------------
// Script generators
// ---------------------------------------------------------------------------

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

// flagWords lists every spelling of the command's flags, sorted.
func flagWords(c commandDef) string {
	var words []string
	for _, f := range c.Flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	sort.Strings(words)
	return strings.Join(words, " ")
}

func globs(fileGlob string) []string {
	return strings.Split(fileGlob, ",")
}

// bashGlobFilter turns "*.yaml,*.yml" into the compgen -X exclusion
// pattern '!*.@(yaml|yml)'.
func bashGlobFilter(fileGlob string) string {
	var exts []string
	for _, g := range globs(fileGlob) {
		exts = append(exts, strings.TrimPrefix(g, "*."))
	}
	if len(exts) == 1 {
		return "!*." + exts[0]
	}
	return "!*.@(" + strings.Join(exts, "|") + ")"
}

func generateBash(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# bash completion for qmd\n\n")
	b.WriteString("_qmd_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\") $(compgen -f -X '!*.qmd' -- \"${cur}\"))\n", commandNames(cmds))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${cmd}\" in\n")

	for _, c := range cmds {
		if len(c.Flags) == 0 && len(c.Args) == 0 && !c.TakesFiles && !c.TakesDir {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n", c.Name)

		var valueCases []string
		for _, f := range c.Flags {
			names := "--" + f.Long
			if f.Short != "" {
				names += "|-" + f.Short
			}
			switch f.Type {
			case flagEnum:
				valueCases = append(valueCases, fmt.Sprintf("        %s) COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\")); return ;;", names, strings.Join(f.Values, " ")))
			case flagFile:
				valueCases = append(valueCases, fmt.Sprintf("        %s) COMPREPLY=($(compgen -f -X '%s' -- \"${cur}\") $(compgen -d -- \"${cur}\")); return ;;", names, bashGlobFilter(f.FileGlob)))
			case flagDir:
				valueCases = append(valueCases, fmt.Sprintf("        %s) COMPREPLY=($(compgen -d -- \"${cur}\")); return ;;", names))
			case flagString, flagInt, flagFloat:
				valueCases = append(valueCases, fmt.Sprintf("        %s) return ;;", names))
			}
		}
		if len(valueCases) > 0 {
			b.WriteString("        case \"${prev}\" in\n")
			for _, vc := range valueCases {
				b.WriteString("    " + vc + "\n")
			}
			b.WriteString("        esac\n")
		}

		if len(c.Flags) > 0 {
			b.WriteString("        if [[ ${cur} == -* ]]; then\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", flagWords(c))
			b.WriteString("            return\n")
			b.WriteString("        fi\n")
		}

		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", strings.Join(c.Args, " "))
		case c.TakesFiles:
			b.WriteString("        COMPREPLY=($(compgen -f -X '!*.qmd' -- \"${cur}\") $(compgen -d -- \"${cur}\"))\n")
		case c.TakesDir:
			b.WriteString("        COMPREPLY=($(compgen -d -- \"${cur}\"))\n")
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("shopt -s extglob\n")
	b.WriteString("complete -F _qmd_completions qmd\n")
	return b.String()
}

// zshEscape escapes characters that are special inside an _arguments spec.
func zshEscape(s string) string {
	r := strings.NewReplacer(`[`, `\[`, `]`, `\]`, `:`, `\:`, `'`, `'\''`)
	return r.Replace(s)
}

func zshFlagSpec(f flagDef) string {
	var names string
	if f.Short != "" {
		names = fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'", f.Short, f.Long, f.Short, f.Long)
	} else {
		names = "'--" + f.Long
	}

	spec := names + "[" + zshEscape(f.Desc) + "]"
	switch f.Type {
	case flagEnum:
		spec += ":value:(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		spec += ":file:_files -g \"" + strings.Join(globs(f.FileGlob), " ") + "\""
	case flagDir:
		spec += ":directory:_files -/"
	case flagString, flagInt, flagFloat:
		spec += ":value: "
	}
	return spec + "'"
}

func generateZsh(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("#compdef qmd\n\n")
	b.WriteString("_qmd() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        _files -g '*.qmd'\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")

	for _, c := range cmds {
		if len(c.Flags) == 0 && len(c.Args) == 0 && !c.TakesFiles && !c.TakesDir {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "        _values '%s' %s\n", c.Name, strings.Join(c.Args, " "))
			b.WriteString("        ;;\n")
			continue
		}
		b.WriteString("        _arguments -s \\\n")
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "            %s \\\n", zshFlagSpec(f))
		}
		switch {
		case c.TakesFiles:
			b.WriteString("            '*:input:_files -g \"*.qmd\"'\n")
		case c.TakesDir:
			b.WriteString("            '1:root:_files -/'\n")
		default:
			b.WriteString("            '*: :'\n")
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _qmd qmd\n")
	return b.String()
}

// fishEscape quotes s for a single-quoted fish string.
func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func generateFish(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# fish completion for qmd\n\n")
	b.WriteString("function __fish_qmd_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_qmd_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c qmd -f\n")
	b.WriteString("complete -c qmd -n __fish_qmd_needs_command -a '(__fish_complete_suffix .qmd)'\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c qmd -n __fish_qmd_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	b.WriteString("\n")

	for _, c := range cmds {
		cond := fmt.Sprintf("-n '__fish_qmd_using_command %s'", c.Name)
		for _, f := range c.Flags {
			line := "complete -c qmd " + cond
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long
			switch f.Type {
			case flagEnum:
				line += " -x -a '" + strings.Join(f.Values, " ") + "'"
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			case flagString, flagInt, flagFloat:
				line += " -x"
			}
			line += " -d '" + fishEscape(f.Desc) + "'"
			b.WriteString(line + "\n")
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "complete -c qmd %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		case c.TakesFiles:
			fmt.Fprintf(&b, "complete -c qmd %s -a '(__fish_complete_suffix .qmd)'\n", cond)
		case c.TakesDir:
			fmt.Fprintf(&b, "complete -c qmd %s -a '(__fish_complete_directories)'\n", cond)
		}
	}
	return b.String()
}

func psList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "'" + strings.ReplaceAll(it, "'", "''") + "'"
	}
	return "@(" + strings.Join(quoted, ", ") + ")"
}

func generatePowerShell(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# PowerShell completion for qmd\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName qmd -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $words = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })\n")
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	fmt.Fprintf(&b, "    $commands = %s\n\n", psList(names))
	b.WriteString("    if ($words.Count -le 1 -or ($words.Count -eq 2 -and $wordToComplete)) {\n")
	b.WriteString("        $commands | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $candidates = switch ($words[1]) {\n")
	for _, c := range cmds {
		var items []string
		for _, f := range c.Flags {
			items = append(items, "--"+f.Long)
		}
		items = append(items, c.Args...)
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        '%s' { %s }\n", c.Name, psList(items))
	}
	b.WriteString("        default { @() }\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $candidates | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
	return b.String()
}
