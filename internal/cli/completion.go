package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/pdfbasics/internal/ui"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// All shell completion functions generate from this registry, so adding
// a new flag only requires appending to flagRegistry.
type FlagCompletion struct {
	Long      string   // long flag name without "--" (e.g., "help")
	Short     string   // short flag without "-" (e.g., "h")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/no suggestions)
	ValueName string   // label for the value in zsh (e.g., "file", "duration")
	IsFile    bool     // true if the flag takes a file path
	IsDir     bool     // true if the flag takes a directory
	Section   string   // fish comment section
}

// flagRegistry is the central list of all CLI flags for completion generation.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message", Section: "General"},
	{Long: "version", Short: "V", Help: "Show version information", Section: "General"},
	{Long: "output", Short: "o", Help: "Output file path", IsFile: true, ValueName: "file", Section: "Output"},
	{Long: "output-dir", Help: "Directory for generated output names", IsDir: true, ValueName: "directory", Section: "Output"},
	{Long: "title", Help: "Document title", ValueName: "text", Section: "Metadata"},
	{Long: "creator", Help: "Document creator", ValueName: "text", Section: "Metadata"},
	{Long: "subject", Help: "Document subject", ValueName: "text", Section: "Metadata"},
	{Long: "tui", Help: "Start the terminal UI", Section: "Modes"},
	{Long: "repl", Help: "Start the interactive shell", Section: "Modes"},
	{Long: "inspect", Help: "Report pages and metadata instead of merging", Section: "Modes"},
	{Long: "jobs", Help: "Concurrent inspections", Values: []string{"1", "2", "4", "8"}, ValueName: "number", Section: "Execution"},
	{Long: "timeout", Help: "Maximum execution time (0 for no limit)", Values: []string{"0", "1m", "5m", "10m"}, ValueName: "duration", Section: "Execution"},
	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts", Section: "Execution"},
	{Long: "verbose", Short: "v", Help: "Debug logging and memory statistics", Section: "Execution"},
	{Long: "no-color", Help: "Disable colored output", Section: "Execution"},
	{Long: "theme", Help: "Color theme", Values: ui.ThemeNames(), ValueName: "name", Section: "Execution"},
	{Long: "metrics-file", Help: "Prometheus textfile output", IsFile: true, ValueName: "file", Section: "Observability"},
	{Long: "log-file", Help: "Structured log output", IsFile: true, ValueName: "file", Section: "Observability"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish", "powershell"}, ValueName: "shell", Section: "Completion"},
}

// GenerateCompletion generates a shell completion script for the specified shell.
// Positional arguments complete to PDF files.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish", "powershell").
//
// Returns:
//   - error: An error if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out)
	case "zsh":
		return generateZshCompletion(out)
	case "fish":
		return generateFishCompletion(out)
	case "powershell", "ps":
		return generatePowerShellCompletion(out)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
}

// flagForms returns the "--long" and "-s" spellings of a flag.
func flagForms(f FlagCompletion) []string {
	var forms []string
	if f.Long != "" {
		forms = append(forms, "--"+f.Long)
	}
	if f.Short != "" {
		forms = append(forms, "-"+f.Short)
	}
	return forms
}

// generateBashCompletion generates a Bash completion script.
func generateBashCompletion(out io.Writer) error {
	var opts, filePatterns, dirPatterns []string
	var caseBody strings.Builder
	for _, f := range flagRegistry {
		opts = append(opts, flagForms(f)...)
		switch {
		case f.IsFile:
			filePatterns = append(filePatterns, flagForms(f)...)
		case f.IsDir:
			dirPatterns = append(dirPatterns, flagForms(f)...)
		case len(f.Values) > 0:
			fmt.Fprintf(&caseBody, "        %s)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n            return 0\n            ;;\n",
				strings.Join(flagForms(f), "|"), strings.Join(f.Values, " "))
		case f.ValueName != "":
			fmt.Fprintf(&caseBody, "        %s)\n            return 0\n            ;;\n", strings.Join(flagForms(f), "|"))
		}
	}
	if len(filePatterns) > 0 {
		fmt.Fprintf(&caseBody, "        %s)\n            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n            return 0\n            ;;\n",
			strings.Join(filePatterns, "|"))
	}
	if len(dirPatterns) > 0 {
		fmt.Fprintf(&caseBody, "        %s)\n            COMPREPLY=( $(compgen -d -- \"${cur}\") )\n            return 0\n            ;;\n",
			strings.Join(dirPatterns, "|"))
	}

	script := fmt.Sprintf(`# Bash completion script for pdfbasics
# Add this to your ~/.bashrc or ~/.bash_completion

_pdfbasics_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Main options
    opts="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi

    # Positional arguments are PDF files
    COMPREPLY=( $(compgen -f -X '!*.[pP][dD][fF]' -- "${cur}") $(compgen -d -- "${cur}") )
}

complete -o filenames -F _pdfbasics_completions pdfbasics
`, strings.Join(opts, " "), caseBody.String())

	_, err := fmt.Fprint(out, script)
	if err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

// generateZshCompletion generates a Zsh completion script.
func generateZshCompletion(out io.Writer) error {
	var args []string
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}
	args = append(args, `        '*:PDF file:_files -g "*.(pdf|PDF)"'`)

	script := fmt.Sprintf(`#compdef pdfbasics

# Zsh completion script for pdfbasics
# Add this to your ~/.zshrc or place in $fpath

_pdfbasics() {
    _arguments -s \
%s
}

_pdfbasics "$@"
`, strings.Join(args, " \\\n"))

	_, err := fmt.Fprint(out, script)
	if err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsDir:
		valueSuffix = fmt.Sprintf(":%s:_directories", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Long != "" && f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, valueSuffix)
}

// generateFishCompletion generates a Fish completion script.
func generateFishCompletion(out io.Writer) error {
	lines := []string{
		"# Fish completion script for pdfbasics",
		"# Add this to ~/.config/fish/completions/pdfbasics.fish",
		"",
		"# Positional arguments are PDF files",
		"complete -c pdfbasics -k -xa '(__fish_complete_suffix .pdf)'",
	}

	section := ""
	for _, f := range flagRegistry {
		if f.Section != section {
			section = f.Section
			lines = append(lines, "", "# "+section)
		}
		lines = append(lines, fishCompleteLine(f))
	}
	lines = append(lines, "")

	_, err := fmt.Fprint(out, strings.Join(lines, "\n"))
	if err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// fishCompleteLine formats a single FlagCompletion as a fish complete command.
func fishCompleteLine(f FlagCompletion) string {
	parts := []string{"complete -c pdfbasics"}
	if f.Short != "" {
		parts = append(parts, fmt.Sprintf("-s %s", f.Short))
	}
	if f.Long != "" {
		parts = append(parts, fmt.Sprintf("-l %s", f.Long))
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case f.IsDir:
		parts = append(parts, "-xa '(__fish_complete_directories)'")
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}

// generatePowerShellCompletion generates a PowerShell completion script.
func generatePowerShellCompletion(out io.Writer) error {
	var optionEntries, switchEntries []string
	for _, f := range flagRegistry {
		for _, form := range flagForms(f) {
			optionEntries = append(optionEntries, fmt.Sprintf(
				"        @{Name = '%s'; Description = '%s' }", form, f.Help))
		}
		if len(f.Values) == 0 {
			continue
		}
		quoted := make([]string, len(f.Values))
		for i, v := range f.Values {
			quoted[i] = fmt.Sprintf("'%s'", v)
		}
		switchEntries = append(switchEntries, fmt.Sprintf(`        '--%s' {
            @(%s) | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }`, f.Long, strings.Join(quoted, ", ")))
	}

	script := fmt.Sprintf(`# PowerShell completion script for pdfbasics
# Add this to your $PROFILE

Register-ArgumentCompleter -CommandName 'pdfbasics' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
%s
    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    # Context-aware completions
    switch ($prevElement) {
%s
    }

    if ($wordToComplete -like '-*') {
        $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
        }
        return
    }

    # Positional arguments are PDF files
    Get-ChildItem -Path "$wordToComplete*" -Include '*.pdf' -File -ErrorAction SilentlyContinue | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.FullName, $_.Name, 'ProviderItem', $_.FullName)
    }
}
`, strings.Join(optionEntries, "\n"), strings.Join(switchEntries, "\n"))

	_, err := fmt.Fprint(out, script)
	return err
}
