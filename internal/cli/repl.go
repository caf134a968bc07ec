// Package cli provides the command-line presentation layer: the spinner
// progress reporter, the result presenter, the interactive REPL over a
// session.Session and shell completion scripts.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/pdfbasics/internal/merge"
	"github.com/agbru/pdfbasics/internal/orchestration"
	"github.com/agbru/pdfbasics/internal/pdfa"
	"github.com/agbru/pdfbasics/internal/session"
	"github.com/agbru/pdfbasics/internal/ui"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// OutputDir is where merged documents are written.
	OutputDir string
	// Timeout is the maximum duration of each merge. Zero means no limit.
	Timeout time.Duration
	// Metadata is stamped on every output. The set command changes it.
	Metadata pdfa.Metadata
	// Quiet disables the progress spinner.
	Quiet bool
	// Verbose lists the merged sources after each merge.
	Verbose bool
	// MergeOptions are passed to every merge (logger, recorder).
	MergeOptions []merge.Option
	// AfterMerge, if set, is called after every merge attempt.
	AfterMerge func(orchestration.MergeResult)
	// Now is the clock used for output names. Defaults to time.Now.
	Now func() time.Time
}

// REPL represents an interactive merge session driven by text commands.
type REPL struct {
	config    REPLConfig
	engine    merge.Engine
	session   *session.Session
	presenter CLIResultPresenter
	in        io.Reader
	out       io.Writer
}

// NewREPL creates a new REPL instance.
//
// Parameters:
//   - engine: The PDF engine used for merges.
//   - sess: The file list the commands operate on.
//   - config: REPL configuration.
//
// Returns:
//   - *REPL: A new REPL instance.
func NewREPL(engine merge.Engine, sess *session.Session, config REPLConfig) *REPL {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &REPL{
		config:  config,
		engine:  engine,
		session: sess,
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start begins the interactive REPL session.
// It continuously reads user input and processes commands until the user
// exits, EOF is reached or ctx is canceled.
func (r *REPL) Start(ctx context.Context) {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)

	for {
		if ctx.Err() != nil {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
		fmt.Fprint(r.out, ui.ColorGreen()+"pdf> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || input == "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if !r.processCommand(ctx, input) {
			return // Exit command received
		}
	}
}

// printBanner displays the REPL welcome banner.
func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %s📄 PDF Merge - Interactive Mode%s                      %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

// printHelp displays available commands.
func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sadd <paths>%s        - Append files (quotes and file:// URIs accepted)\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %slist%s               - Show the file list in merge order\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %smove <from> <to>%s   - Move an entry (1-based positions)\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sremove <n>%s         - Remove an entry\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sclear%s              - Empty the list\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %smerge%s              - Merge the list into %s\n", ui.ColorYellow(), ui.ColorReset(), session.OutputName(r.config.Now()))
	fmt.Fprintf(r.out, "  %sset <field> <text>%s - Set title, creator or subject\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s             - Display current configuration\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s               - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s        - Exit interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "Dropping files onto the terminal adds them too.\n")
}

// processCommand parses and executes a user command.
// Returns false if the REPL should exit.
func (r *REPL) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	rest := strings.TrimSpace(input[len(parts[0]):])

	switch cmd {
	case "add", "a":
		r.cmdAdd(rest)
	case "list", "ls", "l":
		DisplayFileList(r.session.Files(), r.out)
	case "move", "mv":
		r.cmdMove(args)
	case "remove", "rm":
		r.cmdRemove(args)
	case "clear":
		r.session.Clear()
		fmt.Fprintln(r.out, "List cleared.")
	case "merge", "m":
		r.cmdMerge(ctx)
	case "set":
		r.cmdSet(args, rest)
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		// A pasted drop of existing files is treated as "add".
		if paths := session.ParseDrop(input); len(paths) > 0 && allExist(paths) {
			r.addPaths(paths)
			return true
		}
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
	}

	return true
}

func allExist(paths []string) bool {
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || info.IsDir() {
			return false
		}
	}
	return true
}

// cmdAdd handles the "add" command.
func (r *REPL) cmdAdd(rest string) {
	paths := session.ParseDrop(rest)
	if len(paths) == 0 {
		fmt.Fprintf(r.out, "%sUsage: add <path> [path...]%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	r.addPaths(paths)
}

func (r *REPL) addPaths(paths []string) {
	r.session.Add(paths...)
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			fmt.Fprintf(r.out, "%sWarning: %v%s\n", ui.ColorYellow(), err, ui.ColorReset())
		}
	}
	fmt.Fprintf(r.out, "Added %s%d%s file(s), %d in list.\n", ui.ColorGreen(), len(paths), ui.ColorReset(), r.session.Len())
}

// parsePosition converts a 1-based position argument into an index.
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position: %s", arg)
	}
	return n - 1, nil
}

// cmdMove handles the "move" command.
func (r *REPL) cmdMove(args []string) {
	if len(args) != 2 {
		fmt.Fprintf(r.out, "%sUsage: move <from> <to>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	from, err := parsePosition(args[0])
	if err == nil {
		var to int
		if to, err = parsePosition(args[1]); err == nil {
			err = r.session.Move(from, to)
		}
	}
	if err != nil {
		fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	DisplayFileList(r.session.Files(), r.out)
}

// cmdRemove handles the "remove" command.
func (r *REPL) cmdRemove(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "%sUsage: remove <n>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	idx, err := parsePosition(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	p, err := r.session.Remove(idx)
	if err != nil {
		fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	fmt.Fprintf(r.out, "Removed %s.\n", p)
}

// cmdSet handles the "set" command.
func (r *REPL) cmdSet(args []string, rest string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: set <title|creator|subject> <text>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	value := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
	meta := r.config.Metadata
	switch strings.ToLower(args[0]) {
	case "title":
		meta.Title = value
	case "creator":
		meta.Creator = value
	case "subject":
		meta.Subject = value
	default:
		fmt.Fprintf(r.out, "%sUnknown field: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
		return
	}
	if err := meta.Validate(); err != nil {
		fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	r.config.Metadata = meta
	fmt.Fprintf(r.out, "%s set to %s\n", strings.ToLower(args[0]), quoteOrDash(value))
}

// cmdMerge merges the current list. The list is left unchanged whether the
// merge succeeds or fails.
func (r *REPL) cmdMerge(ctx context.Context) {
	files := r.session.Files()
	if len(files) == 0 {
		fmt.Fprintf(r.out, "%sNothing to merge. Add files first.%s\n", ui.ColorYellow(), ui.ColorReset())
		return
	}

	ctx, cancel := orchestration.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	output := session.OutputPath(r.config.OutputDir, r.config.Now())
	fmt.Fprintf(r.out, "Merging %s%d%s file(s) into %s%s%s...\n",
		ui.ColorMagenta(), len(files), ui.ColorReset(), ui.ColorCyan(), output, ui.ColorReset())

	var reporter orchestration.ProgressReporter = CLIProgressReporter{}
	if r.config.Quiet {
		reporter = orchestration.NullProgressReporter{}
	}
	opts := append([]merge.Option{merge.WithMetadata(r.config.Metadata)}, r.config.MergeOptions...)
	result := orchestration.ExecuteMerge(ctx, r.engine, files, output, reporter, r.out, opts...)
	if r.config.AfterMerge != nil {
		r.config.AfterMerge(result)
	}

	if result.Err != nil {
		r.presenter.HandleError(result.Err, result.Duration, r.out)
		return
	}
	r.presenter.PresentMergeResult(result, r.config.Verbose, r.out)
	fmt.Fprintln(r.out)
}

// cmdStatus displays current REPL configuration.
func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Files:      %s%d%s\n", ui.ColorCyan(), r.session.Len(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Output dir: %s%s%s\n", ui.ColorCyan(), r.config.OutputDir, ui.ColorReset())
	fmt.Fprintf(r.out, "  Timeout:    %s%s%s\n", ui.ColorCyan(), FormatTimeout(r.config.Timeout), ui.ColorReset())
	fmt.Fprintf(r.out, "  Title:      %s\n", quoteOrDash(r.config.Metadata.Title))
	fmt.Fprintf(r.out, "  Creator:    %s\n", quoteOrDash(r.config.Metadata.Creator))
	fmt.Fprintf(r.out, "  Subject:    %s\n", quoteOrDash(r.config.Metadata.Subject))
	fmt.Fprintln(r.out)
}
