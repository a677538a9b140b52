// Package repl adapts the teacher's liner-based interactive session
// (internal/repl/repl.go in sunholo-data-ailang) to a compiler-core REPL:
// instead of evaluating an expression through an interpreter, each accepted
// line is appended to a growing source buffer, the whole buffer is recompiled
// through internal/pipeline, and the resulting diagnostics or a module
// summary are printed. A line that fails to compile is evicted from the
// buffer so the session always sits at its last-known-good state.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/sunholo/wasmc/internal/compiler"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/pipeline"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

var replCommands = []string{":help", ":quit", ":reset", ":history"}

// Config carries the compiler options a session compiles every line against,
// plus the version string the welcome banner prints.
type Config struct {
	Options compiler.Options
	Version string
}

// REPL holds one interactive session's accumulated source buffer.
type REPL struct {
	cfg     Config
	lines   []string
	history []string
}

// New returns a session ready for Start.
func New(cfg Config) *REPL {
	return &REPL{cfg: cfg}
}

func (r *REPL) prompt() string { return "wasmc> " }

// Start runs the read-eval-print loop against out (input always comes from
// the terminal via liner), following the teacher's session shape: a history
// file under os.TempDir, multi-line continuation while braces stay open, and
// a `:`-prefixed completer.
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".wasmc_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetMultiLineMode(true)
	line.SetCompleter(func(in string) (c []string) {
		if strings.HasPrefix(in, ":") {
			for _, cmd := range replCommands {
				if strings.HasPrefix(cmd, in) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	versionStr := r.cfg.Version
	if versionStr == "" {
		versionStr = "dev"
	}
	fmt.Fprintf(out, "%s %s\n", bold("wasmc"), bold(versionStr))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	for {
		input, err := line.Prompt(r.prompt())
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		input = r.readContinuation(line, input)

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if r.handleCommand(input, out) {
				break
			}
			continue
		}

		r.evalLine(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// readContinuation keeps prompting with "... " while input has more opening
// braces than closing ones, the same brace-balance heuristic the parser
// itself has no streaming notion of, so the REPL approximates it instead of
// asking the parser to report "incomplete input".
func (r *REPL) readContinuation(line *liner.State, input string) string {
	buf := []string{input}
	for strings.Count(strings.Join(buf, "\n"), "{") > strings.Count(strings.Join(buf, "\n"), "}") {
		cont, err := line.Prompt("... ")
		if err != nil {
			break
		}
		buf = append(buf, cont)
	}
	return strings.Join(buf, "\n")
}

func (r *REPL) handleCommand(input string, out io.Writer) (quit bool) {
	switch {
	case input == ":quit" || input == ":q" || input == ":exit":
		fmt.Fprintln(out, green("Goodbye!"))
		return true
	case input == ":reset":
		r.lines = nil
		fmt.Fprintln(out, green("Session reset."))
	case input == ":history":
		for i, h := range r.history {
			fmt.Fprintf(out, "%3d  %s\n", i+1, h)
		}
	case input == ":help":
		fmt.Fprintln(out, "Enter a declaration or statement to compile it against the running session.")
		fmt.Fprintln(out, ":reset    clear the session buffer")
		fmt.Fprintln(out, ":history  show entered lines")
		fmt.Fprintln(out, ":quit     exit")
	default:
		fmt.Fprintf(out, "%s: unknown command %q\n", yellow("Warning"), input)
	}
	return false
}

// evalLine appends input to the session buffer, recompiles the whole buffer,
// and either reports diagnostics or accepts the line and prints a summary of
// the recompiled module.
func (r *REPL) evalLine(input string, out io.Writer) {
	candidate := append(append([]string{}, r.lines...), input)
	source := strings.Join(candidate, "\n")

	result := pipeline.Compile(source, "<repl>", r.cfg.Options)
	if result.HasErrors() {
		printDiagnostics(out, result.Diags)
		return
	}

	r.lines = candidate
	fmt.Fprintf(out, "%s %d function(s), %d global(s)\n",
		green("OK"), len(result.Module.Functions), len(result.Module.Globals))
}

func printDiagnostics(out io.Writer, reports []*diagnostics.Report) {
	for _, r := range reports {
		colorFn := yellow
		if r.Severity != diagnostics.SeverityWarning.String() {
			colorFn = red
		}
		fmt.Fprintf(out, "%s[%s] %s\n", colorFn(strings.ToUpper(r.Severity)), r.Code, r.Message)
	}
}
