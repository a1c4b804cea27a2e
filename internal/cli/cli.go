// Package cli implements the agentgraph command: batch generation,
// validation and requirements extraction for project files.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/agentgraph/agentgraph/internal/config"
	"github.com/agentgraph/agentgraph/internal/log"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitUsageError      = 2
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const usage = `Usage: agentgraph <command> [flags] [project.json...]

Commands:
  generate      compile project files to Python programs
  validate      report structural problems in project files
  requirements  list the Python packages a project needs
  new           write a project file from a template
  templates     list the available templates
  version       print version information
`

// UsageError is returned for malformed invocations.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

func usagef(format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ue *UsageError
	if errors.As(err, &ue) {
		return ExitUsageError
	}
	return ExitValidationError
}

// env is the state shared by every command.
type env struct {
	stdout, stderr io.Writer
	cfg            *config.Config
	readFile       func(string) ([]byte, error)
	writeFile      func(string, []byte) error
	warn, fail, ok *color.Color
}

// Main runs the command line args and returns the exit code.
func Main(args []string, stdout, stderr io.Writer) int {
	return run(context.Background(), args, stdout, stderr, os.Getenv)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	e := &env{
		stdout:   stdout,
		stderr:   stderr,
		readFile: os.ReadFile,
		writeFile: func(path string, data []byte) error {
			return os.WriteFile(path, data, 0o644)
		},
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed, color.Bold),
		ok:   color.New(color.FgGreen),
	}

	cfg := config.FromEnv(getenv)
	if err := cfg.Validate(); err != nil {
		e.fail.Fprintf(stderr, "error: %v\n", err)
		return ExitUsageError
	}
	e.cfg = cfg
	log.SetLevel(cfg.LogLevel)

	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return ExitUsageError
	}

	var err error
	switch cmd, rest := strings.TrimSpace(args[0]), args[1:]; cmd {
	case "generate":
		err = e.generate(ctx, rest)
	case "validate":
		err = e.validate(rest)
	case "requirements":
		err = e.requirements(rest)
	case "new":
		err = e.newProject(rest)
	case "templates":
		e.templates()
	case "version":
		fmt.Fprintf(stdout, "agentgraph %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
	default:
		err = usagef("unknown command %q", cmd)
	}

	if err != nil {
		var ue *UsageError
		if errors.As(err, &ue) {
			e.fail.Fprintf(stderr, "error: %s\n\n", ue.Message)
			fmt.Fprint(stderr, usage)
		} else {
			e.fail.Fprintf(stderr, "error: %v\n", err)
		}
	}
	return ExitCode(err)
}

// newFlagSet returns a flag set that reports parse failures as usage
// errors instead of exiting.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("agentgraph "+name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parse accepts flags before, between and after the positional arguments
// and returns the positional ones.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, usagef("%v", err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// errFailed marks a command whose problems were already printed.
var errFailed = errors.New("one or more project files failed")
