package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// Options carry the process's streams; zero values mean os.Stdin,
// os.Stdout and os.Stderr.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Program tunes the interactive view, e.g. its input and output.
	Program []tea.ProgramOption
}

func (o Options) withDefaults() Options {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return o
}

// Run parses root flags, dispatches subcommands and returns an exit code
// (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	opt = opt.withDefaults()

	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	fs.SetOutput(opt.Stderr)
	fs.Usage = func() { PrintHelp(opt.Stderr) }
	cfg, err := config.Load(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		ui.Fail(opt.Stderr, err.Error())
		return 2
	}
	ui.SetColor(cfg.Color)
	ui.SetTheme(cfg.Theme)

	rest := fs.Args()
	if len(rest) == 0 {
		PrintHelp(opt.Stdout)
		return 2
	}
	cmd, a := rest[0], rest[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return 0
	case "auth":
		return runAuth(a, opt)
	}

	if !known(cmd) {
		ui.Fail(opt.Stderr, "unknown subcommand: "+cmd)
		fmt.Fprintln(opt.Stderr)
		PrintHelp(opt.Stderr)
		return 2
	}

	e, err := openEnv(cfg, opt, cmd == "ls")
	if err != nil {
		ui.Fail(opt.Stderr, err.Error())
		return 1
	}
	defer e.close()

	switch cmd {
	case "ls":
		return e.doList()
	case "print":
		return e.doPrint(a)
	case "add":
		return e.doAdd(a)
	case "done", "rm", "open":
		if len(a) != 1 {
			ui.Fail(opt.Stderr, "usage: tada "+cmd+" <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail(opt.Stderr, cmd+": not a number: "+a[0])
			return 2
		}
		return e.doRow(cmd, n)
	case "config":
		return e.doConfig(a)
	case "schema":
		return e.doSchema()
	case "export":
		return e.doExport(a)
	}
	return 2
}

var commands = []string{"ls", "print", "add", "done", "rm", "open", "config", "schema", "export"}

func known(cmd string) bool {
	for _, c := range commands {
		if c == cmd {
			return true
		}
	}
	return false
}

func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `tada - a prioritized to-do list over a record base

Usage:
  tada [flags] <subcommand> [args]

Subcommands:
  ls                          Interactive view (pickers, tasks, add form)
  print [--group]             Print the task list (--group splits pending/done)
  add [-p priority] [name...] Add a task
  done <index>                Toggle done for the task at 1-based index
  rm <index>                  Remove the task at 1-based index
  open <index>                Show every field of the task at 1-based index
  config [get|set|unset] [table|view|done|priority] [value]
                              Show or change which table, view and fields are used
  schema                      List tables, fields and views
  export [--format json|csv|pdf] [-o file]
                              Export the task list
  auth <login|logout|status|whoami>   Collaborator token (its role sets permissions)

Flags:
  --data-dir, --schema, --store, --dsn, --log-level, --log-format,
  --log-file, --theme, --role, --color   (see config.toml / .tada.toml, TADA_* env)

Examples:
  tada config set table Tasks
  tada add -p High Buy milk
  tada print --group
  tada done 2
`)
}
