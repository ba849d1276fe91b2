package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Makepad-fr/tada/internal/export"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/schema"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

const configHint = "run `tada config set table <name>` (and view, done, priority)"

func (e *env) doList() int {
	err := tui.Run(tui.Deps{
		Config: e.settings,
		Schema: e.schema,
		Source: e.base,
		Logger: e.logger,
	}, e.opt.Program...)
	if err != nil {
		ui.Fail(e.opt.Stderr, "tui: "+err.Error())
		return 1
	}
	return 0
}

// subFlags parses a subcommand's own flags; names are what is left.
func (e *env) subFlags(name string, args []string, bind func(fs *flag.FlagSet)) ([]string, bool) {
	fs := flag.NewFlagSet("tada "+name, flag.ContinueOnError)
	fs.SetOutput(e.opt.Stderr)
	bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, false
	}
	return fs.Args(), true
}

func (e *env) doPrint(args []string) int {
	var group bool
	if _, ok := e.subFlags("print", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&group, "group", false, "group output by pending/done")
	}); !ok {
		return 2
	}
	app, _, err := e.newApp(nil)
	if err != nil {
		ui.Fail(e.opt.Stderr, err.Error())
		return 1
	}
	defer app.Close()

	t := ui.Current()
	sel := app.Selection()
	if !sel.Ready() || sel.View == nil {
		ui.Panel(e.opt.Stdout, []string{
			t.Title.Render("Tasks"),
			t.Muted.Render("not configured: " + configHint),
		})
		return 0
	}

	rows := app.Rows()
	d, p := stats(rows)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render(sel.Table.Name+" / "+sel.View.Name),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(rows),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, t.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")
	if group {
		lines = append(lines, groupLines(rows)...)
	} else {
		lines = append(lines, flatLines(rows, indexes(len(rows)))...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `tada add -p High Buy milk`"))
	ui.Panel(e.opt.Stdout, lines)
	return 0
}

func (e *env) doAdd(args []string) int {
	var priority string
	names, ok := e.subFlags("add", args, func(fs *flag.FlagSet) {
		fs.StringVar(&priority, "p", "", "priority")
	})
	if !ok {
		return 2
	}
	app, src, err := e.newApp(nil)
	if err != nil {
		ui.Fail(e.opt.Stderr, err.Error())
		return 1
	}
	defer app.Close()

	form := app.Form()
	if form == nil {
		ui.Fail(e.opt.Stderr, "add: not configured")
		ui.Hint(e.opt.Stderr, configHint)
		return 1
	}
	form.SetName(strings.Join(names, " "))
	form.SetPriority(priority)
	if !form.Submit() {
		ui.Fail(e.opt.Stderr, "add: "+form.Enabled().Reason)
		return 1
	}
	if err := src.wait(); err != nil {
		ui.Fail(e.opt.Stderr, "add: "+err.Error())
		return 1
	}
	ui.OK(e.opt.Stdout, "added")
	return 0
}

// doRow runs done, rm or open on the 1-based userIndex.
func (e *env) doRow(cmd string, userIndex int) int {
	var detail []string
	app, src, err := e.newApp(todo.ExpanderFunc(func(t *schema.Table, rec model.Record) {
		if full, ok := e.base.Record(t.ID, rec.ID); ok {
			rec = full
		}
		detail = tui.DetailLines(t, rec)
	}))
	if err != nil {
		ui.Fail(e.opt.Stderr, err.Error())
		return 1
	}
	defer app.Close()

	rows := app.Rows()
	if userIndex < 1 || userIndex > len(rows) {
		ui.Fail(e.opt.Stderr, fmt.Sprintf("index out of range: have %d, got %d", len(rows), userIndex))
		ui.Hint(e.opt.Stderr, "run `tada print` to see valid indexes")
		return 2
	}
	idx := userIndex - 1
	row := rows[idx]

	switch cmd {
	case "open":
		app.Open(idx)
		ui.Panel(e.opt.Stdout, detail)
		return 0
	case "done":
		if !app.Toggle(idx) {
			ui.Fail(e.opt.Stderr, "done: "+row.Toggle.Reason)
			return 1
		}
	case "rm":
		if !app.Delete(idx) {
			ui.Fail(e.opt.Stderr, "rm: "+row.Remove.Reason)
			return 1
		}
	}
	if err := src.wait(); err != nil {
		ui.Fail(e.opt.Stderr, cmd+": "+err.Error())
		return 1
	}
	if cmd == "rm" {
		ui.OK(e.opt.Stdout, "removed "+row.Label)
	} else {
		ui.OK(e.opt.Stdout, "toggled "+row.Label)
	}
	return 0
}

func (e *env) doExport(args []string) int {
	var format, out string
	if _, ok := e.subFlags("export", args, func(fs *flag.FlagSet) {
		fs.StringVar(&format, "format", "json", strings.Join(export.Formats, ", "))
		fs.StringVar(&out, "o", "", "output file (default stdout)")
	}); !ok {
		return 2
	}
	app, _, err := e.newApp(nil)
	if err != nil {
		ui.Fail(e.opt.Stderr, err.Error())
		return 1
	}
	defer app.Close()

	sel := app.Selection()
	if !sel.Ready() || sel.View == nil {
		ui.Fail(e.opt.Stderr, "export: not configured")
		ui.Hint(e.opt.Stderr, configHint)
		return 1
	}
	data, err := export.Export(app.Rows(), format, sel.Table.Name+" / "+sel.View.Name)
	if err != nil {
		ui.Fail(e.opt.Stderr, "export: "+err.Error())
		return 2
	}
	if out == "" {
		if _, err := e.opt.Stdout.Write(data); err != nil {
			ui.Fail(e.opt.Stderr, "export: "+err.Error())
			return 1
		}
		return 0
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		ui.Fail(e.opt.Stderr, "export: "+err.Error())
		return 1
	}
	ui.OK(e.opt.Stdout, "exported to "+out)
	return 0
}

// -------------- rendering helpers --------------

func stats(rows []todo.Row) (done, pending int) {
	for _, r := range rows {
		if r.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// flatLines renders rows[idx] for each idx, numbered by position in the
// full list so the numbers work with done/rm/open.
func flatLines(rows []todo.Row, idx []int) []string {
	t := ui.Current()
	if len(idx) == 0 {
		return []string{t.Muted.Render("no tasks")}
	}
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		r := rows[i]
		text := r.Text()
		if rs := []rune(text); len(rs) > 80 {
			text = string(rs[:77]) + "..."
		}
		box := t.Muted.Render(t.BoxUnchecked)
		if r.Done {
			box = t.Success.Render(t.BoxChecked)
			text = t.Done.Render(text)
		}
		out = append(out, fmt.Sprintf("%s %s %s", t.Muted.Render(fmt.Sprintf("%2d.", i+1)), box, text))
	}
	return out
}

func groupLines(rows []todo.Row) []string {
	t := ui.Current()
	var pend, done []int
	for i, r := range rows {
		if r.Done {
			done = append(done, i)
		} else {
			pend = append(pend, i)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(rows, pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(rows, done)...)
	}
	return lines
}
