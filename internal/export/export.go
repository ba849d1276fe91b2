// Package export renders the rows of the task view as json, csv or pdf.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/jung-kurt/gofpdf"
)

var Formats = []string{"json", "csv", "pdf"}

type entry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Priority string `json:"priority"`
	Done     bool   `json:"done"`
}

func entries(rows []todo.Row) []entry {
	out := make([]entry, len(rows))
	for i, r := range rows {
		out[i] = entry{ID: r.Record.ID, Name: r.Label, Priority: r.Priority, Done: r.Done}
	}
	return out
}

// Export writes one entry per row, in view order. title heads the pdf.
func Export(rows []todo.Row, format, title string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		b, err := json.MarshalIndent(entries(rows), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "csv":
		var b bytes.Buffer
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"id", "name", "priority", "done"})
		for _, e := range entries(rows) {
			_ = w.Write([]string{e.ID, e.Name, e.Priority, fmt.Sprint(e.Done)})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case "pdf":
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.SetTitle(title, true)
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 10, title)
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		for _, r := range rows {
			box := "[ ]"
			if r.Done {
				box = "[x]"
			}
			pdf.MultiCell(0, 6, box+" "+r.Text(), "0", "L", false)
		}
		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}
