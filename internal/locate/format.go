// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// FormatTable writes ranked matches as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Matches) == 0 {
		fmt.Fprintf(w, "No images matching %q found.\n", out.Query)
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Rank", "Score", "Path"})
	for i, m := range out.Matches {
		tw.AppendRow(table.Row{i + 1, fmt.Sprintf("%.2f", m.Score), m.Path})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
	})
	fmt.Fprintln(w, tw.Render())

	fmt.Fprintf(w, "\n%d result(s) from %d root(s), %d directories scanned",
		len(out.Matches), out.Stats.Roots, out.Stats.Dirs)
	if out.Stats.TimedOut {
		fmt.Fprint(w, " (timed out, partial)")
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the ranked paths as an indented JSON array to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	paths := out.Paths()
	if paths == nil {
		paths = []string{}
	}
	return enc.Encode(paths)
}
