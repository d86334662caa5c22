package report

import (
	"fmt"
	"io"
	"slices"

	"hotel-rates-scraper/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Output formats
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatHTML     = "html"
)

// Formats lists every supported output format
var Formats = []string{FormatTable, FormatMarkdown, FormatCSV, FormatHTML}

// ValidFormat reports whether format can be rendered
func ValidFormat(format string) bool {
	return slices.Contains(Formats, format)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// Render writes the aggregated table to w in the given format
func Render(w io.Writer, rows models.Table, format string) error {
	if !ValidFormat(format) {
		return fmt.Errorf("unknown output format %q", format)
	}

	t := newTable(w)
	t.Style().Format.Header = text.FormatDefault
	header := make(table.Row, len(models.Columns))
	for i, c := range models.Columns {
		header[i] = c
	}
	t.AppendHeader(header)
	for _, r := range rows {
		t.AppendRow(r.Values())
	}

	switch format {
	case FormatMarkdown:
		t.RenderMarkdown()
	case FormatCSV:
		t.RenderCSV()
	case FormatHTML:
		t.RenderHTML()
	default:
		t.SetColumnConfigs([]table.ColumnConfig{
			{Name: "priceMinorUnits", Align: text.AlignRight},
			{Name: "roomArea", Align: text.AlignRight},
		})
		t.Render()
	}
	return nil
}

// RenderEmpty writes the empty-result warning
func RenderEmpty(w io.Writer, hint string) error {
	_, err := fmt.Fprintf(w, "No room rates found. %s.\n", hint)
	return err
}

// RenderFailures writes one row per failed target
func RenderFailures(w io.Writer, failures []models.Failure) {
	if len(failures) == 0 {
		return
	}

	t := newTable(w)
	t.SetTitle("Failed pages")
	t.AppendHeader(table.Row{"hotel", "checkIn", "checkOut", "reason"})
	for _, f := range failures {
		t.AppendRow(table.Row{
			f.Target.HotelID,
			f.Target.CheckIn.Format(models.DateLayout),
			f.Target.CheckOut.Format(models.DateLayout),
			f.Reason,
		})
	}
	t.Render()
}
