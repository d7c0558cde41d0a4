package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/raffaelramalhorosa/techfeed/internal/models"
)

// DefaultHeadlineWidth is the terminal column budget for headlines.
const DefaultHeadlineWidth = 72

// WriteTable renders rows as a borderless table. Headlines wider than
// headlineWidth cells are cut with an ellipsis; <= 0 disables the cut.
func WriteTable(w io.Writer, rows []Row, headlineWidth int) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		headline := r.Headline
		if headlineWidth > 0 {
			headline = runewidth.Truncate(headline, headlineWidth, "…")
		}
		date := r.Date
		if date == "" {
			date = "-"
		}
		author := r.Author
		if author == "" {
			author = "-"
		}
		data = append(data, []string{strconv.Itoa(i + 1), r.Section, headline, date, author})
	}

	table.Header([]string{"#", "Section", "Headline", "Date", "Author"})
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("table rows: %w", err)
	}
	return table.Render()
}

// Printer writes one-line status messages, colored when enabled.
type Printer struct {
	out       io.Writer
	useColors bool
}

func NewPrinter(out io.Writer, useColors bool) *Printer {
	return &Printer{out: out, useColors: useColors}
}

// State prints the message for a snapshot state. Offline and failed are
// worded differently so users can tell them apart.
func (p *Printer) State(state models.State, count int, err error) {
	switch state {
	case models.StateReady:
		noun := "articles"
		if count == 1 {
			noun = "article"
		}
		p.print(color.FgGreen, "%d %s", count, noun)
	case models.StateEmpty:
		p.print(color.FgYellow, "No articles found")
	case models.StateOffline:
		p.print(color.FgRed, "No internet connection")
	case models.StateLoading:
		p.print(color.FgCyan, "A newer load is in progress")
	case models.StateFailed:
		p.print(color.FgRed, "Could not load articles: %v", err)
	}
}

func (p *Printer) print(attr color.Attribute, format string, args ...any) {
	if p.useColors {
		color.New(attr).Fprintf(p.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}
