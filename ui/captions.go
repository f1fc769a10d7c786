package ui

import (
	"fmt"
	"html/template"
	"strings"

	"bookingsdash/app"
	"bookingsdash/domain/bookings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Captions are the markdown notes shown under each chart
type Captions struct {
	Compare  template.HTML
	Variance template.HTML
	Share    template.HTML
}

// renderMarkdown converts a caption to HTML. Raw HTML in the source is
// skipped since brand names come from the workbook.
func renderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return template.HTML(markdown.ToHTML([]byte(md), p, r))
}

func buildCaptions(layout bookings.PeriodLayout, category bookings.Category, variance app.VarianceSeries, summary app.Summary) Captions {
	compare := fmt.Sprintf("Forecasted bookings side by side with the final bookings for each brand, **%s**, %s. "+
		"Brands with no forecast and no actual are left out.", category, layout.DisplayName)

	varianceText := fmt.Sprintf("By what percentage each brand hit or missed budget for **%s**. "+
		"Mean %s, median %s.", category, formatPercent(summary.MeanVariance), formatPercent(summary.MedianVariance))
	if len(variance.Excluded) > 0 {
		varianceText += fmt.Sprintf("\n\n*No budget, not charted:* %s", escapeMarkdown(strings.Join(variance.Excluded, ", ")))
	}

	share := fmt.Sprintf("How much of the final **%s** bookings each brand did, by percentage. "+
		"Total actual: %s.", category, formatFigure(summary.Totals.Actual))

	return Captions{
		Compare:  renderMarkdown(compare),
		Variance: renderMarkdown(varianceText),
		Share:    renderMarkdown(share),
	}
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, `*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`, `<`, `&lt;`, `>`, `&gt;`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
