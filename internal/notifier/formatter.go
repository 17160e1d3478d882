package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"MarketMovers/internal/model"
)

// Price renders a float with the given number of decimal places.
func Price(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// EmailSubject returns the report email subject line.
func EmailSubject(r *model.Report) string {
	return fmt.Sprintf("Stock Performance Report - %s", r.GeneratedAt.Format("2006-01-02 15:04:05"))
}

// FormatEmailText is the plain-text part of the report email.
func FormatEmailText(r *model.Report) string {
	return fmt.Sprintf("Here are the top %d and bottom %d performing stocks in %s:",
		r.TopN, r.TopN, strings.TrimSpace(r.RangeLabel))
}

// FormatEmailHTML renders both ranked slices as HTML tables.
func FormatEmailHTML(r *model.Report) string {
	var b strings.Builder
	b.WriteString("<h2>Top Performing Stocks</h2>\n")
	writeHTMLTable(&b, r.Top)
	b.WriteString("<h2>Worst Performing Stocks</h2>\n")
	writeHTMLTable(&b, r.Bottom)
	b.WriteString("<br><p>Please see the attached plots for visual representation.</p>\n")
	return b.String()
}

func writeHTMLTable(b *strings.Builder, rows model.RankedSlice) {
	b.WriteString(`<table border="1" class="dataframe">` + "\n<thead><tr>")
	for _, h := range []string{"Name", "Ticker", "Start Price", "End Price", "Price Growth (%)", "Volatility", "Data Range"} {
		fmt.Fprintf(b, "<th>%s</th>", h)
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	for _, r := range rows {
		fmt.Fprintf(b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(r.Name), html.EscapeString(r.Ticker),
			Price(r.StartPrice, 2), Price(r.EndPrice, 2),
			Price(r.GrowthPct, 2), Price(r.Volatility, 4),
			html.EscapeString(r.RangeLabel))
	}
	b.WriteString("</tbody>\n</table>\n")
}

// FormatSummary formats a compact Telegram message for a report.
func FormatSummary(r *model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Stock Performance Report</b> | %s\n", r.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Range: %s | analyzed %d, skipped %d\n\n", r.RangeLabel, r.Analyzed, r.Skipped)

	b.WriteString(fmt.Sprintf("📈 <b>Top %d:</b>\n", len(r.Top)))
	writeSummaryRows(&b, r.Top)
	b.WriteString(fmt.Sprintf("\n📉 <b>Worst %d:</b>\n", len(r.Bottom)))
	writeSummaryRows(&b, r.Bottom)
	return b.String()
}

func writeSummaryRows(b *strings.Builder, rows model.RankedSlice) {
	for i, r := range rows {
		fmt.Fprintf(b, "  %d. %s (%s): %+.2f%% | vol %.4f\n",
			i+1, html.EscapeString(r.Ticker), html.EscapeString(r.Name), r.GrowthPct, r.Volatility)
	}
}
