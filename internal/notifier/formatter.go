package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"StockScope/internal/batch"
	"StockScope/internal/indicator"
)

// FormatReport renders the latest row of every computed instrument plus
// the failed instruments as a Telegram HTML message.
func FormatReport(res *batch.Result, start, end time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>StockScope</b> | %s → %s\n",
		start.Format(time.DateOnly), end.Format(time.DateOnly)))

	for _, e := range res.Entries() {
		b.WriteString("\n")
		b.WriteString(FormatEntry(e))
	}

	if failures := res.Failures(); len(failures) > 0 {
		b.WriteString("\n❌ <b>Failed:</b>\n")
		for _, f := range failures {
			b.WriteString(fmt.Sprintf("  %s: %s\n", f.Symbol, html.EscapeString(f.Err.Error())))
		}
	}
	if res.Len() == 0 && len(res.Failures()) == 0 {
		b.WriteString("\nNo instruments.\n")
	}
	return b.String()
}

// FormatEntry renders the last row of one instrument.
func FormatEntry(e batch.Entry) string {
	var b strings.Builder
	set := e.Indicators
	n := e.Series.Len()
	last := e.Series.Point(n - 1)

	b.WriteString(fmt.Sprintf("<b>%s</b> %s close %.2f (%d rows)\n",
		e.Symbol, last.Date.Format(time.DateOnly), last.Close, n))

	var mas []string
	for _, name := range set.Names() {
		if strings.HasPrefix(name, "MA_") {
			mas = append(mas, fmt.Sprintf("%s %s", name, num(set.Last(name))))
		}
	}
	if len(mas) > 0 {
		b.WriteString("  " + strings.Join(mas, " | ") + "\n")
	}
	if has(set, indicator.ColBBMiddle) {
		b.WriteString(fmt.Sprintf("  BB %s / %s / %s\n",
			num(set.Last(indicator.ColBBLower)), num(set.Last(indicator.ColBBMiddle)), num(set.Last(indicator.ColBBUpper))))
	}
	if has(set, indicator.ColRSI) {
		b.WriteString(fmt.Sprintf("  RSI %s%s\n", num(set.Last(indicator.ColRSI)), rsiZone(set.Last(indicator.ColRSI))))
	}
	if has(set, indicator.ColMACD) {
		b.WriteString(fmt.Sprintf("  MACD %s | Signal %s | Hist %s\n",
			num(set.Last(indicator.ColMACD)), num(set.Last(indicator.ColSignal)), num(set.Last(indicator.ColMACDHist))))
	}
	if has(set, indicator.ColK) {
		b.WriteString(fmt.Sprintf("  %%K %s | %%D %s\n", num(set.Last(indicator.ColK)), num(set.Last(indicator.ColD))))
	}
	return b.String()
}

func has(set *indicator.Set, name string) bool {
	return set.Has(name)
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func rsiZone(v float64) string {
	switch {
	case v >= 70:
		return " (overbought)"
	case v <= 30:
		return " (oversold)"
	default:
		return ""
	}
}

// HelpText lists the supported bot commands.
const HelpText = "Commands:\n" +
	"• /report - indicators for the configured symbols\n" +
	"• /ind SYMBOL [start] [end] - indicators for one symbol (dates as YYYY-MM-DD)"
