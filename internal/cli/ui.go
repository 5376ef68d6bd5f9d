package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/vitos/case_index/internal/domain"
	"github.com/vitos/case_index/internal/usecase"
	"github.com/vitos/case_index/internal/view"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6"))

	mutedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	gainStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	lossStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	currentPageStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#2563EB"))

	errorStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#EF4444")).
		Foreground(lipgloss.Color("#EF4444")).
		Padding(0, 1)

	nameStyle = lipgloss.NewStyle().Width(36)
)

const statBarWidth = 24

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

func changeStyle(pct float64) lipgloss.Style {
	if pct >= 0 {
		return gainStyle
	}
	return lossStyle
}

func renderError(err error) string {
	return errorStyle.Render("Failed to load data: " + view.ErrorMessage(err))
}

func renderRow(prefix string, item domain.CaseItem) string {
	return fmt.Sprintf("%s %s %10s  %s",
		prefix,
		nameStyle.Render(item.Name),
		view.FormatPrice(item.LatestSellPrice),
		changeStyle(item.ChangePct).Render(view.FormatSignedPercent(item.ChangePct)))
}

// RenderPager draws the pagination window with the current page bracketed.
func RenderPager(p view.Pager) string {
	if !p.Visible() {
		return ""
	}
	parts := make([]string, 0, len(p.Entries)+2)
	if p.PrevEnabled {
		parts = append(parts, "‹")
	} else {
		parts = append(parts, mutedStyle.Render("‹"))
	}
	for _, e := range p.Entries {
		switch {
		case e.Ellipsis:
			parts = append(parts, mutedStyle.Render(e.String()))
		case e.Number == p.Current:
			parts = append(parts, currentPageStyle.Render("["+e.String()+"]"))
		default:
			parts = append(parts, e.String())
		}
	}
	if p.NextEnabled {
		parts = append(parts, "›")
	} else {
		parts = append(parts, mutedStyle.Render("›"))
	}
	return strings.Join(parts, " ")
}

// RenderSearch renders one page of search results.
func RenderSearch(params domain.SearchParams, page *domain.SearchPage, pageSize int) string {
	var b strings.Builder

	title := "All Cases"
	if params.Query != "" {
		title = fmt.Sprintf("Search: %q", params.Query)
	}
	b.WriteString(titleStyle.Render(title+" · "+params.SortBy.Label()) + "\n")

	n := page.Total
	word := "results"
	if n == 1 {
		word = "result"
	}
	b.WriteString(mutedStyle.Render(humanize.Comma(int64(n))+" "+word) + "\n\n")

	if len(page.Items) == 0 {
		b.WriteString("No cases found\n")
		return b.String()
	}
	for _, it := range page.Items {
		b.WriteString(renderRow(fmt.Sprintf("%6d", it.ItemID), it) + "\n")
	}

	if pager := view.NewPager(params.Page, view.TotalPages(page.Total, pageSize)); pager.Visible() {
		b.WriteString("\n" + RenderPager(pager) + "\n")
	}
	return b.String()
}

func renderMoverList(title string, section usecase.Section[*domain.SearchPage]) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(title) + "\n")
	switch {
	case section.Failed():
		b.WriteString(renderError(section.Err) + "\n")
	case section.Data == nil || len(section.Data.Items) == 0:
		b.WriteString(mutedStyle.Render("No data available") + "\n")
	default:
		for i, it := range section.Data.Items {
			b.WriteString(renderRow(fmt.Sprintf("#%-3d", i+1), it) + "\n")
		}
	}
	return b.String()
}

// RenderMovers renders the top gainers and losers.
func RenderMovers(home *usecase.HomeView) string {
	return renderMoverList(domain.SortGainers.Label(), home.Gainers) + "\n" +
		renderMoverList(domain.SortLosers.Label(), home.Losers)
}

// TerminalSparkline maps each plotted point to a block character by height.
func TerminalSparkline(s *view.Sparkline) string {
	top := view.SparklinePadding
	bottom := view.SparklineHeight - view.SparklinePadding
	var b strings.Builder
	for _, p := range s.Points {
		level := (bottom - p.Y) / (bottom - top)
		idx := int(math.Round(level * float64(len(sparkTicks)-1)))
		idx = max(0, min(len(sparkTicks)-1, idx))
		b.WriteRune(sparkTicks[idx])
	}
	return b.String()
}

// StatBar draws a low..high bar with the current price marked.
func StatBar(pos view.RangePosition) string {
	at := int(math.Round(pos.Percent / 100 * float64(statBarWidth-1)))
	bar := []rune(strings.Repeat("─", statBarWidth))
	bar[at] = '●'
	return string(bar)
}

// RenderItem renders the item detail view. Each section fails on its own.
func RenderItem(d *usecase.ItemDetail) string {
	var b strings.Builder

	var current int64
	if d.Item.Failed() {
		b.WriteString(renderError(d.Item.Err) + "\n\n")
	} else {
		it := d.Item.Data
		current = it.LatestSellPrice
		b.WriteString(titleStyle.Render(it.Name) + "\n")
		b.WriteString(fmt.Sprintf("Current Price  %s\n", view.FormatPrice(it.LatestSellPrice)))
		b.WriteString(fmt.Sprintf("Previous Price %s\n", view.FormatPrice(it.OldSellPrice)))
		b.WriteString(fmt.Sprintf("24h Change     %s\n\n", changeStyle(it.ChangePct).Render(view.FormatSignedPercent(it.ChangePct))))
	}

	b.WriteString(sectionStyle.Render("Price History ("+d.Interval.Label()+")") + "\n")
	switch {
	case d.Chart.Failed():
		b.WriteString(renderError(d.Chart.Err) + "\n")
	default:
		chart := view.NewChart(d.Chart.Data)
		line, ok := chart.Sparkline()
		if !ok {
			b.WriteString(mutedStyle.Render("No chart data available") + "\n")
			break
		}
		style := gainStyle
		if !chart.IsPositive() {
			style = lossStyle
		}
		first, last := chart.Points[0], chart.Points[len(chart.Points)-1]
		b.WriteString(style.Render(TerminalSparkline(line)) + "\n")
		b.WriteString(mutedStyle.Render(first.DateLabel()+" → "+last.DateLabel()) + "\n")
		b.WriteString(fmt.Sprintf("%s  %s (%s)\n",
			view.FormatMajor(chart.CurrentPrice(nil)),
			style.Render(view.FormatMajor(chart.ChangeValue)),
			style.Render(chart.ChangePercentLabel())))
	}

	b.WriteString("\n" + sectionStyle.Render("Price Statistics") + "\n")
	switch {
	case d.Stats.Failed():
		b.WriteString(renderError(d.Stats.Err) + "\n")
	case len(d.Stats.Data) == 0:
		b.WriteString(mutedStyle.Render("No statistics available") + "\n")
	default:
		for _, c := range view.NewStatCards(d.Stats.Data, current) {
			b.WriteString(fmt.Sprintf("%-10s %s %s %s  %s\n",
				c.Label,
				view.FormatPrice(c.LowPrice),
				StatBar(c.Position),
				view.FormatPrice(c.HighPrice),
				mutedStyle.Render(strconv.FormatFloat(c.Position.Percent, 'f', 1, 64)+"%")))
		}
	}
	return b.String()
}
