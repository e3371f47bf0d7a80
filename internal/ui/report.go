package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/skalibog/stockchart/internal/analysis/aggregator"
	"github.com/skalibog/stockchart/internal/analysis/technical"
	"github.com/skalibog/stockchart/internal/config"
	"github.com/skalibog/stockchart/pkg/models"
)

// Стили UI
var (
	// Основные цвета
	primaryColor   = lipgloss.Color("#0077cc")
	secondaryColor = lipgloss.Color("#333333")
	downColor      = lipgloss.Color("#cc3300")
	upColor        = lipgloss.Color("#33cc33")

	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(secondaryColor)
	upStyle     = lipgloss.NewStyle().Foreground(upColor)
	downStyle   = lipgloss.NewStyle().Foreground(downColor)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Padding(0, 1)
)

// Знаков после запятой в отчете; расчеты идут с полной точностью
const displayPlaces = 2

// RenderOptions состояние представления: сколько дней показывать и какие индикаторы
type RenderOptions struct {
	DaysToShow int
	// Имена индикаторов (MA20, BB(20,2), ...); пустой список показывает все
	Visible []string
}

// OptionsFromConfig переносит настройки UI из конфигурации
func OptionsFromConfig(cfg config.UIConfig) RenderOptions {
	return RenderOptions{
		DaysToShow: cfg.DaysToShow,
		Visible:    append([]string(nil), cfg.Visible...),
	}
}

type column struct {
	title  string
	offset int
	values []string
}

// RenderReport рисует таблицу последних дней ряда с видимыми индикаторами.
// Дни роста (close >= open) зеленые, дни падения красные.
func RenderReport(series *models.PriceSeries, report *aggregator.Report, opts RenderOptions) string {
	title := titleStyle.Render(fmt.Sprintf("%s - %s", series.Symbol(), report.Column))

	columns := visibleColumns(report.Results, opts.Visible)

	widths := make([]int, len(columns)+2)
	widths[0] = len(models.DateLayout)
	widths[1] = len("close")
	for i, col := range columns {
		widths[i+2] = len(col.title)
		for _, v := range col.values {
			widths[i+2] = max(widths[i+2], len(v))
		}
	}

	from := 0
	if opts.DaysToShow > 0 && series.Len() > opts.DaysToShow {
		from = series.Len() - opts.DaysToShow
	}

	closes := make([]string, 0, series.Len()-from)
	for idx := from; idx < series.Len(); idx++ {
		c := series.At(idx).Close.StringFixed(displayPlaces)
		widths[1] = max(widths[1], len(c))
		closes = append(closes, c)
	}

	var b strings.Builder

	cells := []string{"date", "close"}
	for _, col := range columns {
		cells = append(cells, col.title)
	}
	b.WriteString(headerStyle.Render(formatRow(cells, widths)))
	b.WriteString("\n")

	for idx := from; idx < series.Len(); idx++ {
		rec := series.At(idx)
		cells = cells[:0]
		cells = append(cells, rec.Date.Format(models.DateLayout), closes[idx-from])
		for _, col := range columns {
			i := idx - col.offset
			if i >= 0 && i < len(col.values) {
				cells = append(cells, col.values[i])
			} else {
				cells = append(cells, "")
			}
		}

		style := downStyle
		if rec.Up() {
			style = upStyle
		}
		b.WriteString(style.Render(formatRow(cells, widths)))
		b.WriteString("\n")
	}

	footer := footerStyle.Render(fmt.Sprintf("Показано дней: %d из %d", series.Len()-from, series.Len()))

	return appStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			b.String(),
			footer,
		),
	)
}

func visibleColumns(results []technical.Result, visible []string) []column {
	show := make(map[string]bool, len(visible))
	for _, name := range visible {
		show[name] = true
	}

	var columns []column
	for _, res := range results {
		if len(visible) > 0 && !show[res.Indicator] {
			continue
		}
		for _, ch := range res.Channels {
			title := res.Indicator
			if len(res.Channels) > 1 {
				title += "." + ch.Name
			}
			values := make([]string, len(ch.Values))
			for i, v := range ch.Values {
				values[i] = v.StringFixed(displayPlaces)
			}
			columns = append(columns, column{title: title, offset: res.Offset, values: values})
		}
	}
	return columns
}

func formatRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, c := range cells {
		padded[i] = fmt.Sprintf("%*s", widths[i], c)
	}
	return strings.Join(padded, "  ")
}
