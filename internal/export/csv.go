package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/skalibog/stockchart/internal/analysis/technical"
	"github.com/skalibog/stockchart/internal/loader"
	"github.com/skalibog/stockchart/pkg/models"
)

// WriteCSV пишет один производный ряд: date и по колонке на канал
func WriteCSV(w io.Writer, series *models.PriceSeries, res technical.Result) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(res.Channels)+1)
	header = append(header, "date")
	for _, ch := range res.Channels {
		header = append(header, ch.Name)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("ошибка записи заголовка: %w", err)
	}

	row := make([]string, len(header))
	for i := 0; i < res.Len(); i++ {
		idx := res.SourceIndex(i)
		if idx >= series.Len() {
			return fmt.Errorf("значение %s #%d привязано к индексу %d вне ряда", res.Indicator, i, idx)
		}
		row[0] = series.At(idx).Date.Format(models.DateLayout)
		for c, ch := range res.Channels {
			row[c+1] = ch.Values[i].String()
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("ошибка записи строки %d: %w", i+2, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteReportCSV пишет все производные ряды одной таблицей по датам источника.
// До первой привязанной даты индикатора ячейки пустые.
func WriteReportCSV(w io.Writer, series *models.PriceSeries, results []technical.Result) error {
	cw := csv.NewWriter(w)

	header := []string{"date", "close"}
	for _, res := range results {
		for _, ch := range res.Channels {
			header = append(header, res.Indicator+"."+ch.Name)
		}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("ошибка записи заголовка: %w", err)
	}

	row := make([]string, len(header))
	for idx := 0; idx < series.Len(); idx++ {
		rec := series.At(idx)
		row[0] = rec.Date.Format(models.DateLayout)
		row[1] = loader.FormatDecimal(rec.Close)

		col := 2
		for _, res := range results {
			i := idx - res.Offset
			for _, ch := range res.Channels {
				if i >= 0 && i < len(ch.Values) {
					row[col] = ch.Values[i].String()
				} else {
					row[col] = ""
				}
				col++
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("ошибка записи строки %d: %w", idx+2, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
