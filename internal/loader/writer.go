package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/skalibog/stockchart/pkg/models"
)

// Write сериализует ряд в формат, который читает Read.
// Масштаб чисел сохраняется: "1.50" записывается как "1.50".
func Write(w io.Writer, s *models.PriceSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("ошибка записи заголовка: %w", err)
	}

	row := make([]string, len(Header))
	for i := 0; i < s.Len(); i++ {
		r := s.At(i)
		row[0] = r.Date.Format(models.DateLayout)
		row[1] = FormatDecimal(r.Open)
		row[2] = FormatDecimal(r.High)
		row[3] = FormatDecimal(r.Low)
		row[4] = FormatDecimal(r.Close)
		row[5] = strconv.FormatUint(r.Volume, 10)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("ошибка записи строки %d: %w", i+2, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatDecimal печатает число с его исходным количеством знаков после запятой
func FormatDecimal(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
