package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/skalibog/stockchart/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCSV = `date,open,high,low,close,volume
2024-01-02,185.50,188.44,183.89,185.64,82488700
2024-01-03,184.22,185.88,183.43,184.25,58414500
2024-01-04,182.15,183.09,180.88,181.91,71983600
`

func TestRead_Valid(t *testing.T) {
	s, err := Read(strings.NewReader(validCSV), "AAPL")
	require.NoError(t, err)

	require.Equal(t, 3, s.Len())
	assert.Equal(t, "AAPL", s.Symbol())

	first := s.At(0)
	assert.True(t, first.Date.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "185.50", FormatDecimal(first.Open))
	assert.Equal(t, "188.44", first.High.String())
	assert.Equal(t, "183.89", first.Low.String())
	assert.Equal(t, "185.64", first.Close.String())
	assert.Equal(t, uint64(82488700), first.Volume)
}

func TestRead_HeaderOnly(t *testing.T) {
	s, err := Read(strings.NewReader("date,open,high,low,close,volume\n"), "X")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestRead_Errors(t *testing.T) {
	const header = "date,open,high,low,close,volume\n"

	tests := []struct {
		name     string
		input    string
		sentinel error
		kind     ErrorKind
		line     int
		column   string
	}{
		{"empty input", "", ErrInvalidSchema, KindInvalidSchema, 0, ""},
		{"columns reordered", "date,high,open,low,close,volume\n2024-01-02,1,1,1,1,1\n", ErrInvalidSchema, KindInvalidSchema, 0, ""},
		{"column missing", "date,open,high,low,close\n2024-01-02,1,1,1,1\n", ErrInvalidSchema, KindInvalidSchema, 0, ""},
		{"header case differs", "Date,Open,High,Low,Close,Volume\n", ErrInvalidSchema, KindInvalidSchema, 0, ""},
		{"too few fields", header + "2024-01-02,1,1,1,1\n", ErrMalformedRow, KindMalformedRow, 2, ""},
		{"too many fields", header + "2024-01-02,1,1,1,1,1,1\n", ErrMalformedRow, KindMalformedRow, 2, ""},
		{"bare quote", header + "2024-01-02,1\"0,1,1,1,1\n", ErrMalformedRow, KindMalformedRow, 2, ""},
		{"us date", header + "01/02/2024,1,1,1,1,1\n", ErrInvalidDate, KindInvalidDate, 2, ""},
		{"date with time", header + "2024-01-02T00:00:00,1,1,1,1,1\n", ErrInvalidDate, KindInvalidDate, 2, ""},
		{"single digit month", header + "2024-1-02,1,1,1,1,1\n", ErrInvalidDate, KindInvalidDate, 2, ""},
		{"locale comma", header + "2024-01-02,\"1,5\",2,1,1.5,1\n", ErrInvalidDecimal, KindInvalidDecimal, 2, "open"},
		{"exponent", header + "2024-01-02,1,1e2,1,1,1\n", ErrInvalidDecimal, KindInvalidDecimal, 2, "high"},
		{"empty low", header + "2024-01-02,1,1,,1,1\n", ErrInvalidDecimal, KindInvalidDecimal, 2, "low"},
		{"text close", header + "2024-01-02,1,1,1,abc,1\n", ErrInvalidDecimal, KindInvalidDecimal, 2, "close"},
		{"volume text", header + "2024-01-02,1,1,1,1,n/a\n", ErrInvalidVolume, KindInvalidVolume, 2, ""},
		{"volume negative", header + "2024-01-02,1,1,1,1,-5\n", ErrInvalidVolume, KindInvalidVolume, 2, ""},
		{"volume fractional", header + "2024-01-02,1,1,1,1,10.5\n", ErrInvalidVolume, KindInvalidVolume, 2, ""},
		{"error on third line", header + "2024-01-02,1,1,1,1,1\n2024-01-03,1,1,1,1,x\n", ErrInvalidVolume, KindInvalidVolume, 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Read(strings.NewReader(tt.input), "X")
			require.Error(t, err)
			assert.Nil(t, s)
			assert.True(t, errors.Is(err, tt.sentinel), "ожидалась %v, получено %v", tt.sentinel, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.kind, loadErr.Kind)
			assert.Equal(t, tt.line, loadErr.Line)
			assert.Equal(t, tt.column, loadErr.Column)
		})
	}
}

func TestRead_HeaderWithBOM(t *testing.T) {
	s, err := Read(strings.NewReader("\ufeff"+validCSV), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	// Метка допустима только перед заголовком
	_, err = Read(strings.NewReader("date,\ufeffopen,high,low,close,volume\n"), "AAPL")
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestRead_ParseErrorsWinOverInvariants(t *testing.T) {
	// Первая строка нарушает порядок OHLC, но вторая не разбирается:
	// инварианты проверяются только после разбора всех строк.
	input := "date,open,high,low,close,volume\n" +
		"2024-01-02,10,9,8,9,1\n" +
		"2024-01-03,1,1,1,1,bad\n"
	_, err := Read(strings.NewReader(input), "X")
	assert.ErrorIs(t, err, ErrInvalidVolume)
}

func TestRead_InvariantViolations(t *testing.T) {
	const header = "date,open,high,low,close,volume\n"

	tests := []struct {
		name  string
		input string
		date  string
	}{
		{"open above high", header + "2024-01-02,11,10,9,10,1\n", "2024-01-02"},
		{"close below low", header + "2024-01-02,10,11,9,8,1\n", "2024-01-02"},
		{"low above high", header + "2024-01-02,10,9,11,10,1\n", "2024-01-02"},
		{"duplicate date", header + "2024-01-02,10,11,9,10,1\n2024-01-02,10,11,9,10,1\n", "2024-01-02"},
		{"dates descending", header + "2024-01-03,10,11,9,10,1\n2024-01-02,10,11,9,10,1\n", "2024-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), "X")
			require.ErrorIs(t, err, ErrSeriesInvariant)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.date, loadErr.Date.Format(models.DateLayout))
			assert.Contains(t, loadErr.Error(), tt.date)

			var invErr *models.InvariantError
			assert.True(t, errors.As(err, &invErr), "исходная ошибка модели доступна через Unwrap")
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "AAPL.csv")
	require.NoError(t, os.WriteFile(path, []byte(validCSV), 0644))

	s, err := Load(path, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
}

func TestLoad_MissingFileIsIoFailure(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), "X")
	require.ErrorIs(t, err, ErrIoFailure)
	assert.NotErrorIs(t, err, ErrInvalidSchema)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestRead_ReaderFailureIsIoFailure(t *testing.T) {
	_, err := Read(failingReader{}, "X")
	assert.ErrorIs(t, err, ErrIoFailure)
}

func TestWrite_RoundTrip(t *testing.T) {
	input := "date,open,high,low,close,volume\n" +
		"2024-01-02,1.50,2.000,1.0,1.75,0\n" +
		"2024-01-03,2,3,1,2.5,18446744073709551615\n" +
		"2024-01-04,-0.10,0.00,-0.25,-0.05,7\n"

	first, err := Read(strings.NewReader(input), "X")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, first))
	assert.Equal(t, input, buf.String(), "сериализация сохраняет исходный текст")

	second, err := Read(&buf, "X")
	require.NoError(t, err)

	require.Equal(t, first.Len(), second.Len())
	for i := 0; i < first.Len(); i++ {
		a, b := first.At(i), second.At(i)
		assert.True(t, a.Date.Equal(b.Date))
		assert.Equal(t, FormatDecimal(a.Open), FormatDecimal(b.Open))
		assert.Equal(t, FormatDecimal(a.High), FormatDecimal(b.High))
		assert.Equal(t, FormatDecimal(a.Low), FormatDecimal(b.Low))
		assert.Equal(t, FormatDecimal(a.Close), FormatDecimal(b.Close))
		assert.Equal(t, a.Volume, b.Volume)
	}
}

func TestLoad_SampleData(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", "testdata", "acme.csv"), "ACME")
	require.NoError(t, err)
	assert.Equal(t, 90, s.Len())
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), s.At(0).Date)
	assert.Equal(t, "101.50", FormatDecimal(s.At(0).Close))
}
