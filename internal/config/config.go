package config

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	Logger   LoggerConfig   `yaml:"logger"`
	Data     DataConfig     `yaml:"data"`
	Analysis AnalysisConfig `yaml:"analysis"`
	UI       UIConfig       `yaml:"ui"`
	Output   OutputConfig   `yaml:"output"`
}

// LoggerConfig настройки логгера
type LoggerConfig struct {
	Level    string `yaml:"level"`
	JSONFile string `yaml:"json_file"`
}

// DataConfig источник исторических данных
type DataConfig struct {
	Path   string `yaml:"path"`
	Symbol string `yaml:"symbol"`
}

// AnalysisConfig настройки расчета индикаторов
type AnalysisConfig struct {
	Column          string            `yaml:"column"`
	Verify          bool              `yaml:"verify"`
	VerifyTolerance float64           `yaml:"verify_tolerance"`
	Indicators      []IndicatorConfig `yaml:"indicators"`
}

// IndicatorConfig описание одного индикатора.
// Используются только поля, относящиеся к типу.
type IndicatorConfig struct {
	Type      string `yaml:"type"`
	Period    int    `yaml:"period"`
	NumStdDev string `yaml:"num_std_dev"`
	Fast      int    `yaml:"fast"`
	Slow      int    `yaml:"slow"`
	Signal    int    `yaml:"signal"`
	Mode      string `yaml:"mode"`
}

// UIConfig настройки текстового отчета
type UIConfig struct {
	DaysToShow int      `yaml:"days_to_show"`
	Visible    []string `yaml:"visible"`
}

// OutputConfig куда и в каком формате писать результат
type OutputConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// Поддерживаемые форматы вывода
const (
	FormatTable        = "table"
	FormatLineProtocol = "lineprotocol"
	FormatCSV          = "csv"
)

// Типы индикаторов
const (
	TypeSMA       = "sma"
	TypeBollinger = "bollinger"
	TypeRSI       = "rsi"
	TypeMACD      = "macd"
)

// Default возвращает конфигурацию по умолчанию: MA20, MA50 и полосы Боллинджера(20, 2),
// отчет за 30 дней со скользящими средними на экране.
func Default() *Config {
	return &Config{
		Logger: LoggerConfig{Level: "info"},
		Analysis: AnalysisConfig{
			Column:          "close",
			VerifyTolerance: 1e-6,
			Indicators: []IndicatorConfig{
				{Type: TypeSMA, Period: 20},
				{Type: TypeSMA, Period: 50},
				{Type: TypeBollinger, Period: 20, NumStdDev: "2.0"},
			},
		},
		UI: UIConfig{
			DaysToShow: 30,
			Visible:    []string{"MA20", "MA50"},
		},
		Output: OutputConfig{Format: FormatTable},
	}
}

// Load загружает конфигурацию из файла поверх значений по умолчанию
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}
	return Parse(data)
}

// Parse разбирает YAML конфигурации поверх значений по умолчанию
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла конфигурации: %w", err)
	}
	return cfg, nil
}

// Validate проверяет конфигурацию и возвращает все найденные ошибки разом.
// Параметры индикаторов проверяются отдельно при их построении.
func (c *Config) Validate() error {
	var err error

	if c.Data.Path == "" {
		err = multierr.Append(err, fmt.Errorf("data.path не задан"))
	}
	if c.Data.Symbol == "" {
		err = multierr.Append(err, fmt.Errorf("data.symbol не задан"))
	}
	switch strings.ToLower(c.Output.Format) {
	case FormatTable, FormatLineProtocol, FormatCSV:
	default:
		err = multierr.Append(err, fmt.Errorf("неизвестный формат вывода %q", c.Output.Format))
	}
	if c.UI.DaysToShow < 0 {
		err = multierr.Append(err, fmt.Errorf("ui.days_to_show не может быть отрицательным: %d", c.UI.DaysToShow))
	}
	if c.Analysis.VerifyTolerance < 0 {
		err = multierr.Append(err, fmt.Errorf("analysis.verify_tolerance не может быть отрицательным"))
	}
	if len(c.Analysis.Indicators) == 0 {
		err = multierr.Append(err, fmt.Errorf("analysis.indicators пуст"))
	}
	for i, ind := range c.Analysis.Indicators {
		switch strings.ToLower(ind.Type) {
		case TypeSMA, TypeBollinger, TypeRSI, TypeMACD:
		default:
			err = multierr.Append(err, fmt.Errorf("analysis.indicators[%d]: неизвестный тип %q", i, ind.Type))
		}
	}

	return err
}
