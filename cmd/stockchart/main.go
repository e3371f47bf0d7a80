package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/skalibog/stockchart/internal/analysis/aggregator"
	"github.com/skalibog/stockchart/internal/config"
	"github.com/skalibog/stockchart/internal/export"
	"github.com/skalibog/stockchart/internal/loader"
	"github.com/skalibog/stockchart/internal/ui"
	"github.com/skalibog/stockchart/pkg/logger"
	"github.com/skalibog/stockchart/pkg/models"
	"go.uber.org/zap"
)

func main() {
	// Обработка флагов командной строки
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	dataPath := flag.String("data", "", "CSV с дневными свечами (перекрывает data.path)")
	symbol := flag.String("symbol", "", "тикер (перекрывает data.symbol)")
	format := flag.String("format", "", "формат вывода: table, lineprotocol, csv")
	outPath := flag.String("out", "", "файл для результата (по умолчанию stdout)")
	verify := flag.Bool("verify", false, "сверять индикаторы с TA-Lib")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	cfg, err := loadConfig(*configPath, explicit["config"])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if *symbol != "" {
		cfg.Data.Symbol = *symbol
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *outPath != "" {
		cfg.Output.Path = *outPath
	}
	if explicit["verify"] {
		cfg.Analysis.Verify = *verify
	}

	if err := logger.Init(logger.Options{Level: cfg.Logger.Level, JSONFile: cfg.Logger.JSONFile}); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	cancel()
	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

func loadConfig(path string, required bool) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !required {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		logger.Error("Некорректная конфигурация", zap.Error(err))
		return err
	}

	series, err := loader.Load(cfg.Data.Path, cfg.Data.Symbol)
	if err != nil {
		logger.Error("Ошибка загрузки ряда", zap.String("path", cfg.Data.Path), zap.Error(err))
		return err
	}
	logger.Info("Ряд загружен",
		zap.String("symbol", series.Symbol()),
		zap.Int("records", series.Len()))

	analyzer, err := aggregator.NewAnalyzer(cfg.Analysis)
	if err != nil {
		logger.Error("Ошибка параметров индикаторов", zap.Error(err))
		return err
	}

	report, err := analyzer.Analyze(ctx, series)
	if err != nil {
		logger.Error("Ошибка расчета индикаторов", zap.Error(err))
		return err
	}
	if cfg.Analysis.Verify {
		logger.Info("Сверка с TA-Lib завершена", zap.Int("divergences", len(report.Divergences)))
	}

	if err := writeOutput(cfg.Output, cfg.UI, series, report); err != nil {
		logger.Error("Ошибка вывода результата", zap.Error(err))
		return err
	}
	return nil
}

// createFile открывает файл результата
var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func writeOutput(out config.OutputConfig, uiCfg config.UIConfig, series *models.PriceSeries, report *aggregator.Report) (err error) {
	var w io.Writer = os.Stdout
	if out.Path != "" {
		f, cerr := createFile(out.Path)
		if cerr != nil {
			return fmt.Errorf("ошибка создания файла %s: %w", out.Path, cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("ошибка закрытия файла %s: %w", out.Path, cerr)
			}
		}()
		w = f
	}

	switch strings.ToLower(out.Format) {
	case config.FormatLineProtocol:
		return export.WriteLineProtocol(w, series, report.Results)
	case config.FormatCSV:
		return export.WriteReportCSV(w, series, report.Results)
	default:
		_, err = fmt.Fprintln(w, ui.RenderReport(series, report, ui.OptionsFromConfig(uiCfg)))
		return err
	}
}
