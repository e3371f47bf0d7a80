package logger

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options настройки логгера
type Options struct {
	// Level уровень логирования: debug, info, warn, error
	Level string
	// JSONFile путь к файлу с JSON логами; пусто - только консоль
	JSONFile string
}

// Глобальный экземпляр логгера
var (
	globalLogger *zap.Logger
	logFile      *os.File
	mu           sync.RWMutex
	once         sync.Once
)

// Init инициализирует глобальный логгер. Повторный вызов заменяет логгер.
// Предыдущий логгер сбрасывается, его JSON файл закрывается.
func Init(opts Options) error {
	l, f, err := newLogger(opts)
	if err != nil {
		return err
	}

	mu.Lock()
	prevLogger, prevFile := globalLogger, logFile
	globalLogger, logFile = l, f
	mu.Unlock()

	if prevLogger != nil {
		_ = prevLogger.Sync()
	}
	if prevFile != nil {
		if err := prevFile.Close(); err != nil {
			return fmt.Errorf("ошибка закрытия файла логов: %w", err)
		}
	}
	return nil
}

// GetLogger возвращает глобальный экземпляр логгера.
// До Init используется консольный логгер уровня info.
func GetLogger() *zap.Logger {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if globalLogger == nil {
			globalLogger, _, _ = newLogger(Options{Level: "info"})
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Sync сбрасывает буферы логгера
func Sync() error {
	return GetLogger().Sync()
}

// Вспомогательные функции для удобства использования
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("неизвестный уровень логирования %q: %w", s, err)
	}
	return level, nil
}

// consoleSyncer stderr часто pipe или терминал, fsync для них возвращает
// EINVAL или ENOTTY; такие ошибки при Sync не считаются ошибками
type consoleSyncer struct {
	zapcore.WriteSyncer
}

func (s consoleSyncer) Sync() error {
	err := s.WriteSyncer.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

// newLogger создает логгер: читаемый вывод в stderr и, при необходимости, JSON файл.
// Открытый JSON файл возвращается, чтобы его можно было закрыть.
func newLogger(opts Options) (*zap.Logger, *os.File, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	// Конфигурация энкодера
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("02.01.2006 - 15:04:05.000Z07:00")
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	consoleConfig := encoderConfig
	consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(consoleSyncer{os.Stderr}), level),
	}

	var jsonFile *os.File
	if opts.JSONFile != "" {
		jsonFile, err = os.OpenFile(opts.JSONFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка открытия файла логов: %w", err)
		}
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(jsonFile), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)), jsonFile, nil
}
