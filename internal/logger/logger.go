package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Config はロガーの設定です。
type Config struct {
	Level      string `env:"LOG_LEVEL" env-default:"info"`       // debug, info, warn, error
	Encoding   string `env:"LOG_ENCODING" env-default:"console"` // json または console
	OutputPath string `env:"LOG_OUTPUT_PATH" env-default:""`     // 空なら stdout
}

// New は設定から zap.Logger を構築します。
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	logLevel := strings.ToLower(cfg.Level)
	if logLevel == "" {
		logLevel = "info"
	}
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		// ロガーがまだないので stderr に書く。
		fmt.Fprintf(os.Stderr, "不正なログレベル '%s' のため info を使います: %v\n", cfg.Level, err)
		level.SetLevel(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoding := strings.ToLower(cfg.Encoding)
	if encoding != "console" && encoding != "json" {
		encoding = "json"
	}

	// stdout は CLI の JSON 出力に使う。
	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = "stderr"
	}

	zapConfig := zap.Config{
		Level:             level,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{outputPath},
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// NewSlog は zap をバックエンドにした slog.Logger を返します。
// pkg 以下のパッケージは slog のパッケージ関数でログを出すため、
// 戻り値は slog.SetDefault に渡して使います。
func NewSlog(cfg Config) (*slog.Logger, *zap.Logger, error) {
	zl, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(zapslog.NewHandler(zl.Core())), zl, nil
}
