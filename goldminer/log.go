package goldminer

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/plus3/goldminer/ecs"
)

// NewLogger builds the zap logger used by a Simulation. format is "json" or
// "console".
func NewLogger(level string, format string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	if format != "json" && format != "console" {
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	if format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         format,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}

	return config.Build()
}

func entityField(key string, id ecs.EntityId) zap.Field {
	return zap.Uint32(key, uint32(id))
}
