package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnvVar selects the level when no level is passed to Initialize.
// Empty means silent.
const LogLevelEnvVar = "GW1000_LOG_LEVEL"

// maxDumpBytes caps how much of a frame ends up in a single log entry
const maxDumpBytes = 256

var logger *zap.Logger

var levels = map[string]zapcore.Level{
	"debug":   zapcore.DebugLevel,
	"info":    zapcore.InfoLevel,
	"warn":    zapcore.WarnLevel,
	"warning": zapcore.WarnLevel,
	"error":   zapcore.ErrorLevel,
}

// Initialize sets up the global logger at level, falling back to
// GW1000_LOG_LEVEL. With neither set, logging is a no-op. Entries go to
// stderr; stdout is reserved for decoded data.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(level)),
		Encoding:         "console",
		EncoderConfig:    enc,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}

// parseLevel maps a level name to zap; unknown names mean info
func parseLevel(level string) zapcore.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return zapcore.InfoLevel
}

// SetLogger replaces the global logger
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger, a no-op one before Initialize
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func debugEnabled() bool {
	return GetLogger().Core().Enabled(zapcore.DebugLevel)
}

func Debug(msg string, fields ...zap.Field) { GetLogger().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { GetLogger().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetLogger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetLogger().Error(msg, fields...) }

// Sync flushes buffered entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}

// LogFrame logs a frame at debug level. direction is "sent" or "received".
func LogFrame(direction, command string, data []byte) {
	if !debugEnabled() {
		return
	}
	Debug("Gateway frame",
		zap.String("direction", direction),
		zap.String("command", command),
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
	)
}

// LogExchange logs one request/response round trip; failures at warn
func LogExchange(addr, command string, sent, received int, err error) {
	fields := []zap.Field{
		zap.String("gateway", addr),
		zap.String("command", command),
		zap.Int("sent", sent),
		zap.Int("received", received),
	}
	if err != nil {
		Warn("Gateway exchange failed", append(fields, zap.Error(err))...)
		return
	}
	Debug("Gateway exchange", fields...)
}

// LogObservations logs the size of a decoded poll, and its values at debug
func LogObservations(source string, obs map[string]any) {
	fields := []zap.Field{zap.String("source", source), zap.Int("count", len(obs))}
	if debugEnabled() {
		fields = append(fields, zap.Any("observations", obs))
	}
	Info("Observations decoded", fields...)
}

func LogConnection(remoteAddr, event string) {
	Info("Connection event", zap.String("remote_addr", remoteAddr), zap.String("event", event))
}

// LogRawBytes logs bytes that could not be framed
func LogRawBytes(label string, data []byte) {
	Debug(label,
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
		zap.String("ascii", asciiDump(data)),
	)
}

// hexDump renders up to maxDumpBytes as space separated uppercase pairs
func hexDump(data []byte) string {
	var b strings.Builder
	for i, c := range data[:min(len(data), maxDumpBytes)] {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", c)
	}
	if len(data) > maxDumpBytes {
		b.WriteString(" ...")
	}
	return b.String()
}

// asciiDump shows printable bytes and replaces the rest with '.'
func asciiDump(data []byte) string {
	out := make([]byte, 0, min(len(data), maxDumpBytes))
	for _, c := range data[:cap(out)] {
		if c < 32 || c > 126 {
			c = '.'
		}
		out = append(out, c)
	}
	return string(out)
}
