package logging

import (
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger is swapped by Initialize and SetLogger while workers log.
var logger atomic.Pointer[zap.Logger]

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent.
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "WEBLI_LOG_LEVEL"

// maxDumpBytes caps hex and ascii dumps in log lines.
const maxDumpBytes = 256

// Initialize creates a new logger with the specified level.
// If level is empty, it checks the WEBLI_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger.Store(zap.NewNop())
		return nil
	}

	zapLevel, err := ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	// Workers log concurrently; the locked sink keeps lines whole.
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(zapLevel),
	)

	logger.Store(zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	))

	return nil
}

// InitializeFromEnv initializes the logger from WEBLI_LOG_LEVEL only.
func InitializeFromEnv() error {
	return Initialize("")
}

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// ParseLevel maps one of debug, info, warn or error to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	l, ok := levels[strings.ToLower(name)]
	if !ok {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return l, nil
}

// SetLogger replaces the global logger. Used by tests to capture output.
// A nil logger silences logging.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}

// GetLogger returns the process logger, a no-op one before Initialize.
func GetLogger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

var nop = zap.NewNop()

func Debug(msg string, fields ...zap.Field) { GetLogger().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { GetLogger().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetLogger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetLogger().Error(msg, fields...) }

// LogConnection logs a connection lifecycle event
func LogConnection(connID, remoteAddr, event string) {
	Info("Connection event",
		zap.String("conn_id", connID),
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// LogTLSHandshake logs negotiated TLS parameters
func LogTLSHandshake(connID, remoteAddr string, state tls.ConnectionState) {
	Debug("TLS handshake completed",
		zap.String("conn_id", connID),
		zap.String("remote_addr", remoteAddr),
		zap.String("tls_version", tls.VersionName(state.Version)),
		zap.String("cipher_suite", tls.CipherSuiteName(state.CipherSuite)),
		zap.String("server_name", state.ServerName),
	)
}

// LogAccess writes one access line per answered request.
// The message reads "METHOD\tSTATUS | PATH".
func LogAccess(method string, status int, path, remoteAddr, connID string, elapsed time.Duration) {
	Info(fmt.Sprintf("%s\t%d | %s", method, status, path),
		zap.String("conn_id", connID),
		zap.String("remote_addr", remoteAddr),
		zap.Duration("elapsed", elapsed),
	)
}

// LogWebSocketFrame logs a WebSocket frame moving in the given direction.
func LogWebSocketFrame(remoteAddr, direction, opcode string, payload []byte) {
	if !GetLogger().Core().Enabled(zapcore.DebugLevel) {
		return
	}

	fields := []zap.Field{
		zap.String("remote_addr", remoteAddr),
		zap.String("direction", direction),
		zap.String("opcode", opcode),
		zap.Int("length", len(payload)),
	}

	if opcode == "text" {
		fields = append(fields, zap.String("content", asciiDump(payload)))
	} else {
		fields = append(fields, zap.String("hex_dump", hexDump(payload)))
	}

	Debug("WebSocket frame", fields...)
}

// LogRawBytes logs data as hex and printable ASCII at debug level.
func LogRawBytes(label string, data []byte) {
	Debug(label,
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
		zap.String("ascii", asciiDump(data)),
	)
}

// clip bounds dumps so a large body cannot flood the log.
func clip(data []byte) (head []byte, more string) {
	if len(data) > maxDumpBytes {
		return data[:maxDumpBytes], "..."
	}
	return data, ""
}

func hexDump(data []byte) string {
	head, more := clip(data)
	return hex.EncodeToString(head) + more
}

func asciiDump(data []byte) string {
	head, _ := clip(data)
	out := make([]byte, len(head))
	for i, b := range head {
		out[i] = '.'
		if b >= ' ' && b <= '~' {
			out[i] = b
		}
	}
	return string(out)
}

// Sync flushes buffered entries.
func Sync() {
	if l := logger.Load(); l != nil {
		_ = l.Sync()
	}
}
