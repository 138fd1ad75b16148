package logging

import (
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestInitializeSilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger should be a no-op when no level is configured")
	}
}

func TestInitializeFromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")

	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv() error = %v", err)
	}
	core := GetLogger().Core()
	if core.Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !core.Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestInitializeRejectsUnknownLevel(t *testing.T) {
	if err := Initialize("loud"); err == nil {
		t.Error("Initialize(\"loud\") should fail")
	}
}

func TestLogAccessFormat(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogAccess("GET", 404, "/missing", "127.0.0.1:5000", "abc", 3*time.Millisecond)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got, want := entries[0].Message, "GET\t404 | /missing"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	if got := entries[0].ContextMap()["conn_id"]; got != "abc" {
		t.Errorf("conn_id = %v, want abc", got)
	}
}

func TestSetLoggerWhileLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	observed := zap.New(core)
	defer SetLogger(nil)

	const writers, perWriter = 4, 200
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWriter {
				Info("tick")
			}
		}()
	}
	for i := range perWriter {
		if i%2 == 0 {
			SetLogger(observed)
		} else {
			SetLogger(nil)
		}
	}
	wg.Wait()

	SetLogger(observed)
	Info("done")
	if got := logs.FilterMessage("done").Len(); got != 1 {
		t.Errorf("done entries = %d, want 1", got)
	}
	if got := logs.FilterMessage("tick").Len(); got > writers*perWriter {
		t.Errorf("tick entries = %d, want at most %d", got, writers*perWriter)
	}
}

func TestLogWebSocketFrameOnlyAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogWebSocketFrame("peer", "received", "text", []byte("hi"))
	if logs.Len() != 0 {
		t.Errorf("frame logged at info level, got %d entries", logs.Len())
	}

	core, logs = observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	LogWebSocketFrame("peer", "received", "text", []byte("hi"))
	if logs.Len() != 1 {
		t.Fatalf("got %d entries, want 1", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["content"]; got != "hi" {
		t.Errorf("content = %v, want hi", got)
	}
}

func TestDumpsTruncate(t *testing.T) {
	data := []byte(strings.Repeat("a", maxDumpBytes+10))

	if got := hexDump(data); !strings.HasSuffix(got, "...") || len(got) != maxDumpBytes*2+3 {
		t.Errorf("hexDump length = %d, want %d with ellipsis", len(got), maxDumpBytes*2+3)
	}
	if got := asciiDump(data); len(got) != maxDumpBytes {
		t.Errorf("asciiDump length = %d, want %d", len(got), maxDumpBytes)
	}
	if got := asciiDump([]byte{'o', 0x00, 'k'}); got != "o.k" {
		t.Errorf("asciiDump = %q, want %q", got, "o.k")
	}
}
