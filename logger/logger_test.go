package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithComponent(t *testing.T) {
	log := Logger()
	entry := log.WithComponent("test")
	if v, ok := entry.Entry.Data["component"]; !ok || v != "test" {
		t.Fatalf("component field missing: %v", entry.Entry.Data)
	}
}

func TestConfigureInvalidLevel(t *testing.T) {
	// Ensure environment variables do not override the provided level
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("invalid", "json", "stdout", 0); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestConfigureInvalidFormat(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("info", "xml", "stdout", 0); err == nil {
		t.Fatalf("expected error for invalid format")
	}
}

func TestConfigureFileOutput(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "watchlist.log")
	log := Logger()
	if err := log.Configure("debug", "json", path, 0); err != nil {
		t.Fatalf("configure: %v", err)
	}
	log.WithComponent("file_test").Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var line map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(data), &line); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, data)
	}
	if line["message"] != "hello" || line["component"] != "file_test" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestWithEnv(t *testing.T) {
	t.Setenv("FOO", "bar")
	log := Logger()
	entry := log.WithEnv("FOO")
	if v, ok := entry.Entry.Data["FOO"]; !ok || v != "bar" {
		t.Fatalf("env field not set: %v", entry.Entry.Data)
	}
}

func TestReportCountsWarnsAndErrors(t *testing.T) {
	ResetReport()
	t.Cleanup(ResetReport)

	log := Logger()
	log.SetOutput(&bytes.Buffer{})
	log.WithComponent("kucoin").Warn("w1")
	log.WithComponent("kucoin").Warn("w2")
	log.WithComponent("binance").Error("e1")

	got := Report()
	if len(got) != 2 {
		t.Fatalf("expected 2 components, got %v", got)
	}
	if got[0].Component != "binance" || got[0].Errors != 1 || got[0].Warns != 0 {
		t.Fatalf("unexpected binance report: %+v", got[0])
	}
	if got[1].Component != "kucoin" || got[1].Warns != 2 {
		t.Fatalf("unexpected kucoin report: %+v", got[1])
	}
}

func TestCallerPointsAtLoggingCode(t *testing.T) {
	var buf bytes.Buffer
	log := Logger()
	log.SetOutput(&buf)
	log.WithComponent("caller_test").WithFields(Fields{"k": 1}).Info("hello")

	var line map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	file, _ := line["file"].(string)
	if !strings.HasPrefix(file, "logger_test.go:") {
		t.Fatalf("caller = %q, want logger_test.go", file)
	}
}

func TestPackagePath(t *testing.T) {
	if !strings.HasSuffix(packagePath, "/logger") || strings.Contains(packagePath, ".") {
		t.Fatalf("unexpected package path %q", packagePath)
	}
}
