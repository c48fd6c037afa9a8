package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	if Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", Log.GetLevel())
	}

	SetLevel("loud")
	if Log.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected fallback to info level, got %s", Log.GetLevel())
	}
}

func TestSetFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetFormat("json")
	defer SetFormat("text")

	Log.WithField("host", "test.com").Info("pinned")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a JSON log line, got %q: %v", buf.String(), err)
	}

	if entry["host"] != "test.com" || entry["msg"] != "pinned" {
		t.Errorf("unexpected log entry: %v", entry)
	}
}
