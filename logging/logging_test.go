package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitializeWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.log")
	if err := Initialize(Config{Level: "debug", Format: "json", Output: path}); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	t.Cleanup(func() { _ = Initialize(DefaultConfig()) })

	Debugf("published %d rows", 12)
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"published 12 rows"`) {
		t.Fatalf("log file = %s, want the debug line", data)
	}
}

func TestInitializeFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.log")
	if err := Initialize(Config{Level: "loud", Format: "json", Output: path}); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	t.Cleanup(func() { _ = Initialize(DefaultConfig()) })

	Debugf("hidden")
	Infof("shown")
	Sync()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
		t.Fatalf("log file = %s, want only the info line", data)
	}
}

func TestInitializeRejectsUnwritableOutput(t *testing.T) {
	if err := Initialize(Config{Output: filepath.Join(t.TempDir(), "missing", "admin.log")}); err == nil {
		t.Fatalf("Initialize should fail for a missing directory")
	}
}
