package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
)

// chdir moves the test into a temp dir so logs/ never lands in the module.
func chdir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		log.SetOutput(io.Discard)
		os.Chdir(wd)
	})
}

func TestSetupLogging_DisabledByDefault(t *testing.T) {
	chdir(t)

	logFile := setupLogging(false)
	if logFile != nil {
		t.Error("expected nil log file when debug=false")
		logFile.Close()
	}

	if log.Writer() != io.Discard {
		t.Errorf("expected log output to be io.Discard, got %v", log.Writer())
	}
	if _, err := os.Stat(logDir); !os.IsNotExist(err) {
		t.Error("logs directory should not be created without debug")
	}
}

func TestSetupLogging_EnabledWithDebug(t *testing.T) {
	chdir(t)

	logFile := setupLogging(true)
	if logFile == nil {
		t.Fatal("expected non-nil log file when debug=true")
	}
	defer logFile.Close()

	logPath := filepath.Join(logDir, logFileName)
	log.Println("test log message")

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("failed to stat log file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected log file to contain content")
	}
	if log.Writer() == os.Stdout || log.Writer() == os.Stderr {
		t.Error("log output must stay off the terminal")
	}
}

func TestSetupLogging_Rotation(t *testing.T) {
	chdir(t)

	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatalf("failed to create logs directory: %v", err)
	}
	logPath := filepath.Join(logDir, logFileName)
	if err := os.WriteFile(logPath, make([]byte, maxLogSize+1), 0644); err != nil {
		t.Fatalf("failed to write log file: %v", err)
	}

	logFile := setupLogging(true)
	if logFile == nil {
		t.Fatal("expected non-nil log file")
	}
	defer logFile.Close()

	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("failed to read logs directory: %v", err)
	}
	rotated := false
	for _, e := range entries {
		if e.Name() != logFileName && filepath.Ext(e.Name()) == ".log" {
			rotated = true
		}
	}
	if !rotated {
		t.Error("expected to find rotated log file")
	}

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("failed to stat new log file: %v", err)
	}
	if info.Size() > maxLogSize {
		t.Errorf("expected new log file under %d bytes, got %d", maxLogSize, info.Size())
	}
}
