package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteSchemaReplacesAtomically(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "nested", "rewards.schema.json")
	if err := writeSchema(outPath); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if _, err := os.Stat(outPath + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected the temp file to be renamed away, got %v", err)
	}
}

func TestCheckSchemaDetectsDrift(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "rewards.schema.json")
	if err := checkSchema(outPath); !errors.Is(err, errStale) {
		t.Fatalf("expected a missing schema to be stale, got %v", err)
	}
	if err := writeSchema(outPath); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := checkSchema(outPath); err != nil {
		t.Fatalf("fresh schema reported stale: %v", err)
	}
	if err := os.WriteFile(outPath, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := checkSchema(outPath); !errors.Is(err, errStale) {
		t.Fatalf("expected drift to be detected, got %v", err)
	}
}
