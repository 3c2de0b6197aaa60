// Command rewardschema writes the JSON schema for the embedded reward catalog,
// or with -check verifies that a committed copy is current.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"layer-survivors/server/internal/rewards"
)

var errStale = errors.New("schema is out of date")

func main() {
	var (
		outPath string
		check   bool
	)
	flag.StringVar(&outPath, "out", "", "path of the reward catalog JSON schema")
	flag.BoolVar(&check, "check", false, "fail instead of writing when the schema at -out differs")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "rewardschema: -out is required")
		os.Exit(2)
	}

	run := writeSchema
	if check {
		run = checkSchema
	}
	if err := run(outPath); err != nil {
		fmt.Fprintf(os.Stderr, "rewardschema: %v\n", err)
		os.Exit(1)
	}
}

func writeSchema(outPath string) error {
	data, err := rewards.SchemaJSON()
	if err != nil {
		return fmt.Errorf("render schema: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}
	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}

func checkSchema(outPath string) error {
	want, err := rewards.SchemaJSON()
	if err != nil {
		return fmt.Errorf("render schema: %w", err)
	}
	got, err := os.ReadFile(outPath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w (missing)", outPath, errStale)
	}
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%s: %w; rerun without -check", outPath, errStale)
	}
	return nil
}
