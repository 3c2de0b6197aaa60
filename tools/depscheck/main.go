package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const modulePath = "layer-survivors/server"

type packageInfo struct {
	ImportPath string
	Imports    []string
}

// corePackages must stay headless: no transport, process wiring or sockets.
var corePackages = []string{
	modulePath + "/internal/rng",
	modulePath + "/internal/world",
	modulePath + "/internal/combat",
	modulePath + "/internal/ai",
	modulePath + "/internal/sim",
	modulePath + "/internal/rewards",
	modulePath + "/internal/layers",
	modulePath + "/internal/game",
}

var forbiddenImports = []string{
	modulePath + "/internal/net",
	modulePath + "/internal/app",
	"github.com/gorilla/websocket",
	"net/http",
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./internal/...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	violations, err := check(bytes.NewReader(output))
	if err != nil {
		fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
		os.Exit(1)
	}

	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}

// check reads a `go list -json` stream and returns sorted violations.
func check(r io.Reader) ([]string, error) {
	decoder := json.NewDecoder(r)

	var violations []string
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if !isCore(pkg.ImportPath) {
			continue
		}
		for _, imp := range pkg.Imports {
			if isForbidden(imp) {
				violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
			}
		}
	}
	sort.Strings(violations)
	return violations, nil
}

func isCore(path string) bool {
	for _, core := range corePackages {
		if path == core || strings.HasPrefix(path, core+"/") {
			return true
		}
	}
	return false
}

func isForbidden(path string) bool {
	for _, forbidden := range forbiddenImports {
		if path == forbidden || strings.HasPrefix(path, forbidden+"/") {
			return true
		}
	}
	return false
}
