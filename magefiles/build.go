//go:build mage

// Package main holds the mage targets for codex.
//
//	mage build       compile bin/codex
//	mage smoke       build, then drive a throwaway workspace through the CLI
//	mage test:all    race-enabled tests
//	mage test:unit   short tests
//	mage test:cover  coverage summary
//	mage lint        go vet and golangci-lint
//	mage stats       line counts per package
//	mage install     copy bin/codex to GOPATH/bin
//	mage clean       remove bin/
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo     = "go"
	binaryDir = "bin"
	cmdDir    = "./cmd/codex"
)

var binary = filepath.Join(binaryDir, "codex")

// Build compiles bin/codex.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-trimpath", "-o", binary, cmdDir)
}

// Smoke runs the built binary against a temporary config and data dir:
// init, a tagged bookmark, a workspace save and reload, then info.
func Smoke() error {
	mg.Deps(Build)
	tmp, err := os.MkdirTemp("", "codex-smoke-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	base := []string{
		"--config-dir", filepath.Join(tmp, "config"),
		"--data-dir", filepath.Join(tmp, "data"),
	}
	snapshot := filepath.Join(tmp, "smoke.cdx")
	steps := [][]string{
		{"init"},
		{"tag", "add", "go", "--color", "blue"},
		{"bookmark", "add", "--uri", "https://go.dev", "--name", "Go", "--tag", "go"},
		{"workspace", "save", snapshot},
		{"bookmark", "add", "--uri", "https://discarded.example"},
		{"workspace", "open", snapshot},
		{"bookmark", "list"},
		{"workspace", "info"},
	}
	for _, step := range steps {
		if err := sh.RunV(binary, append(append([]string{}, base...), step...)...); err != nil {
			return fmt.Errorf("codex %v: %w", step, err)
		}
	}
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", filepath.Base(binary)), binary)
}
