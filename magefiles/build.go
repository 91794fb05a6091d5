//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for rulestore using Mage.
//
// Usage:
//
//	mage build      Compile the rulestore binary to bin/
//	mage test:all   Run every package test with the race detector
//	mage test:unit  Run tests, skipping the SQLite-backed packages
//	mage lint       Run go vet and golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install rulestore to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "rulestore"
	binaryDir  = "bin"
	cmdDir     = "./cmd/rulestore"
	modulePath = "github.com/mesh-intelligence/rulestore"
)

// Build compiles the rulestore binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-trimpath",
		"-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts and the test cache.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean", "-testcache")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
