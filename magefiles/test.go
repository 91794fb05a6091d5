//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit).
type Test mg.Namespace

// storagePkgs open SQLite databases under t.TempDir and are skipped by
// Test:Unit.
var storagePkgs = []string{
	modulePath + "/internal/sqlite",
	modulePath + "/internal/httpapi",
	modulePath + "/internal/cli",
	modulePath + "/pkg/sqlite",
}

// All runs every package test with the race detector.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-race", "-count=1", "./...")
}

// Unit runs the tests that need no database.
func (Test) Unit() error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}
	var unitPkgs []string
	for pkg := range strings.SplitSeq(pkgs, "\n") {
		if pkg != "" && !isStoragePkg(pkg) {
			unitPkgs = append(unitPkgs, pkg)
		}
	}
	if len(unitPkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	args := append([]string{"test", "-v"}, unitPkgs...)
	return sh.RunV(binGo, args...)
}

func isStoragePkg(pkg string) bool {
	for _, p := range storagePkgs {
		if pkg == p {
			return true
		}
	}
	return false
}
