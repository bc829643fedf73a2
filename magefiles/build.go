//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the preload CLI into bin/.
func (Build) Cli() error {
	return executeCmd("go", "build", "-o", "bin/preload", "./cmd/preload")
}

// Builds the testbed demo into bin/.
func (Build) Testbed() error {
	return executeCmd("go", "build", "-o", "bin/testbed", "./testbed")
}
