//go:build mage

package main

// Runs the whole test suite with the race detector.
func Test() error {
	return executeCmd("go", "test", "-race", "./...")
}

// Runs go vet over the module.
func Lint() error {
	return executeCmd("go", "vet", "./...")
}
