//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func executeCmd(command string, args ...string) error {
	fmt.Printf("Executing: %s %s\n", command, strings.Join(args, " "))
	cmd := exec.Command(command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
