//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// Build compiles every command into ./bin
func Build() error {
	mg.Deps(BuildCorrector)
	mg.Deps(BuildScanner)
	mg.Deps(BuildMeasureCompression)
	fmt.Println("Compilation finished")
	return nil
}

func BuildCorrector() error {
	fmt.Println("Building corrector executable...")
	return buildCommand("corrector")
}

func BuildScanner() error {
	fmt.Println("Building scanner executable...")
	return buildCommand("scanner")
}

func BuildMeasureCompression() error {
	fmt.Println("Building measureCompression executable...")
	return buildCommand("measureCompression")
}

// Test runs the package tests, which need libhdf5 like the executables.
func Test() error {
	fmt.Println("Running tests...")
	cmd := exec.Command("go", "test", "./pkg/...")
	cmd.Env = cgoEnv()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func buildCommand(name string) error {
	cmd := exec.Command("go", "build", "-o", "./bin/"+name, "./"+name)
	cmd.Env = cgoEnv()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// hdf5-go links against the system libhdf5
func cgoEnv() []string {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	return append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
}
