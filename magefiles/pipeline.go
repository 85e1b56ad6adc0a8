//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// run executes the built CLI with the given arguments.
func run(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Ingest extracts text from everything under data/raw/.
func Ingest() error {
	mg.Deps(Build)
	return run("ingest")
}

// Summarize produces JSON summaries for every extracted text file.
func Summarize() error {
	mg.Deps(Build)
	return run("summarize")
}

// Digest renders the weekly Markdown digest from JSON summaries.
func Digest() error {
	mg.Deps(Build)
	return run("digest")
}

// Weekly runs the summarize and digest stages back to back.
func Weekly() error {
	mg.Deps(Build)
	if err := run("summarize"); err != nil {
		return fmt.Errorf("summarize stage: %w", err)
	}
	return run("digest")
}
