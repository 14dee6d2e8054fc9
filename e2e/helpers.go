package e2e

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
)

// buildAntipastaBinary compiles the CLI into a temporary directory
func buildAntipastaBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "antipasta")

	// Build from the project root, one level up from the e2e directory
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/antipasta")
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}
	cmd.Dir = projectRoot

	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build antipasta binary: %v\n%s", err, out)
	}
	return binaryPath
}

// runBinary executes the binary and returns stdout, stderr and the exit code
func runBinary(t *testing.T, binaryPath, dir string, args ...string) (string, string, int) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("Failed to run %v: %v", args, err)
		}
		code = exitErr.ExitCode()
	}
	return stdout.String(), stderr.String(), code
}

// createTestFile writes content to dir/rel, creating parent directories
func createTestFile(t *testing.T, dir, rel, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", rel, err)
	}
	return path
}

// createTestConfigFile writes a .antipasta.yaml limiting JavaScript files to maxLines
func createTestConfigFile(t *testing.T, dir string, maxLines int) string {
	t.Helper()
	content := "languages:\n" +
		"  - name: javascript\n" +
		"    metrics:\n" +
		"      - type: lines_of_code\n" +
		"        threshold: " + strconv.Itoa(maxLines) + "\n" +
		"        comparison: \"<=\"\n" +
		"use_gitignore: true\n"
	return createTestFile(t, dir, ".antipasta.yaml", content)
}
