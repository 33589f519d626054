package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var cc9Bin string

// TestMain builds the cc9 binary once to a temp directory, mirroring
// lang/yparse/parser_test.go's build-then-exec harness.
func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "cc9-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	cc9Bin = filepath.Join(tmp, "cc9")
	cmd := exec.Command("go", "build", "-o", cc9Bin, ".")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build cc9: " + err.Error())
	}

	os.Exit(m.Run())
}

func runCC9(t *testing.T, path string) (stdout, stderr string, ok bool) {
	t.Helper()
	cmd := exec.Command(cc9Bin, path)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err == nil
}

func writeSource(t *testing.T, text string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.c")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompilesValidProgram(t *testing.T) {
	path := writeSource(t, "int main() { return 42; }")
	stdout, stderr, ok := runCC9(t, path)
	if !ok {
		t.Fatalf("cc9 exited non-zero; stderr:\n%s", stderr)
	}
	if !strings.Contains(stdout, "main:") {
		t.Errorf("stdout missing main label:\n%s", stdout)
	}
}

func TestMissingTrailingNewlineIsAccepted(t *testing.T) {
	path := writeSource(t, "int main() { return 0; }") // no trailing \n
	_, stderr, ok := runCC9(t, path)
	if !ok {
		t.Fatalf("cc9 should append a trailing newline and succeed; stderr:\n%s", stderr)
	}
}

func TestSyntaxErrorExitsNonZeroWithDiagnostic(t *testing.T) {
	path := writeSource(t, "int main() { return }")
	_, stderr, ok := runCC9(t, path)
	if ok {
		t.Error("expected non-zero exit for a syntax error")
	}
	if !strings.Contains(stderr, "in.c") {
		t.Errorf("stderr missing source filename:\n%s", stderr)
	}
}

func TestWrongArgCountExitsNonZero(t *testing.T) {
	cmd := exec.Command(cc9Bin)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err == nil {
		t.Error("expected non-zero exit with no arguments")
	}
}

func TestMissingFileExitsNonZero(t *testing.T) {
	_, stderr, ok := runCC9(t, filepath.Join(t.TempDir(), "nope.c"))
	if ok {
		t.Error("expected non-zero exit for a missing file")
	}
	if stderr == "" {
		t.Error("expected a diagnostic on stderr")
	}
}
