package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fixtures and environment
// ---------------------------------------------------------------------------

const (
	sampleExisting = "auto lo\niface lo inet loopback\n\nsource /etc/network/interfaces.d/*\n"
	sampleFragment = "auto vmbr0\niface vmbr0 inet manual\n    ovs_type OVSBridge\n"
	sampleMerged   = "auto lo\niface lo inet loopback\n\n" +
		"# BEGIN OVS BRIDGES\n\n" +
		"auto vmbr0\niface vmbr0 inet manual\n    ovs_type OVSBridge\n\n" +
		"# END OVS BRIDGES\n\n" +
		"source /etc/network/interfaces.d/*\n"

	malformedExisting = "auto lo\n# BEGIN OVS BRIDGES\nauto vmbr0\n"
)

// fixedTime is the clock used by test environments.
var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// testNow is the clock passed to mergeFile.
func testNow() time.Time { return fixedTime }

// newTestEnv returns an Environment writing to buffers, never a terminal.
func newTestEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:        func() time.Time { return fixedTime },
		Stdout:     &stdout,
		Stderr:     &stderr,
		IsTerminal: func(io.Writer) bool { return false },
	}
	return env, &stdout, &stderr
}

// writeTestFile creates name under dir with content and returns its path.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// readTestFile returns the content of path.
func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
