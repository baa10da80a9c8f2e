package e2e

import (
	"fmt"
	"strings"
	"testing"
)

func TestVersionFlagOutputsInjectedVersion(t *testing.T) {
	t.Parallel()

	injectedVersion := "e2e-smoke"
	ldflags := fmt.Sprintf("-X github.com/getlawrence/prdgate/cmd.Version=%s -X github.com/getlawrence/prdgate/cmd.GitCommit=abc123", injectedVersion)
	_, binaryPath := buildCLIBinary(t, ldflags)

	// Run the binary with --version and verify the output contains the injected version
	stdout, stderr, code := runCLI(t, binaryPath, "", "--version")
	if code != 0 {
		t.Fatalf("running --version failed with exit code %d\n%s", code, stderr)
	}
	if !strings.Contains(stdout, injectedVersion) {
		t.Fatalf("expected version output to contain %q, got: %q", injectedVersion, stdout)
	}
	if !strings.Contains(stdout, "commit abc123") {
		t.Fatalf("expected version output to contain the commit, got: %q", stdout)
	}
}
