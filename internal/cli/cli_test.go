package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/filebox/filebox-client/internal/config"
)

// runCLI executes the root command with an isolated config file and
// returns what the command wrote to stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	for _, env := range []string{config.EnvBaseURL, config.EnvProxyMode, config.EnvProxyPassword, config.EnvLogFile} {
		t.Setenv(env, "")
	}

	cfgPath := filepath.Join(t.TempDir(), "config.ini")
	hasConfig := false
	for _, a := range args {
		if a == "--config" || a == "-c" {
			hasConfig = true
		}
	}
	if !hasConfig {
		args = append([]string{"--config", cfgPath}, args...)
	}

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	t.Cleanup(func() {
		if logger != nil {
			logger.Close()
			logger = nil
		}
	})
	return stdout.String(), err
}
