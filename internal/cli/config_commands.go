// Package cli provides configuration management commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/filebox/filebox-client/internal/api"
	"github.com/filebox/filebox-client/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage filebox configuration",
		Long: `Configuration management commands for filebox.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Test the server connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// prompt prints a question with a default and returns the trimmed answer,
// or the default when the answer is empty.
func prompt(reader *bufio.Reader, out io.Writer, question, def string) string {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	return input
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for filebox.

The configuration is saved to ~/.config/filebox/config.ini (or --config).
Proxy passwords are never saved; set FILEBOX_PROXY_PASSWORD or answer
the prompt when a command needs one.

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Fprintln(out, "filebox Configuration Setup")
			fmt.Fprintln(out, "===========================")
			fmt.Fprintln(out)

			reader := bufio.NewReader(cmd.InOrStdin())
			cfg := config.DefaultConfig()

			cfg.BaseURL = prompt(reader, out, "Server base URL", cfg.BaseURL)

			retries := prompt(reader, out, "Retries per request", strconv.Itoa(cfg.MaxRetries))
			if v, err := strconv.Atoi(retries); err == nil {
				cfg.MaxRetries = v
			}

			fmt.Fprintln(out)
			answer := strings.ToLower(prompt(reader, out, "Configure proxy? [y/N]", ""))
			if answer == "y" || answer == "yes" {
				fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
				cfg.ProxyMode = strings.ToLower(prompt(reader, out, "Proxy mode", config.ProxyModeSystem))
				if cfg.ProxyMode == config.ProxyModeBasic || cfg.ProxyMode == config.ProxyModeNTLM {
					cfg.ProxyHost = prompt(reader, out, "Proxy host", "")
					if v, err := strconv.Atoi(prompt(reader, out, "Proxy port", strconv.Itoa(cfg.ProxyPort))); err == nil && v > 0 {
						cfg.ProxyPort = v
					}
					cfg.ProxyUser = prompt(reader, out, "Proxy user (empty for none)", "")
				}
				cfg.NoProxy = prompt(reader, out, "Hosts that bypass the proxy (comma-separated)", "")
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.SaveConfig(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			GetLogger().Info().Str("path", path).Msg("Configuration saved")

			fmt.Fprintln(out)
			fmt.Fprintf(out, "Configuration saved to: %s\n", path)
			fmt.Fprintln(out, "Test your configuration with: filebox config test")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (~/.config/filebox/config.ini)
  2. Environment variables (FILEBOX_BASE_URL, FILEBOX_PROXY_MODE, FILEBOX_LOG_FILE)
  3. Command-line flags (--base-url, --proxy-mode, --log-file, --max-retries)

Priority: flags > environment > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()

			cfg, err := config.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.MergeWithFlags(baseURL, proxyMode, logFile, maxRetries)

			fmt.Fprintln(out, "Current Configuration")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Server:")
			fmt.Fprintf(out, "  Base URL: %s\n", cfg.BaseURL)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Client:")
			fmt.Fprintf(out, "  Max Retries:     %d\n", cfg.MaxRetries)
			if cfg.MaxRetries > 0 {
				fmt.Fprintf(out, "  Retry Wait:      %s - %s\n", cfg.RetryWaitMin, cfg.RetryWaitMax)
			}
			if cfg.RequestTimeout > 0 {
				fmt.Fprintf(out, "  Request Timeout: %s\n", cfg.RequestTimeout)
			} else {
				fmt.Fprintln(out, "  Request Timeout: none")
			}
			fmt.Fprintf(out, "  User Agent:      %s\n", cfg.UserAgent)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Proxy:")
			fmt.Fprintf(out, "  Mode: %s\n", cfg.ProxyMode)
			if cfg.ProxyHost != "" {
				fmt.Fprintf(out, "  Host: %s\n", cfg.ProxyHost)
				fmt.Fprintf(out, "  Port: %d\n", cfg.ProxyPort)
			}
			if cfg.ProxyUser != "" {
				fmt.Fprintf(out, "  User: %s\n", cfg.ProxyUser)
				if cfg.ProxyPassword != "" {
					fmt.Fprintln(out, "  Password: <set>")
				} else {
					fmt.Fprintln(out, "  Password: <not set>")
				}
			}
			if cfg.NoProxy != "" {
				fmt.Fprintf(out, "  No Proxy: %s\n", cfg.NoProxy)
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Logging:")
			fmt.Fprintf(out, "  Level: %s\n", cfg.LogLevel)
			if cfg.LogFile != "" {
				fmt.Fprintf(out, "  File:  %s\n", cfg.LogFile)
			}
			fmt.Fprintln(out)

			fmt.Fprintf(out, "Configuration file: %s\n", path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}

			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(out, "\nWarning: %v\n", err)
			}
			return nil
		},
	}

	return cmd
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the server connection",
		Long: `Fetch the file list once with the current configuration.

Use this to verify the base URL and proxy settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			logger := GetLogger()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fmt.Fprintf(out, "Server: %s\n", cfg.BaseURL)
			fmt.Fprintln(out, "Testing connection...")

			client, err := api.NewClient(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create API client: %w", err)
			}

			ctx, cancel := context.WithTimeout(GetContext(), 10*time.Second)
			defer cancel()

			listing, err := client.ListFiles(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Connection test failed")
				fmt.Fprintln(out, "Connection FAILED")
				fmt.Fprintf(out, "  Error: %v\n", err)
				return fmt.Errorf("connection test failed")
			}

			logger.Info().Msg("Connection test successful")
			fmt.Fprintln(out, "Connection SUCCESSFUL")
			fmt.Fprintf(out, "  Files on server: %d\n", len(listing))
			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()
			if cfgFile == "" {
				fmt.Fprintln(out, "Default configuration path:")
			} else {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			}
			fmt.Fprintf(out, "  %s\n", path)
			fmt.Fprintln(out)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: File exists")
				fmt.Fprintf(out, "Size:   %d bytes\n", info.Size())
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create a configuration file with: filebox config init")
			}

			return nil
		},
	}

	return cmd
}
