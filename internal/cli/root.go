// Package cli provides the command-line interface for filebox.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/filebox/filebox-client/internal/config"
	"github.com/filebox/filebox-client/internal/logging"
	"github.com/filebox/filebox-client/internal/version"
)

var (
	// Global flags
	cfgFile    string
	baseURL    string
	proxyMode  string
	logFile    string
	maxRetries int
	verbose    bool
	debug      bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filebox",
		Short: "filebox - upload, list, download and delete files on a file server",
		Long: `filebox ` + version.Version + ` - Built: ` + version.BuildTime + `
Client for a minimal file server exposing /upload, /files,
/download/{name} and /delete/{name}.

One-shot commands print the rendered file list; 'filebox page'
opens the interactive page.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&baseURL, "base-url", "u", "", "File server base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&proxyMode, "proxy-mode", "", "Proxy mode: no-proxy, system, basic, ntlm (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file (rotated)")
	rootCmd.PersistentFlags().IntVar(&maxRetries, "max-retries", -1, "Retries per request (-1 = use config, default config is 0)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	return rootCmd
}

// initLogger builds the global logger from flags and the config file.
// The config is loaded again by each command; a broken config is reported there.
func initLogger(cmd *cobra.Command) {
	file := logFile
	level := zerolog.InfoLevel
	if cfg, err := config.LoadConfig(configPath()); err == nil {
		cfg.MergeWithFlags(baseURL, proxyMode, logFile, maxRetries)
		file = cfg.LogFilePath()
		level = logging.ParseLevel(cfg.LogLevel)
		if file == config.DefaultLogFilePath() {
			if err := config.EnsureLogDirectory(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: cannot create log directory: %v\n", err)
				file = ""
			}
		}
	}
	if verbose || debug {
		level = zerolog.DebugLevel
	}
	logging.SetGlobalLevel(level)

	if logger != nil {
		logger.Close()
	}
	logger = logging.NewLogger(logging.Options{Console: cmd.ErrOrStderr(), File: file})
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			// sig is nil once the channel is closed
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)
	if logger != nil {
		logger.Close()
	}

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newPageCmd())
	rootCmd.AddCommand(newConfigCmd())

	AddShortcuts(rootCmd)
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}
