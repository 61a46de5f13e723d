// Package cli provides command shortcuts for common operations.
package cli

import (
	"github.com/spf13/cobra"
)

// AddShortcuts adds shortcut commands to the root command.
// Shortcuts provide convenient aliases for commonly-used operations.
func AddShortcuts(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newUploadShortcut())
	rootCmd.AddCommand(newLsShortcut())
	rootCmd.AddCommand(newRmShortcut())
}

// newUploadShortcut creates the 'upload' shortcut command.
// Shortcut for: files upload
func newUploadShortcut() *cobra.Command {
	cmd := newFilesUploadCmd()
	cmd.Short = "Upload files (shortcut for 'files upload')"
	cmd.Long = `Shortcut for uploading files.

Equivalent to: filebox files upload <files>

Examples:
  filebox upload input.txt data.csv
  filebox upload "*.dat"`
	return cmd
}

// newLsShortcut creates the 'ls' shortcut command.
// Shortcut for: files list
func newLsShortcut() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List files (shortcut for 'files list')",
		Long: `Shortcut for listing files.

Equivalent to: filebox files list

Examples:
  filebox ls
  filebox ls --include "*.log"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	opts.addFlags(cmd, OutputTable)

	return cmd
}

// newRmShortcut creates the 'rm' shortcut command.
// Shortcut for: files delete
func newRmShortcut() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "rm <name> [name...]",
		Short: "Delete files (shortcut for 'files delete')",
		Long: `Shortcut for deleting files.

Equivalent to: filebox files delete <names>

Examples:
  filebox rm old.log`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", OutputTable, "Output format for the file list: table, json, yaml, html")

	return cmd
}
