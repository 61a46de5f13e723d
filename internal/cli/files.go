// Package cli provides file operation commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filebox/filebox-client/internal/util/filter"
	"github.com/filebox/filebox-client/internal/view"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "File operations (upload, list, download, delete, render)",
		Long:  `Commands for managing files on the file server.`,
	}

	filesCmd.AddCommand(newFilesUploadCmd())
	filesCmd.AddCommand(newFilesListCmd())
	filesCmd.AddCommand(newFilesDeleteCmd())
	filesCmd.AddCommand(newFilesDownloadCmd())
	filesCmd.AddCommand(newFilesRenderCmd())

	return filesCmd
}

// newFilesUploadCmd creates the 'files upload' command.
func newFilesUploadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "upload <file> [file...]",
		Short: "Upload files",
		Long: `Upload one or more files as multipart form field "file".

Each completed upload reloads the file list; the final list is printed.
The server's answer is logged but its status code does not fail the command.

Examples:
  # Upload a single file
  filebox files upload report.pdf

  # Upload with a glob pattern
  filebox files upload "*.csv"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}

			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			uploadErr := executeFileUpload(GetContext(), cmd.OutOrStdout(), args, s.manager, GetLogger())

			if s.page.Generation() > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
				if err := printItems(cmd.OutOrStdout(), s.page.Items(), output, s.client.DownloadURL); err != nil {
					return err
				}
			}
			return uploadErr
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", OutputTable, "Output format for the file list: table, json, yaml, html")

	return cmd
}

// listOptions are shared by 'files list' and 'ls'.
type listOptions struct {
	include string
	exclude string
	search  string
	output  string
}

func (o *listOptions) addFlags(cmd *cobra.Command, defaultOutput string) {
	cmd.Flags().StringVar(&o.include, "include", "", "Only show names matching these glob patterns (comma-separated)")
	cmd.Flags().StringVar(&o.exclude, "exclude", "", "Hide names matching these glob patterns (comma-separated)")
	cmd.Flags().StringVar(&o.search, "search", "", "Only show names containing all these terms (comma-separated, case-insensitive)")
	cmd.Flags().StringVarP(&o.output, "output", "o", defaultOutput, "Output format: table, json, yaml, html")
}

func (o *listOptions) filter() filter.Config {
	return filter.Config{
		Include: filter.ParsePatternList(o.include),
		Exclude: filter.ParsePatternList(o.exclude),
		Search:  filter.ParsePatternList(o.search),
	}
}

// runList loads the list, filters the committed view and prints it.
func runList(cmd *cobra.Command, opts *listOptions) error {
	if err := validateOutputFormat(opts.output); err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := resultError("list", s.manager.LoadFiles(GetContext())); err != nil {
		return err
	}

	items := filter.ApplyToItems(s.page.Items(), opts.filter())
	return printItems(cmd.OutOrStdout(), items, opts.output, s.client.DownloadURL)
}

// newFilesListCmd creates the 'files list' command.
func newFilesListCmd() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List files on the server",
		Long: `Fetch the file list and print it.

Filters apply to the fetched list; the server always returns every file.

Examples:
  # List all files
  filebox files list

  # Only CSV files, without drafts
  filebox files list --include "*.csv" --exclude "draft*"

  # Names containing "results"
  filebox files list --search results -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	opts.addFlags(cmd, OutputTable)

	return cmd
}

// runDelete deletes each name and prints the list after the last refresh.
func runDelete(cmd *cobra.Command, names []string, output string) error {
	if err := validateOutputFormat(output); err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	var firstErr error
	for _, name := range names {
		res := s.manager.DeleteFile(GetContext(), view.DeleteAction{FileName: name})
		if err := resultError("delete "+name, res); err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  x %s: %v\n", name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  ok %s deleted\n", name)
	}

	if s.page.Generation() > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		if err := printItems(cmd.OutOrStdout(), s.page.Items(), output, s.client.DownloadURL); err != nil {
			return err
		}
	}
	return firstErr
}

// newFilesDeleteCmd creates the 'files delete' command.
func newFilesDeleteCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "delete <name> [name...]",
		Short: "Delete files by name",
		Long: `Delete files on the server by name.

A successful delete reloads the file list; a failed one leaves it alone
and is not retried.

Examples:
  filebox files delete old.log
  filebox files delete a.txt b.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", OutputTable, "Output format for the file list: table, json, yaml, html")

	return cmd
}

// newFilesDownloadCmd creates the 'files download' command.
func newFilesDownloadCmd() *cobra.Command {
	var outputDir string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "download <name> [name...]",
		Short: "Download files by name",
		Long: `Follow the download link of one or more files.

Examples:
  # Download to the current directory
  filebox files download report.pdf

  # Download several files into ./downloads, replacing existing copies
  filebox files download a.txt b.txt --outdir ./downloads --overwrite`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			return executeFileDownload(GetContext(), cmd.OutOrStdout(), args, outputDir, overwrite, s.client, GetLogger())
		},
	}

	cmd.Flags().StringVarP(&outputDir, "outdir", "o", ".", "Output directory for downloaded files")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")

	return cmd
}

// newFilesRenderCmd creates the 'files render' command.
func newFilesRenderCmd() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the file list as the page's HTML list",
		Long: `Fetch the file list and print the <ul id="fileList"> fragment the
browser page shows: one <li> per file with its download link and delete button.

Examples:
  filebox files render > list.html
  filebox files render -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	opts.addFlags(cmd, OutputHTML)

	return cmd
}
