package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/filebox/filebox-client/internal/view"
)

// Output formats for commands that print the file list.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputHTML  = "html"
)

func validateOutputFormat(format string) error {
	switch format {
	case OutputTable, OutputJSON, OutputYAML, OutputHTML:
		return nil
	default:
		return fmt.Errorf("--output must be one of %s, %s, %s, %s; got %q",
			OutputTable, OutputJSON, OutputYAML, OutputHTML, format)
	}
}

// printItems writes the rendered list in the requested format.
// linkFor, when set, replaces the relative hrefs in table output.
func printItems(w io.Writer, items []view.ItemNode, format string, linkFor func(name string) string) error {
	switch format {
	case OutputJSON:
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))

	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()

	case OutputHTML:
		if err := view.WriteHTML(w, items); err != nil {
			return err
		}
		fmt.Fprintln(w)

	default:
		printTable(w, items, linkFor)
	}
	return nil
}

func printTable(w io.Writer, items []view.ItemNode, linkFor func(name string) string) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No files found")
		return
	}

	fmt.Fprintf(w, "Found %d file(s):\n\n", len(items))

	nameWidth := len("NAME")
	for _, item := range items {
		if len(item.Name) > nameWidth {
			nameWidth = len(item.Name)
		}
	}

	fmt.Fprintf(w, "  %-4s  %-*s  %s\n", "#", nameWidth, "NAME", "DOWNLOAD")
	for i, item := range items {
		href := item.Download.Href
		if linkFor != nil {
			href = linkFor(item.Name)
		}
		fmt.Fprintf(w, "  %-4d  %-*s  %s\n", i+1, nameWidth, item.Name, href)
	}
}
