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
	"golang.org/x/term"

	"github.com/filebox/filebox-client/internal/api"
	"github.com/filebox/filebox-client/internal/constants"
	"github.com/filebox/filebox-client/internal/events"
	"github.com/filebox/filebox-client/internal/view"
)

const pageHelp = `Commands:
  upload <path>              upload a local file
  delete <#|name>            delete a listed file
  download <#|name> [dir]    follow a file's download link
  refresh                    reload the list
  html                       print the list as HTML
  help                       show this help
  quit                       leave the page`

// newPageCmd creates the 'page' command.
func newPageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Open the interactive file manager page",
		Long: `Load the file list and read commands from standard input.

The list is printed again after every reload. Commands:

` + pageHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			interactive := false
			if f, ok := cmd.InOrStdin().(*os.File); ok {
				interactive = term.IsTerminal(int(f.Fd()))
			}
			return runPage(GetContext(), cmd.InOrStdin(), cmd.OutOrStdout(), s, interactive)
		},
	}

	return cmd
}

// runPage drives the page: an initial load, then one command per line
// until quit or end of input.
func runPage(ctx context.Context, in io.Reader, out io.Writer, s *session, interactive bool) error {
	updates := s.eventBus.Subscribe(events.EventListRendered)
	failures := s.eventBus.Subscribe(events.EventOperationFailed)
	defer s.eventBus.Unsubscribe(events.EventListRendered, updates)
	defer s.eventBus.Unsubscribe(events.EventOperationFailed, failures)

	s.manager.LoadFiles(ctx)
	flushPageEvents(out, s, updates, failures)

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		command, arg := splitPageCommand(scanner.Text())
		if command == "" {
			continue
		}
		if quit := runPageCommand(ctx, out, s, command, arg); quit {
			return nil
		}
		flushPageEvents(out, s, updates, failures)
	}

	return scanner.Err()
}

// splitPageCommand returns the lower-cased command word and the rest of the
// line. The rest is kept whole so paths and names may contain spaces; one
// pair of surrounding quotes is removed.
func splitPageCommand(line string) (command, arg string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	command = line
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		command, arg = line[:i], line[i+1:]
	}
	return strings.ToLower(command), unquote(strings.TrimSpace(arg))
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func runPageCommand(ctx context.Context, out io.Writer, s *session, command, arg string) bool {
	switch command {
	case "quit", "exit", "q":
		return true

	case "help", "?":
		fmt.Fprintln(out, pageHelp)

	case "refresh", "r", "ls":
		s.manager.LoadFiles(ctx)

	case "html":
		if err := printItems(out, s.page.Items(), OutputHTML, nil); err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}

	case "upload", "up":
		if arg == "" {
			fmt.Fprintln(out, "usage: upload <path>")
			return false
		}
		res := uploadOne(ctx, s.manager, arg, GetLogger())
		if res.OK() {
			fmt.Fprintf(out, "uploaded %s (status %d)\n", arg, res.StatusCode)
		} else if res.Err != nil && !api.IsTransportError(res.Err) {
			// request failures arrive as OperationFailed events
			fmt.Fprintf(out, "! upload %s: %v\n", arg, res.Err)
		}

	case "delete", "rm", "del":
		if arg == "" {
			fmt.Fprintln(out, "usage: delete <#|name>")
			return false
		}
		item, ok := resolveItem(s, arg)
		if !ok {
			fmt.Fprintf(out, "! no listed file %q (%d listed)\n", arg, s.page.Len())
			return false
		}
		s.manager.DeleteFile(ctx, item.Delete)

	case "download", "get":
		if arg == "" {
			fmt.Fprintln(out, "usage: download <#|name> [dir]")
			return false
		}
		item, dir, ok := resolveDownload(s, arg)
		if !ok {
			fmt.Fprintf(out, "! no listed file %q (%d listed)\n", arg, s.page.Len())
			return false
		}
		executeFileDownload(ctx, out, []string{item.Name}, dir, false, s.client, GetLogger())

	default:
		fmt.Fprintf(out, "unknown command %q (try help)\n", command)
	}
	return false
}

// resolveDownload reads "<#|name> [dir]". The whole argument is tried as a
// listed name first, then the last word is taken as the directory.
func resolveDownload(s *session, arg string) (view.ItemNode, string, bool) {
	if item, ok := resolveItem(s, arg); ok {
		return item, ".", true
	}
	i := strings.LastIndexAny(arg, " \t")
	if i < 0 {
		return view.ItemNode{}, "", false
	}
	item, ok := resolveItem(s, unquote(strings.TrimSpace(arg[:i])))
	return item, unquote(strings.TrimSpace(arg[i+1:])), ok
}

// resolveItem finds a listed item by 1-based index or exact name.
// An exact name match wins over an index.
func resolveItem(s *session, ref string) (view.ItemNode, bool) {
	if item, ok := s.page.Find(ref); ok {
		return item, true
	}
	if n, err := strconv.Atoi(ref); err == nil {
		return s.page.Item(n - 1)
	}
	return view.ItemNode{}, false
}

// flushPageEvents prints pending failures, then the list once if it was
// re-rendered since the last flush. When a reload failed the shown list is
// marked stale.
func flushPageEvents(out io.Writer, s *session, updates, failures <-chan events.Event) {
	rendered, listFailed := false, false
	for {
		select {
		case <-updates:
			rendered = true
			continue
		case ev := <-failures:
			if op, ok := ev.(*events.OperationEvent); ok {
				printFailure(out, op)
				listFailed = listFailed || op.Operation == "list"
			}
			continue
		default:
		}
		break
	}

	if rendered {
		printTable(out, s.page.Items(), nil)
	}
	if listFailed && s.page.LastError() != nil {
		printStaleNotice(out, s.page.RenderedAt())
	}
}

func printStaleNotice(out io.Writer, renderedAt time.Time) {
	if renderedAt.IsZero() {
		fmt.Fprintln(out, "! no list loaded yet (try refresh)")
		return
	}
	fmt.Fprintf(out, "! list is stale: last loaded at %s\n", renderedAt.Format(constants.LogTimeFormat))
}

func printFailure(out io.Writer, op *events.OperationEvent) {
	target := op.Operation
	if op.FileName != "" {
		target += " " + op.FileName
	}
	if op.StatusCode != 0 {
		fmt.Fprintf(out, "! %s failed: status %d\n", target, op.StatusCode)
		return
	}
	fmt.Fprintf(out, "! %s failed: %v\n", target, op.Error)
}
