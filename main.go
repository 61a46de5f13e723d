// filebox - command-line client for a minimal file server.
//
// The server exposes four endpoints: POST /upload, GET /files,
// GET /download/{name} and DELETE /delete/{name}. filebox drives them
// from one-shot commands or from the interactive page (filebox page).
package main

import (
	"os"

	"github.com/filebox/filebox-client/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
