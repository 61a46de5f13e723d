package cli

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/filebox/filebox-client/internal/testutil"
	"github.com/filebox/filebox-client/internal/view"
)

func TestFilesListTable(t *testing.T) {
	srv := testutil.NewFakeServer(map[string]string{"a.txt": "1", "b.txt": "2"})
	defer srv.Close()

	out, err := runCLI(t, "", "--base-url", srv.URL, "files", "list")
	if err != nil {
		t.Fatalf("files list error = %v", err)
	}
	for _, want := range []string{"Found 2 file(s)", "a.txt", srv.URL + "/download/b.txt"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if n := srv.Count(http.MethodGet, "/files"); n != 1 {
		t.Errorf("GET /files count = %d, want 1", n)
	}
}

func TestFilesListEmpty(t *testing.T) {
	srv := testutil.NewFakeServer(nil)
	defer srv.Close()

	out, err := runCLI(t, "", "--base-url", srv.URL, "ls")
	if err != nil {
		t.Fatalf("ls error = %v", err)
	}
	if !strings.Contains(out, "No files found") {
		t.Errorf("output = %q", out)
	}
}

func TestFilesListFormats(t *testing.T) {
	srv := testutil.NewFakeServer(map[string]string{"data.csv": "1", "notes.txt": "2"})
	defer srv.Close()

	t.Run("json with filter", func(t *testing.T) {
		out, err := runCLI(t, "", "--base-url", srv.URL, "files", "list", "--include", "*.csv", "-o", "json")
		if err != nil {
			t.Fatalf("files list error = %v", err)
		}
		var items []view.ItemNode
		if err := json.Unmarshal([]byte(out), &items); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		if len(items) != 1 || items[0].Name != "data.csv" || items[0].Download.Href != "/download/data.csv" {
			t.Errorf("items = %+v", items)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := runCLI(t, "", "--base-url", srv.URL, "files", "list", "-o", "yaml")
		if err != nil {
			t.Fatalf("files list error = %v", err)
		}
		var items []view.ItemNode
		if err := yaml.Unmarshal([]byte(out), &items); err != nil {
			t.Fatalf("output is not YAML: %v\n%s", err, out)
		}
		if len(items) != 2 || items[1].Delete.FileName != "notes.txt" {
			t.Errorf("items = %+v", items)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		if _, err := runCLI(t, "", "--base-url", srv.URL, "files", "list", "-o", "xml"); err == nil {
			t.Error("files list -o xml should fail")
		}
	})
}

func TestFilesRender(t *testing.T) {
	srv := testutil.NewFakeServer(map[string]string{"a.txt": "1"})
	defer srv.Close()

	out, err := runCLI(t, "", "--base-url", srv.URL, "files", "render")
	if err != nil {
		t.Fatalf("files render error = %v", err)
	}
	want := `<ul id="fileList"><li>a.txt<a href="/download/a.txt"> Download</a><button type="button" data-file="a.txt"> Delete</button></li></ul>`
	if strings.TrimSpace(out) != want {
		t.Errorf("output =\n%s\nwant\n%s", out, want)
	}
}

func TestFilesUpload(t *testing.T) {
	srv := testutil.NewFakeServer(nil)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "report.txt")
	if err := os.WriteFile(path, []byte("quarterly numbers"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "", "--base-url", srv.URL, "files", "upload", path)
	if err != nil {
		t.Fatalf("files upload error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "ok report.txt") || !strings.Contains(out, "Found 1 file(s)") {
		t.Errorf("output = %q", out)
	}

	reqs := srv.Requests()
	if len(reqs) != 2 || reqs[0].Path != "/upload" || reqs[1].Path != "/files" {
		t.Fatalf("requests = %+v, want POST /upload then GET /files", reqs)
	}
	if reqs[0].FormFileContent != "quarterly numbers" {
		t.Errorf("uploaded content = %q", reqs[0].FormFileContent)
	}
}

func TestFilesUploadMissingFile(t *testing.T) {
	srv := testutil.NewFakeServer(nil)
	defer srv.Close()

	_, err := runCLI(t, "", "--base-url", srv.URL, "upload", filepath.Join(t.TempDir(), "missing.bin"))
	if err == nil {
		t.Fatal("upload of a missing file should fail")
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("got %d requests, want 0", n)
	}
}

func TestFilesDelete(t *testing.T) {
	srv := testutil.NewFakeServer(map[string]string{"x.txt": "1", "y.txt": "2"})
	defer srv.Close()

	out, err := runCLI(t, "", "--base-url", srv.URL, "files", "delete", "x.txt")
	if err != nil {
		t.Fatalf("files delete error = %v", err)
	}
	if !strings.Contains(out, "ok x.txt deleted") || !strings.Contains(out, "y.txt") {
		t.Errorf("output = %q", out)
	}
	if n := srv.Count(http.MethodDelete, "/delete/x.txt"); n != 1 {
		t.Errorf("DELETE count = %d, want 1", n)
	}
	if n := srv.Count(http.MethodGet, "/files"); n != 1 {
		t.Errorf("GET /files count = %d, want 1", n)
	}
}

func TestFilesDeleteFailure(t *testing.T) {
	srv := testutil.NewFakeServer(map[string]string{"x.txt": "1"})
	defer srv.Close()
	srv.DeleteStatus = http.StatusInternalServerError

	_, err := runCLI(t, "", "--base-url", srv.URL, "rm", "x.txt")
	if err == nil {
		t.Fatal("rm should fail when the server answers 500")
	}
	if n := srv.Count(http.MethodDelete, "/delete/x.txt"); n != 1 {
		t.Errorf("DELETE count = %d, want 1", n)
	}
	if n := srv.Count(http.MethodGet, "/files"); n != 0 {
		t.Errorf("GET /files count = %d, want 0", n)
	}
}

func TestFilesDownload(t *testing.T) {
	srv := testutil.NewFakeServer(map[string]string{"a.txt": "alpha"})
	defer srv.Close()
	dir := t.TempDir()

	out, err := runCLI(t, "", "--base-url", srv.URL, "files", "download", "a.txt", "--outdir", dir)
	if err != nil {
		t.Fatalf("files download error = %v\n%s", err, out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil || string(data) != "alpha" {
		t.Fatalf("downloaded file = %q, %v", data, err)
	}

	// Second download without --overwrite must refuse.
	if _, err := runCLI(t, "", "--base-url", srv.URL, "files", "download", "a.txt", "--outdir", dir); err == nil {
		t.Error("download over an existing file should fail without --overwrite")
	}
	if _, err := runCLI(t, "", "--base-url", srv.URL, "files", "download", "a.txt", "--outdir", dir, "--overwrite"); err != nil {
		t.Errorf("download --overwrite error = %v", err)
	}
}

func TestFilesDownloadMissingLeavesNoFile(t *testing.T) {
	srv := testutil.NewFakeServer(nil)
	defer srv.Close()
	dir := t.TempDir()

	out, err := runCLI(t, "", "--base-url", srv.URL, "files", "download", "gone.txt", "--outdir", dir)
	if err == nil {
		t.Fatal("download of a missing file should fail")
	}
	if !strings.Contains(out, "gone.txt not found on server") {
		t.Errorf("output = %q, want a not-found message", out)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("output dir has %d entries, want 0", len(entries))
	}
}

func TestInvalidBaseURL(t *testing.T) {
	if _, err := runCLI(t, "", "--base-url", "ftp://nope", "files", "list"); err == nil {
		t.Error("files list with an ftp base URL should fail validation")
	}
}
