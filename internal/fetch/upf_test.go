package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDownload_KnownURLFirst(t *testing.T) {
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		_, _ = w.Write([]byte("<UPF version=\"2.0.1\">"))
	}))
	defer srv.Close()

	d := NewDownloader()
	d.HTTP = srv.Client()
	d.Known = map[string]string{"Si": srv.URL + "/known/Si.UPF"}
	d.BaseURLs = []string{srv.URL + "/search/%s"}

	dir := t.TempDir()
	path, err := d.Download(context.Background(), "Si", dir)
	if err != nil {
		t.Fatal(err)
	}

	if path != filepath.Join(dir, "Si.UPF") {
		t.Errorf("path: got %q", path)
	}
	if len(hits) != 1 || hits[0] != "/known/Si.UPF" {
		t.Errorf("expected single known-URL hit, got %v", hits)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "UPF") {
		t.Errorf("file content: %q", data)
	}
}

func TestDownload_FallsBackToSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only one specific variant exists.
		if r.URL.Path == "/files/Ge.pbe-dn-kjpaw_psl.1.0.0.UPF" {
			_, _ = w.Write([]byte("upf"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	d := NewDownloader()
	d.HTTP = srv.Client()
	d.Known = nil
	d.BaseURLs = []string{srv.URL + "/files/%s"}

	path, err := d.Download(context.Background(), "Ge", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "Ge.UPF" {
		t.Errorf("local name should be normalized: %q", path)
	}
}

func TestDownload_TruncatedBodyLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Promise a large body, send a fragment, then drop the
		// connection mid-transfer.
		w.Header().Set("Content-Length", "1048576")
		_, _ = w.Write([]byte("<UPF"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close()
		}
	}))
	defer srv.Close()

	d := NewDownloader()
	d.HTTP = srv.Client()
	d.Known = map[string]string{"Si": srv.URL + "/known/Si.UPF"}
	d.BaseURLs = []string{srv.URL + "/known/%s"}

	dir := t.TempDir()
	if _, err := d.Download(context.Background(), "Si", dir); err == nil {
		t.Fatal("expected error for a truncated transfer")
	}

	if _, err := os.Stat(filepath.Join(dir, "Si.UPF")); !os.IsNotExist(err) {
		t.Errorf("truncated download left a file at the final destination")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("leftover files after failed download: %v", entries)
	}
}

func TestDownload_AllSourcesMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	d := NewDownloader()
	d.HTTP = srv.Client()
	d.Known = nil
	d.BaseURLs = []string{srv.URL + "/files/%s"}

	if _, err := d.Download(context.Background(), "Og", t.TempDir()); err == nil {
		t.Fatal("expected error when every source misses")
	}
}
