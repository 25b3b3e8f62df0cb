package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/git-pkgs/manifests/resolve"
)

func TestFetchSuccess(t *testing.T) {
	content := "test artifact content"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/gzip")
		w.Header().Set("Content-Length", "21")
		w.Header().Set("ETag", `"abc123"`)
		_, _ = w.Write([]byte(content))
	}))
	defer server.Close()

	f := NewFetcher(WithHTTPClient(server.Client()))
	artifact, err := f.Fetch(context.Background(), server.URL+"/test.crate")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer func() { _ = artifact.Body.Close() }()

	if artifact.Size != 21 {
		t.Errorf("Size = %d, want 21", artifact.Size)
	}
	if artifact.ContentType != "application/gzip" {
		t.Errorf("ContentType = %q, want %q", artifact.ContentType, "application/gzip")
	}
	if artifact.ETag != `"abc123"` {
		t.Errorf("ETag = %q, want %q", artifact.ETag, `"abc123"`)
	}

	body, err := io.ReadAll(artifact.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(body) != content {
		t.Errorf("body = %q, want %q", string(body), content)
	}
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(WithHTTPClient(server.Client()))
	_, err := f.Fetch(context.Background(), server.URL+"/missing.crate")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch = %v, want ErrNotFound", err)
	}
}

func TestFetchRateLimitRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("success"))
	}))
	defer server.Close()

	f := NewFetcher(WithHTTPClient(server.Client()), WithBaseDelay(10*time.Millisecond))
	artifact, err := f.Fetch(context.Background(), server.URL+"/test.crate")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer func() { _ = artifact.Body.Close() }()

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestFetchAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewFetcher(
		WithHTTPClient(server.Client()),
		WithAuthFunc(func(url string) (string, string) {
			return "Authorization", "Bearer secret"
		}),
	)
	artifact, err := f.Fetch(context.Background(), server.URL+"/test.crate")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	_ = artifact.Body.Close()
}

func TestHead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Type", "application/gzip")
		w.Header().Set("Content-Length", "42")
	}))
	defer server.Close()

	f := NewFetcher(WithHTTPClient(server.Client()))
	size, contentType, err := f.Head(context.Background(), server.URL+"/test.crate")
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if size != 42 {
		t.Errorf("size = %d, want 42", size)
	}
	if contentType != "application/gzip" {
		t.Errorf("contentType = %q", contentType)
	}
}

type planURLs struct {
	base string
}

func (u planURLs) Registry(name, version string) string { return "" }

func (u planURLs) Documentation(name, version string) string { return "" }

func (u planURLs) PURL(name, version string) string { return "" }

func (u planURLs) Download(name, version string) string {
	if version == "" {
		return ""
	}
	return u.base + "/" + name + "-" + version + ".crate"
}

func TestPackageVerifiesChecksum(t *testing.T) {
	content := []byte("crate bytes")
	sum := sha256.Sum256(content)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(content)
	}))
	defer server.Close()

	f := NewFetcher(WithHTTPClient(server.Client()), WithURLs(planURLs{base: server.URL}))

	pkg := &resolve.LockedPackage{
		Name:     "vecmath",
		Version:  "1.1.0",
		Checksum: "sha256-" + hex.EncodeToString(sum[:]),
	}
	artifact, err := f.Package(context.Background(), pkg)
	if err != nil {
		t.Fatalf("Package failed: %v", err)
	}
	defer func() { _ = artifact.Body.Close() }()
	if _, err := io.ReadAll(artifact.Body); err != nil {
		t.Errorf("verified read failed: %v", err)
	}

	pkg.Checksum = "sha256-" + strings.Repeat("00", 32)
	artifact, err = f.Package(context.Background(), pkg)
	if err != nil {
		t.Fatalf("Package failed: %v", err)
	}
	defer func() { _ = artifact.Body.Close() }()
	if _, err := io.ReadAll(artifact.Body); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("read error = %v, want ErrChecksumMismatch", err)
	}
}

func TestPackageNoDownloadURL(t *testing.T) {
	f := NewFetcher(WithURLs(planURLs{}))
	pkg := &resolve.LockedPackage{Name: "vecmath"}
	if _, err := f.Package(context.Background(), pkg); !errors.Is(err, ErrNoDownloadURL) {
		t.Errorf("Package error = %v, want ErrNoDownloadURL", err)
	}
}
